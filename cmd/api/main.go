package main

import (
	"os"

	"github.com/yigit/coursegpa/internal/pkg/logger" // Still needed for initial error logging
	"github.com/yigit/coursegpa/internal/server"
)

// @title Course GPA API
// @version 1.0
// @description Course record store and GPA calculator

// @host localhost:8080
// @BasePath /api/v1
// @schemes http

func main() {
	// NewServer orchestrates LoadConfigAndSetupLogger, SetupDatabase, BuildDependencies, SetupRouter
	srv, err := server.NewServer()
	if err != nil {
		// Error details are logged within NewServer's setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run the server (this blocks until shutdown signal)
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
