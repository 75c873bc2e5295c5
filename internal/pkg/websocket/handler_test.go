package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursegpa/internal/pkg/feed"
)

type intMessage struct {
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
	Data int    `json:"data"`
}

func feedSource(f *feed.Feed[int]) Source[int] {
	return func(ctx context.Context) (*feed.Subscription[int], error) {
		sub := f.Subscribe()
		go func() {
			<-ctx.Done()
			sub.Close()
		}()
		return sub, nil
	}
}

func startServer(t *testing.T, source Source[int]) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(zerolog.Nop())
	go hub.Run()
	t.Cleanup(hub.Stop)

	router := gin.New()
	router.GET("/ws", NewHandler(hub, source, zerolog.Nop()).HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func readMessage(t *testing.T, conn *websocket.Conn) intMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg intMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestStreamDeliversLatestThenUpdates(t *testing.T) {
	f := feed.New[int]()
	f.Publish(10)
	hub, url := startServer(t, feedSource(f))

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readMessage(t, conn)
	assert.Equal(t, MessageTypeSnapshot, first.Type)
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, 10, first.Data)

	assert.Eventually(t, func() bool { return hub.GetClientsCount() == 1 }, time.Second, 10*time.Millisecond)

	f.Publish(20)
	second := readMessage(t, conn)
	assert.Equal(t, uint64(2), second.Seq)
	assert.Equal(t, 20, second.Data)
}

func TestClientDisconnectReleasesSubscription(t *testing.T) {
	f := feed.New[int]()
	f.Publish(1)
	hub, url := startServer(t, feedSource(f))

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	readMessage(t, conn)
	require.Equal(t, 1, f.Len())

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	assert.Eventually(t, func() bool { return hub.GetClientsCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return f.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestFeedCloseEndsStream(t *testing.T) {
	f := feed.New[int]()
	f.Publish(1)
	_, url := startServer(t, feedSource(f))

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)

	f.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestHubStopClosesClients(t *testing.T) {
	f := feed.New[int]()
	f.Publish(1)
	hub, url := startServer(t, feedSource(f))

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.GetClientsCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Stop()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Eventually(t, func() bool { return hub.GetClientsCount() == 0 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return f.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSourceErrorAnswersServiceUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(zerolog.Nop())
	failing := func(context.Context) (*feed.Subscription[int], error) {
		return nil, errors.New("store down")
	}

	router := gin.New()
	router.GET("/ws", NewHandler[int](hub, failing, zerolog.Nop()).HandleConnection)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
