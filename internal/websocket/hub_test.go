package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"carwash/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		ServeWs(hub, c, func(_ *gin.Context, token string) (*service.Identity, error) {
			if token != "good" {
				return nil, errors.New("bad token")
			}
			return &service.Identity{UserID: uuid.New(), Role: "admin"}, nil
		})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
}

func TestServeWsRejectsBadToken(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	done := make(chan struct{})
	defer close(done)
	go hub.Run(done)
	srv := newServer(t, hub)

	_, resp, err := gws.DefaultDialer.Dial(wsURL(srv, "bad"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPublishReachesClient(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	done := make(chan struct{})
	defer close(done)
	go hub.Run(done)
	srv := newServer(t, hub)

	conn, _, err := gws.DefaultDialer.Dial(wsURL(srv, "good"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(service.EventPayrollCreated, map[string]string{"id": "p1"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, service.EventPayrollCreated, msg.Event)
	assert.Equal(t, "p1", msg.Data["id"])
}

func TestStoppedHubReleasesClients(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	done := make(chan struct{})
	go hub.Run(done)
	srv := newServer(t, hub)

	first, _, err := gws.DefaultDialer.Dial(wsURL(srv, "good"), nil)
	require.NoError(t, err)
	defer first.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	close(done)
	select {
	case <-hub.stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	// Connected clients get closed and their unregister does not hang.
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = first.ReadMessage()
	assert.Error(t, err)

	left := make(chan struct{})
	go func() {
		hub.leave(&Client{Hub: hub})
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked after shutdown")
	}

	// New connections are turned away instead of blocking on register.
	late, _, err := gws.DefaultDialer.Dial(wsURL(srv, "good"), nil)
	require.NoError(t, err)
	defer late.Close()
	require.NoError(t, late.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = late.ReadMessage()
	assert.True(t, gws.IsCloseError(err, gws.CloseGoingAway), "got %v", err)
	assert.Zero(t, hub.ClientCount())
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	for i := 0; i < broadcastBuffer+10; i++ {
		hub.Publish("e", i)
	}
	assert.Len(t, hub.broadcast, broadcastBuffer)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:5173"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req))
	req.Header.Set("Origin", "http://localhost:5173")
	assert.True(t, check(req))
	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(req))
}
