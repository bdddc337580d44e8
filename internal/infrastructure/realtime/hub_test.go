package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homefinder-backend/pkg/cache"
	"homefinder-backend/pkg/jwt"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHub_NotifyDeliversToEverySession(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()

	a := &Client{hub: hub, userID: userID.String(), send: make(chan []byte, 1)}
	b := &Client{hub: hub, userID: userID.String(), send: make(chan []byte, 1)}
	hub.register <- a
	hub.register <- b

	require.Eventually(t, func() bool { return hub.SessionCount() == 2 }, time.Second, 10*time.Millisecond)

	assert.True(t, hub.Notify(userID, EventReceiveMessage, map[string]string{"content": "hi"}))

	for _, c := range []*Client{a, b} {
		var ev Event
		require.NoError(t, json.Unmarshal(<-c.send, &ev))
		assert.Equal(t, EventReceiveMessage, ev.Type)
	}
}

func TestHub_NotifyOfflineUser(t *testing.T) {
	hub := startHub(t)
	assert.False(t, hub.Notify(uuid.New(), EventReceiveMessage, nil))
}

func TestHub_Unregister(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()
	c := &Client{hub: hub, userID: userID.String(), send: make(chan []byte, 1)}

	hub.register <- c
	require.Eventually(t, func() bool { return hub.IsOnline(userID) }, time.Second, 10*time.Millisecond)

	hub.unregister <- c
	require.Eventually(t, func() bool { return !hub.IsOnline(userID) }, time.Second, 10*time.Millisecond)

	_, open := <-c.send
	assert.False(t, open)
}

func TestHandler_TypingRelay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := startHub(t)
	manager := jwt.NewManager("test-secret", time.Hour)

	r := gin.New()
	r.GET("/ws", NewHandler(hub, manager, nil, nil).ServeWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	alice, bob := uuid.New(), uuid.New()
	dial := func(id uuid.UUID) *websocket.Conn {
		token, err := manager.GenerateAccessToken(id.String(), id.String()+"@example.com", "user")
		require.NoError(t, err)
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}

	aliceConn := dial(alice)
	bobConn := dial(bob)
	require.Eventually(t, func() bool { return hub.IsOnline(alice) && hub.IsOnline(bob) }, time.Second, 10*time.Millisecond)

	require.NoError(t, aliceConn.WriteJSON(map[string]interface{}{
		"type": EventTyping,
		"data": map[string]string{"chatId": "chat-1", "recipientId": bob.String()},
	}))

	_ = bobConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, bobConn.ReadJSON(&ev))
	assert.Equal(t, EventTyping, ev.Type)
	assert.Equal(t, "chat-1", ev.Data["chatId"])
	assert.Equal(t, alice.String(), ev.Data["userId"])
}

func TestHandler_RejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := startHub(t)

	r := gin.New()
	r.GET("/ws", NewHandler(hub, jwt.NewManager("s", time.Hour), nil, nil).ServeWS)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ws", nil))
	assert.Equal(t, 401, w.Code)
}

func TestHandler_RejectsRevokedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := startHub(t)
	manager := jwt.NewManager("test-secret", time.Hour)
	revocations := cache.NewMemoryCache()

	r := gin.New()
	r.GET("/ws", NewHandler(hub, manager, revocations, nil).ServeWS)

	userID := uuid.New()
	token, err := manager.GenerateAccessToken(userID.String(), "tenant@example.com", "user")
	require.NoError(t, err)
	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	require.NoError(t, revocations.Set(context.Background(), jwt.RevocationKey(claims.ID), true, time.Hour))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ws?token="+token, nil))
	assert.Equal(t, 401, w.Code)
	assert.False(t, hub.IsOnline(userID))
}
