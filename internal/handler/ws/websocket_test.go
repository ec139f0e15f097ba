package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/titanic-chat/backend/internal/model/chat"
	"github.com/zhouzirui/titanic-chat/backend/internal/model/passenger"
	chatservice "github.com/zhouzirui/titanic-chat/backend/internal/service/chat"
	"github.com/zhouzirui/titanic-chat/backend/internal/service/router"
)

type answerEnvelope struct {
	Type string    `json:"type"`
	Data chat.Turn `json:"data"`
}

func dial(t *testing.T) (*websocket.Conn, *chatservice.Service, string) {
	t.Helper()

	table := passenger.NewTable([]passenger.Passenger{{Embarked: "S"}, {Embarked: "Q"}, {Embarked: "S"}})
	chatSvc := chatservice.NewService(router.New(table, nil, nil), nil)
	session, err := chatSvc.CreateSession(context.Background())
	require.NoError(t, err)

	r := chi.NewRouter()
	New(chatSvc, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + session.ID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var hello outgoingMessage
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, "connected", hello.Type)

	return conn, chatSvc, session.ID
}

func TestWebSocketQuestion(t *testing.T) {
	conn, chatSvc, sessionID := dial(t)

	data, _ := json.Marshal(QuestionMessage{Text: "How many people embarked from each port?"})
	require.NoError(t, conn.WriteJSON(inboundMessage{Type: "question", Data: data}))

	var reply answerEnvelope
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "answer", reply.Type)
	assert.Equal(t, chat.RoleAssistant, reply.Data.Role)
	assert.Equal(t, "Passengers embarked from these ports:\n- S: 2 passengers\n- Q: 1 passengers\n", reply.Data.Content)

	turns, err := chatSvc.LoadTranscript(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Len(t, turns, 2)
}

func TestWebSocketUnsupportedType(t *testing.T) {
	conn, _, _ := dial(t)

	require.NoError(t, conn.WriteJSON(inboundMessage{Type: "audio"}))

	var reply outgoingMessage
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "error", reply.Type)
}

func TestWebSocketPing(t *testing.T) {
	conn, _, _ := dial(t)

	require.NoError(t, conn.WriteJSON(inboundMessage{Type: "ping"}))

	var reply outgoingMessage
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "pong", reply.Type)
}

func TestWebSocketUnknownSession(t *testing.T) {
	chatSvc := chatservice.NewService(router.New(passenger.NewTable(nil), nil, nil), nil)
	r := chi.NewRouter()
	New(chatSvc, nil).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/ws/missing", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
