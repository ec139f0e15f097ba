package stream

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/zhouzirui/titanic-chat/backend/internal/model/chat"
	chatService "github.com/zhouzirui/titanic-chat/backend/internal/service/chat"
	"github.com/zhouzirui/titanic-chat/backend/pkg/utils"
)

// ErrStreamingUnsupported is returned when the ResponseWriter cannot flush.
var ErrStreamingUnsupported = errors.New("streaming unsupported")

// Handler answers questions over Server-Sent Events
type Handler struct {
	chatSvc *chatService.Service
	logger  *zap.Logger
}

// New creates a new stream handler
func New(chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{chatSvc: chatSvc, logger: logger}
}

// StreamResponse represents one SSE payload
type StreamResponse struct {
	SessionID string     `json:"sessionId,omitempty"`
	Turn      *chat.Turn `json:"turn,omitempty"`
	Finished  bool       `json:"finished,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Serve handles GET /stream/{sessionID}?message=...
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, sessionID string) {
	question := r.URL.Query().Get("message")
	if question == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}
	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := h.HandleStreamRequest(r.Context(), w, sessionID, question); err != nil {
		h.logger.Warn("stream request failed", zap.String("session", sessionID), zap.Error(err))
		if errors.Is(err, ErrStreamingUnsupported) {
			utils.RespondError(w, http.StatusInternalServerError, "streaming failed")
		}
	}
}

// HandleStreamRequest answers one question and emits start, message and end events.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, question string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return ErrStreamingUnsupported
	}

	utils.SetupSSEHeaders(w)

	if err := utils.SendSSEEvent(w, flusher, "start", StreamResponse{SessionID: sessionID}); err != nil {
		return err
	}

	turn, err := h.chatSvc.Ask(ctx, sessionID, question)
	if err != nil {
		_ = utils.SendSSEEvent(w, flusher, "error", StreamResponse{SessionID: sessionID, Error: err.Error()})
		return err
	}

	if err := utils.SendSSEEvent(w, flusher, "message", StreamResponse{SessionID: sessionID, Turn: &turn}); err != nil {
		return err
	}

	h.logger.Debug("stream completed", zap.String("session", sessionID), zap.String("intent", turn.Intent))
	return utils.SendSSEEvent(w, flusher, "end", StreamResponse{SessionID: sessionID, Finished: true})
}
