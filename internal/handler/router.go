package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/titanic-chat/backend/internal/handler/chat"
	"github.com/zhouzirui/titanic-chat/backend/internal/handler/questions"
	"github.com/zhouzirui/titanic-chat/backend/internal/handler/stream"
	"github.com/zhouzirui/titanic-chat/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/titanic-chat/backend/internal/middleware"
	"github.com/zhouzirui/titanic-chat/backend/internal/model/passenger"
	chatService "github.com/zhouzirui/titanic-chat/backend/internal/service/chat"
	"github.com/zhouzirui/titanic-chat/backend/pkg/utils"
)

// Deps groups the services the HTTP layer needs.
type Deps struct {
	Table   *passenger.Table
	Rules   questions.RuleLister
	ChatSvc *chatService.Service
	Logger  *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":     "ok",
			"passengers": deps.Table.Len(),
		})
	})

	questionHandler := questions.New(deps.Rules)
	chatHandler := chat.New(deps.ChatSvc)
	streamHandler := stream.New(deps.ChatSvc, deps.Logger)
	wsHandler := ws.New(deps.ChatSvc, deps.Logger)

	r.Route("/api", func(api chi.Router) {
		questionHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			streamHandler.Serve(w, r, chi.URLParam(r, "sessionID"))
		})
	})

	return r
}
