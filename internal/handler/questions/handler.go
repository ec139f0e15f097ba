package questions

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/titanic-chat/backend/internal/service/router"
	"github.com/zhouzirui/titanic-chat/backend/pkg/utils"
)

const (
	Greeting    = "Ask me anything about the Titanic passengers!"
	Placeholder = "What would you like to know?"
)

// RuleLister exposes the ordered routing rules.
type RuleLister interface {
	Rules() []router.Rule
}

// Suggestion 前端可直接展示的示例问题
type Suggestion struct {
	Intent router.Intent `json:"intent"`
	Phrase string        `json:"phrase"`
}

// Catalog 问题目录
type Catalog struct {
	Greeting    string       `json:"greeting"`
	Placeholder string       `json:"placeholder"`
	Questions   []Suggestion `json:"questions"`
}

// Handler 支持的问题列表处理器
type Handler struct {
	rules RuleLister
}

// New 创建问题列表处理器
func New(rules RuleLister) *Handler {
	return &Handler{rules: rules}
}

// RegisterRoutes 注册问题列表路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/questions", h.handleListQuestions)
}

// handleListQuestions 按优先级列出所有触发短语
func (h *Handler) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	rules := h.rules.Rules()
	catalog := Catalog{
		Greeting:    Greeting,
		Placeholder: Placeholder,
		Questions:   make([]Suggestion, 0, len(rules)),
	}
	for _, rule := range rules {
		catalog.Questions = append(catalog.Questions, Suggestion{Intent: rule.Intent, Phrase: rule.Phrase})
	}
	utils.RespondJSON(w, http.StatusOK, catalog)
}
