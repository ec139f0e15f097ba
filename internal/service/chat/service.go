package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/titanic-chat/backend/internal/model/chat"
	"github.com/zhouzirui/titanic-chat/backend/internal/service/router"
)

var (
	ErrQuestionRequired = errors.New("question is required")
	ErrSessionNotFound  = errors.New("session not found")
)

// Answerer produces an answer for a single question.
type Answerer interface {
	Route(question string) router.Answer
}

type sessionState struct {
	session    chat.Session
	transcript *chat.Transcript
	// ask serializes question/answer cycles so turns stay paired.
	ask sync.Mutex
}

// Service encapsulates conversation state management.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
	answerer Answerer
	logger   *zap.Logger
}

// NewService bootstraps the in-memory chat service.
func NewService(answerer Answerer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sessions: make(map[string]*sessionState),
		answerer: answerer,
		logger:   logger,
	}
}

// CreateSession provisions an anonymous session with an empty transcript.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = &sessionState{
		session:    session,
		transcript: chat.NewTranscript(session.ID),
	}
	s.mu.Unlock()

	s.logger.Info("session created", zap.String("session", session.ID))
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	state, err := s.lookup(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	return state.session, nil
}

// Ask records question as a user turn, answers it, and records the answer as
// the following assistant turn. It returns the assistant turn.
func (s *Service) Ask(ctx context.Context, sessionID, question string) (chat.Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return chat.Turn{}, ErrQuestionRequired
	}

	state, err := s.lookup(sessionID)
	if err != nil {
		return chat.Turn{}, err
	}
	if err := ctx.Err(); err != nil {
		return chat.Turn{}, err
	}

	state.ask.Lock()
	defer state.ask.Unlock()

	state.transcript.AppendUser(question)
	answer := s.answerer.Route(question)
	turn := state.transcript.AppendAssistant(answer.Text, answer.Image, string(answer.Intent))

	s.logger.Info("question answered",
		zap.String("session", sessionID),
		zap.String("intent", string(answer.Intent)),
		zap.Bool("image", answer.Image != ""),
	)
	return turn, nil
}

// LoadTranscript returns the stored turns for the provided session.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Turn, error) {
	state, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return state.transcript.AllTurns(), nil
}

// EndSession discards a session and its transcript.
func (s *Service) EndSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *Service) lookup(sessionID string) (*sessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return state, nil
}
