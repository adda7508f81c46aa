package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"handbookbot-backend/models"

	"github.com/google/uuid"
)

// RegulationSource is the read side of the regulation store
type RegulationSource interface {
	List() []models.RegulationDocument
	Readiness() models.Readiness
}

// Completer answers an assembled completion request; failures come back as displayable text
type Completer interface {
	Complete(ctx context.Context, req models.CompletionRequest) string
}

// ConversationState is the per-turn state of a conversation
type ConversationState string

const (
	StateIdle             ConversationState = "idle"
	StateAwaitingResponse ConversationState = "awaiting-response"
)

const (
	// WelcomeMessage opens every conversation
	WelcomeMessage = "안녕하세요! 저는 여러분의 AI 동료, 생활백서봇이에요. 사내 규정에 대해 궁금한 게 있다면 뭐든지 물어보세요! 😊"
	// NoDocumentsMessage answers every question while the store is empty
	NoDocumentsMessage = "현재 조회할 수 있는 규정 파일이 없습니다. 관리자가 규정 파일을 먼저 추가해야 합니다."
)

var (
	ErrBlankInput     = errors.New("message text is blank")
	ErrStoreNotReady  = errors.New("regulations are still loading")
	ErrTurnInProgress = errors.New("a response is already being generated")
	ErrNotConfigured  = errors.New("conversation dependencies not set")
)

// ConversationService owns the message log of the single session conversation
type ConversationService struct {
	regulations RegulationSource
	completer   Completer
	model       string

	mu       sync.Mutex
	messages []models.ChatMessage
	inFlight bool
}

// ConversationServiceOption is a functional option for ConversationService
type ConversationServiceOption func(*ConversationService)

// ConversationWithRegulations sets the regulation source
func ConversationWithRegulations(src RegulationSource) ConversationServiceOption {
	return func(s *ConversationService) {
		s.regulations = src
	}
}

// ConversationWithCompleter sets the completion backend
func ConversationWithCompleter(c Completer) ConversationServiceOption {
	return func(s *ConversationService) {
		s.completer = c
	}
}

// ConversationWithModel sets the model identifier put on every request
func ConversationWithModel(model string) ConversationServiceOption {
	return func(s *ConversationService) {
		s.model = model
	}
}

// NewConversationService creates a conversation seeded with the welcome message
func NewConversationService(opts ...ConversationServiceOption) *ConversationService {
	s := &ConversationService{model: DefaultModel}
	for _, opt := range opts {
		opt(s)
	}
	s.messages = []models.ChatMessage{newMessage(WelcomeMessage, models.SenderBot)}
	return s
}

// Send runs one turn: it logs the user message behind a pending placeholder, resolves the
// answer and replaces the placeholder with it. Only one turn may be in flight at a time.
func (s *ConversationService) Send(ctx context.Context, text string) (models.ChatMessage, error) {
	if s.regulations == nil || s.completer == nil {
		return models.ChatMessage{}, ErrNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return models.ChatMessage{}, ErrBlankInput
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return models.ChatMessage{}, ErrTurnInProgress
	}
	if !s.regulations.Readiness().IsReady() {
		s.mu.Unlock()
		return models.ChatMessage{}, ErrStoreNotReady
	}
	s.inFlight = true
	s.messages = append(s.messages,
		newMessage(text, models.SenderUser),
		newMessage("", models.SenderPending),
	)
	s.mu.Unlock()

	answer := s.answer(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	reply := newMessage(answer, models.SenderBot)
	s.messages[len(s.messages)-1] = reply
	s.inFlight = false

	return reply, nil
}

func (s *ConversationService) answer(ctx context.Context, question string) string {
	docs := s.regulations.List()
	if len(docs) == 0 {
		return NoDocumentsMessage
	}
	return s.completer.Complete(ctx, AssemblePrompt(s.model, question, docs))
}

// Messages returns a snapshot of the log, including the pending entry of an in-flight turn
func (s *ConversationService) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// State reports whether a turn is in flight
func (s *ConversationService) State() ConversationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return StateAwaitingResponse
	}
	return StateIdle
}

// Reset starts a new session; it is refused while a turn is in flight
func (s *ConversationService) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return ErrTurnInProgress
	}
	s.messages = []models.ChatMessage{newMessage(WelcomeMessage, models.SenderBot)}
	return nil
}

func newMessage(text string, sender models.Sender) models.ChatMessage {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return models.ChatMessage{ID: id.String(), Text: text, Sender: sender}
}
