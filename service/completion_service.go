package service

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"handbookbot-backend/models"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
)

// Generator sends a completion request to a hosted model
type Generator interface {
	Generate(ctx context.Context, req models.CompletionRequest) (string, error)
}

// ErrorKind classifies completion failures
type ErrorKind string

const (
	ErrorKindNone              ErrorKind = ""
	ErrorKindMissingCredential ErrorKind = "missing_credential"
	ErrorKindAuthRejected      ErrorKind = "auth_rejected"
	ErrorKindTransientFailure  ErrorKind = "transient_failure"
)

var (
	ErrMissingCredential = errors.New("completion API key not configured")
	ErrEmptyCompletion   = errors.New("API returned empty content")
)

// User-facing fallbacks, one per ErrorKind
const (
	MissingCredentialMessage = "API 키가 설정되지 않았습니다. 관리자에게 문의해주세요."
	AuthRejectedMessage      = "API 키가 올바르지 않은 것 같습니다. 관리자에게 API 키 설정을 다시 확인해달라고 요청해주세요."
	TransientFailureMessage  = "죄송합니다, 답변을 생성하는 중에 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
)

// placeholderAPIKey is treated like an absent key
const placeholderAPIKey = "YOUR_API_KEY"

// DefaultCompletionTimeout bounds a single completion call
const DefaultCompletionTimeout = 60 * time.Second

// CompletionService calls the model once per request and turns every failure into a displayable message
type CompletionService struct {
	generator Generator
	apiKey    string
	timeout   time.Duration
}

// CompletionServiceOption is a functional option for CompletionService
type CompletionServiceOption func(*CompletionService)

// CompletionWithGenerator sets the model backend
func CompletionWithGenerator(g Generator) CompletionServiceOption {
	return func(s *CompletionService) {
		s.generator = g
	}
}

// CompletionWithAPIKey sets the credential; an empty key is the "absent" state
func CompletionWithAPIKey(apiKey string) CompletionServiceOption {
	return func(s *CompletionService) {
		s.apiKey = apiKey
	}
}

// CompletionWithTimeout bounds each call; zero disables the bound
func CompletionWithTimeout(timeout time.Duration) CompletionServiceOption {
	return func(s *CompletionService) {
		s.timeout = timeout
	}
}

// NewCompletionService creates a new completion service
func NewCompletionService(opts ...CompletionServiceOption) *CompletionService {
	s := &CompletionService{timeout: DefaultCompletionTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasCredential reports whether a usable API key is configured
func (s *CompletionService) HasCredential() bool {
	key := strings.TrimSpace(s.apiKey)
	return key != "" && key != placeholderAPIKey
}

// Complete returns the model's answer or the fallback message for the failure
func (s *CompletionService) Complete(ctx context.Context, req models.CompletionRequest) string {
	text, _ := s.CompleteWithKind(ctx, req)
	return text
}

// CompleteWithKind is Complete that also reports which failure, if any, produced the text
func (s *CompletionService) CompleteWithKind(ctx context.Context, req models.CompletionRequest) (string, ErrorKind) {
	if !s.HasCredential() || s.generator == nil {
		log.Println("Warning: GEMINI_API_KEY not set, skipping completion")
		return MissingCredentialMessage, ErrorKindMissingCredential
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.generator.Generate(ctx, req)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyCompletion
	}
	if err != nil {
		log.Printf("Gemini API error: %v", err)
		kind := Classify(err)
		return FallbackMessage(kind), kind
	}

	return text, ErrorKindNone
}

// FallbackMessage returns the user-facing text for a failure kind
func FallbackMessage(kind ErrorKind) string {
	switch kind {
	case ErrorKindMissingCredential:
		return MissingCredentialMessage
	case ErrorKindAuthRejected:
		return AuthRejectedMessage
	default:
		return TransientFailureMessage
	}
}

// Classify maps a generator error onto the failure taxonomy
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}
	if errors.Is(err, ErrMissingCredential) {
		return ErrorKindMissingCredential
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) && isAuthStatus(gerr.Code, gerr.Message) {
		return ErrorKindAuthRejected
	}

	var aerr *apierror.APIError
	if errors.As(err, &aerr) {
		if aerr.Reason() == "API_KEY_INVALID" || isAuthStatus(aerr.HTTPCode(), aerr.Error()) {
			return ErrorKindAuthRejected
		}
		if st := aerr.GRPCStatus(); st != nil {
			switch st.Code() {
			case codes.Unauthenticated, codes.PermissionDenied:
				return ErrorKindAuthRejected
			}
		}
	}

	if strings.Contains(err.Error(), "API key not valid") {
		return ErrorKindAuthRejected
	}

	return ErrorKindTransientFailure
}

func isAuthStatus(code int, message string) bool {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	case http.StatusBadRequest:
		return strings.Contains(message, "API key not valid")
	}
	return false
}
