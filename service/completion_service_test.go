package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"handbookbot-backend/models"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func answerWith(text string, err error) *fakeGenerator {
	return &fakeGenerator{generate: func(ctx context.Context, req models.CompletionRequest) (string, error) {
		return text, err
	}}
}

func TestCompleteReturnsModelText(t *testing.T) {
	gen := answerWith("연차는 <strong>15일</strong>이에요.", nil)
	svc := NewCompletionService(CompletionWithGenerator(gen), CompletionWithAPIKey("key"))

	text, kind := svc.CompleteWithKind(context.Background(), models.CompletionRequest{Contents: "q"})

	assert.Equal(t, "연차는 <strong>15일</strong>이에요.", text)
	assert.Equal(t, ErrorKindNone, kind)
	assert.Equal(t, 1, gen.callCount())
}

func TestCompleteMissingCredential(t *testing.T) {
	for _, key := range []string{"", "  ", "YOUR_API_KEY"} {
		gen := answerWith("never", nil)
		svc := NewCompletionService(CompletionWithGenerator(gen), CompletionWithAPIKey(key))

		text, kind := svc.CompleteWithKind(context.Background(), models.CompletionRequest{})

		assert.Equal(t, MissingCredentialMessage, text)
		assert.Equal(t, ErrorKindMissingCredential, kind)
		assert.Zero(t, gen.callCount(), "generator must not be called for key %q", key)
	}
}

func TestCompleteWithoutGeneratorIsConfigurationError(t *testing.T) {
	svc := NewCompletionService(CompletionWithAPIKey("key"))
	assert.Equal(t, MissingCredentialMessage, svc.Complete(context.Background(), models.CompletionRequest{}))
}

func TestCompleteErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", &googleapi.Error{Code: 401}, AuthRejectedMessage},
		{"forbidden", fmt.Errorf("generate: %w", &googleapi.Error{Code: 403}), AuthRejectedMessage},
		{"invalid key", &googleapi.Error{Code: 400, Message: "API key not valid. Please pass a valid API key."}, AuthRejectedMessage},
		{"invalid key text", errors.New("googleapi: Error 400: API key not valid. Please pass a valid API key."), AuthRejectedMessage},
		{"bad request", &googleapi.Error{Code: 400, Message: "Request payload size exceeds the limit"}, TransientFailureMessage},
		{"server error", &googleapi.Error{Code: 503}, TransientFailureMessage},
		{"transport", errors.New("dial tcp: connection refused"), TransientFailureMessage},
		{"missing credential", ErrMissingCredential, MissingCredentialMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := answerWith("", tt.err)
			svc := NewCompletionService(CompletionWithGenerator(gen), CompletionWithAPIKey("key"))

			assert.Equal(t, tt.want, svc.Complete(context.Background(), models.CompletionRequest{}))
			assert.Equal(t, 1, gen.callCount(), "no retries")
		})
	}
}

func TestCompleteEmptyAnswerIsTransient(t *testing.T) {
	svc := NewCompletionService(CompletionWithGenerator(answerWith("  \n", nil)), CompletionWithAPIKey("key"))

	text, kind := svc.CompleteWithKind(context.Background(), models.CompletionRequest{})

	assert.Equal(t, TransientFailureMessage, text)
	assert.Equal(t, ErrorKindTransientFailure, kind)
}

func TestCompleteTimeoutIsTransient(t *testing.T) {
	gen := &fakeGenerator{generate: func(ctx context.Context, req models.CompletionRequest) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	svc := NewCompletionService(
		CompletionWithGenerator(gen),
		CompletionWithAPIKey("key"),
		CompletionWithTimeout(10*time.Millisecond),
	)

	text, kind := svc.CompleteWithKind(context.Background(), models.CompletionRequest{})

	assert.Equal(t, TransientFailureMessage, text)
	assert.Equal(t, ErrorKindTransientFailure, kind)
}

func TestClassifyNil(t *testing.T) {
	assert.Equal(t, ErrorKindNone, Classify(nil))
}

func TestFallbackMessage(t *testing.T) {
	assert.Equal(t, MissingCredentialMessage, FallbackMessage(ErrorKindMissingCredential))
	assert.Equal(t, AuthRejectedMessage, FallbackMessage(ErrorKindAuthRejected))
	assert.Equal(t, TransientFailureMessage, FallbackMessage(ErrorKindTransientFailure))
}
