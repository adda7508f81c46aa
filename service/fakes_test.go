package service

import (
	"context"
	"sync"

	"handbookbot-backend/models"
)

type fakeGenerator struct {
	mu       sync.Mutex
	calls    []models.CompletionRequest
	generate func(ctx context.Context, req models.CompletionRequest) (string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, req models.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.generate(ctx, req)
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type staticRegulations struct {
	mu        sync.Mutex
	docs      []models.RegulationDocument
	readiness models.Readiness
}

func (s *staticRegulations) List() []models.RegulationDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.RegulationDocument(nil), s.docs...)
}

func (s *staticRegulations) Readiness() models.Readiness {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readiness != "" {
		return s.readiness
	}
	if len(s.docs) == 0 {
		return models.ReadinessReadyEmpty
	}
	return models.ReadinessReadyNonEmpty
}
