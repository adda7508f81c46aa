package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"handbookbot-backend/models"
	"handbookbot-backend/storage"

	"github.com/google/uuid"
)

// DefaultRegulationsKey is the slot name the collection is persisted under
const DefaultRegulationsKey = "arena-regulations"

// RegulationRepository owns the regulation collection and persists it as a single blob.
// The in-memory collection is the source of truth; persistence is best effort.
type RegulationRepository struct {
	blob storage.BlobStore
	key  string

	mu     sync.RWMutex
	docs   []models.RegulationDocument
	loaded bool
}

// NewRegulationRepository creates a new regulation repository
func NewRegulationRepository(blob storage.BlobStore, key string) *RegulationRepository {
	if key == "" {
		key = DefaultRegulationsKey
	}
	return &RegulationRepository{
		blob: blob,
		key:  key,
		docs: []models.RegulationDocument{},
	}
}

// Load reads the persisted collection. Failures are logged and yield an empty collection.
func (r *RegulationRepository) Load(ctx context.Context) []models.RegulationDocument {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs = r.readBlob(ctx)
	r.loaded = true

	return cloneDocs(r.docs)
}

func (r *RegulationRepository) readBlob(ctx context.Context) []models.RegulationDocument {
	data, err := r.blob.Load(ctx, r.key)
	if err != nil {
		if !errors.Is(err, storage.ErrBlobNotFound) {
			log.Printf("Failed to load regulations from %s: %v", r.key, err)
		}
		return []models.RegulationDocument{}
	}

	var stored []models.RegulationDocument
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Printf("Failed to load regulations from %s: %v", r.key, err)
		return []models.RegulationDocument{}
	}

	// A hand-edited or corrupted blob may repeat names; keep the first
	docs := make([]models.RegulationDocument, 0, len(stored))
	seen := make(map[string]bool, len(stored))
	for _, doc := range stored {
		if seen[doc.Name] {
			log.Printf("Warning: Dropping duplicate regulation %q found in %s", doc.Name, r.key)
			continue
		}
		seen[doc.Name] = true
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		docs = append(docs, doc)
	}

	return docs
}

// Add appends every candidate whose name is not already present. Duplicate names,
// including repeats inside the batch, are skipped and returned in ignored.
func (r *RegulationRepository) Add(ctx context.Context, batch []models.UploadedRegulation) (stored []models.RegulationDocument, ignored []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make(map[string]bool, len(r.docs)+len(batch))
	for _, doc := range r.docs {
		names[doc.Name] = true
	}

	for _, candidate := range batch {
		if names[candidate.Name] {
			ignored = append(ignored, candidate.Name)
			continue
		}
		names[candidate.Name] = true
		stored = append(stored, models.RegulationDocument{
			ID:      uuid.NewString(),
			Name:    candidate.Name,
			Content: candidate.Content,
		})
	}

	if len(stored) == 0 {
		return nil, ignored
	}

	r.docs = append(r.docs, stored...)
	r.persist(ctx)

	return cloneDocs(stored), ignored
}

// Update replaces content and link of the document with the given ID.
// It returns false and leaves the collection untouched when no document matches.
func (r *RegulationRepository) Update(ctx context.Context, id string, update models.RegulationUpdate) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return false
	}

	r.docs[idx].Content = update.Content
	r.docs[idx].Link = update.Link
	r.persist(ctx)

	return true
}

// Delete removes the document with the given ID, returning false when none matches
func (r *RegulationRepository) Delete(ctx context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return false
	}

	docs := make([]models.RegulationDocument, 0, len(r.docs)-1)
	docs = append(docs, r.docs[:idx]...)
	docs = append(docs, r.docs[idx+1:]...)
	r.docs = docs
	r.persist(ctx)

	return true
}

// List returns the collection in insertion order
func (r *RegulationRepository) List() []models.RegulationDocument {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneDocs(r.docs)
}

// Get returns the document with the given ID
func (r *RegulationRepository) Get(id string) (models.RegulationDocument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return models.RegulationDocument{}, false
	}
	return r.docs[idx], true
}

// Readiness distinguishes "still loading" from "confirmed empty"
func (r *RegulationRepository) Readiness() models.Readiness {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch {
	case !r.loaded:
		return models.ReadinessLoading
	case len(r.docs) == 0:
		return models.ReadinessReadyEmpty
	default:
		return models.ReadinessReadyNonEmpty
	}
}

func (r *RegulationRepository) indexOf(id string) int {
	for i, doc := range r.docs {
		if doc.ID == id {
			return i
		}
	}
	return -1
}

// persist overwrites the blob with the whole collection; callers hold r.mu
func (r *RegulationRepository) persist(ctx context.Context) {
	data, err := json.Marshal(r.docs)
	if err != nil {
		log.Printf("Failed to save regulations to %s: %v", r.key, err)
		return
	}

	if err := r.blob.Save(ctx, r.key, data); err != nil {
		log.Printf("Failed to save regulations to %s: %v", r.key, err)
	}
}

func cloneDocs(docs []models.RegulationDocument) []models.RegulationDocument {
	out := make([]models.RegulationDocument, len(docs))
	copy(out, docs)
	return out
}
