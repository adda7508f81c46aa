package models

// RegulationDocument represents an uploaded regulation text
type RegulationDocument struct {
	ID      string `json:"id"`
	Name    string `json:"name"` // Original filename, unique within the store
	Content string `json:"content"`
	Link    string `json:"link,omitempty"`
}

// UploadedRegulation is one decoded file of an upload batch
type UploadedRegulation struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// RegulationUpdate holds the editable fields of a regulation
type RegulationUpdate struct {
	Content string `json:"content"`
	Link    string `json:"link"`
}

// Readiness represents the load state of the regulation store
type Readiness string

const (
	ReadinessLoading       Readiness = "loading"
	ReadinessReadyEmpty    Readiness = "ready-empty"
	ReadinessReadyNonEmpty Readiness = "ready-nonempty"
)

// IsReady reports whether the initial load attempt has completed
func (r Readiness) IsReady() bool {
	return r == ReadinessReadyEmpty || r == ReadinessReadyNonEmpty
}
