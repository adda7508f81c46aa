package models

// CompletionRequest is the payload sent to the completion API
type CompletionRequest struct {
	Model             string `json:"model"`
	SystemInstruction string `json:"system_instruction"`
	Contents          string `json:"contents"`
}
