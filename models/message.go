package models

// Sender identifies who produced a chat message
type Sender string

const (
	SenderUser    Sender = "user"
	SenderBot     Sender = "bot"
	SenderPending Sender = "pending"
)

// ChatMessage represents one entry of the conversation log
type ChatMessage struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// IsPending reports whether the message is the placeholder for an in-flight request
func (m ChatMessage) IsPending() bool {
	return m.Sender == SenderPending
}
