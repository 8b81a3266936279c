package models

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TempIDPrefix marks message ids synthesized by the client before the server answers.
const TempIDPrefix = "temp_"

// ConversationSummary is one entry in the chat history list.
type ConversationSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	IsArchived bool      `json:"is_archived,omitempty"`
}

// Message is a single entry in a conversation.
type Message struct {
	ID           string       `json:"id"`
	ChatID       string       `json:"chat_id,omitempty"`
	Role         Role         `json:"role"`
	Content      string       `json:"content"`
	Timestamp    time.Time    `json:"timestamp"`
	ResponseTime float64      `json:"response_time,omitempty"` // seconds
	ModelUsed    string       `json:"model_used,omitempty"`
	Attachments  []Attachment `json:"attachments,omitempty"`
}

// IsOptimistic reports whether the message was synthesized locally.
func (m Message) IsOptimistic() bool {
	return len(m.ID) > len(TempIDPrefix) && m.ID[:len(TempIDPrefix)] == TempIDPrefix
}

// Conversation is the currently open chat. ID is empty exactly when no
// conversation route is active, and then Messages is empty too.
type Conversation struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// EmptyConversation is the open-conversation slot with nothing open.
func EmptyConversation() Conversation {
	return Conversation{Messages: []Message{}}
}

// Attachment describes an uploaded document stored with a message.
type Attachment struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	MimeType      string    `json:"mime_type"`
	Size          int64     `json:"size"`
	URL           string    `json:"url,omitempty"`
	UploadedAt    time.Time `json:"uploaded_at"`
	ProcessedData string    `json:"processed_data,omitempty"`
}

// DocumentAction selects what the server does with an uploaded document.
type DocumentAction string

const (
	DocumentSummarize DocumentAction = "summarize"
	DocumentExtract   DocumentAction = "extract"
)

// Valid reports whether a is an action the server understands.
func (a DocumentAction) Valid() bool {
	return a == DocumentSummarize || a == DocumentExtract
}

// DocumentResult is the payload returned by a document upload.
type DocumentResult struct {
	UserMessage Message    `json:"user_message"`
	AIMessage   Message    `json:"ai_message"`
	Attachment  Attachment `json:"attachment"`
}
