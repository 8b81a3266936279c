package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/raphaelgruber/tenantchat/internal/models"
)

// MaxDocumentSize is the largest upload the server accepts.
const MaxDocumentSize = 10 * 1024 * 1024

func chatPath(id string, suffix string) string {
	return "/chats/" + url.PathEscape(id) + suffix
}

// ListChats returns the conversation summaries of the current user.
func (c *Client) ListChats(ctx context.Context) ([]models.ConversationSummary, error) {
	var chats []models.ConversationSummary
	if err := c.do(ctx, "GET /chats", http.MethodGet, "/chats", nil, nil, &chats); err != nil {
		return nil, err
	}
	if chats == nil {
		chats = []models.ConversationSummary{}
	}
	return chats, nil
}

// CreateChat creates a conversation. An empty title lets the server pick one.
func (c *Client) CreateChat(ctx context.Context, title string) (*models.ConversationSummary, error) {
	body := map[string]string{"title": title}
	var chat models.ConversationSummary
	if err := c.do(ctx, "POST /chats", http.MethodPost, "/chats", nil, body, &chat); err != nil {
		return nil, err
	}
	if chat.ID == "" {
		return nil, fmt.Errorf("create chat: response has no id")
	}
	return &chat, nil
}

// ListMessages returns the messages of a conversation in server order.
func (c *Client) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	var messages []models.Message
	if err := c.do(ctx, "GET /chats/{id}/messages", http.MethodGet, chatPath(chatID, "/messages"), nil, nil, &messages); err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// SendMessage posts a user message and returns the assistant's reply.
func (c *Client) SendMessage(ctx context.Context, chatID, content string) (*models.Message, error) {
	body := map[string]string{"content": content}
	var reply models.Message
	if err := c.do(ctx, "POST /chats/{id}/messages", http.MethodPost, chatPath(chatID, "/messages"), nil, body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// RenameChat sets a conversation's title.
func (c *Client) RenameChat(ctx context.Context, chatID, title string) error {
	body := map[string]string{"title": title}
	return c.do(ctx, "PUT /chats/{id}", http.MethodPut, chatPath(chatID, ""), nil, body, nil)
}

// DeleteChat deletes a conversation and its messages.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	return c.do(ctx, "DELETE /chats/{id}", http.MethodDelete, chatPath(chatID, ""), nil, nil, nil)
}

// CleanupChat asks the server to delete the conversation if it has no messages.
func (c *Client) CleanupChat(ctx context.Context, chatID string) error {
	return c.do(ctx, "POST /chats/{id}/cleanup", http.MethodPost, chatPath(chatID, "/cleanup"), nil, nil, nil)
}

// UploadDocument sends a document for the server to summarize or extract.
// The server stores a user message carrying the attachment and an assistant
// message with the processed text; both are returned.
func (c *Client) UploadDocument(ctx context.Context, chatID, filename string, r io.Reader, action models.DocumentAction) (*models.DocumentResult, error) {
	if action == "" {
		action = models.DocumentSummarize
	}
	if !action.Valid() {
		return nil, fmt.Errorf("upload document: unknown action %q", action)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("upload document: %s exceeds the 10MB limit", filename)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("document", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := w.WriteField("action", string(action)); err != nil {
		return nil, fmt.Errorf("write form field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(chatPath(chatID, "/documents"), nil), &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var result models.DocumentResult
	if err := c.send(req, "POST /chats/{id}/documents", &result); err != nil {
		return nil, err
	}
	return &result, nil
}
