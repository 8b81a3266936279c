package fakeapi

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/raphaelgruber/tenantchat/internal/models"
)

const (
	defaultChatTitle = "New Chat"
	titleMaxRunes    = 50
	maxDocumentSize  = 10 << 20
	echoModel        = "fakeapi-echo"
)

// ownedChatLocked looks up the chat in the route for the caller. On failure it has
// already written the response and returns nil.
func (s *Server) ownedChatLocked(c *gin.Context) *chatRecord {
	chat, found := s.chats[c.Param("chat_id")]
	if !found {
		fail(c, http.StatusNotFound, "Chat not found")
		return nil
	}
	if chat.userID != currentAccount(c).ID {
		fail(c, http.StatusForbidden, "Access denied")
		return nil
	}
	return chat
}

type chatRequest struct {
	Title string `json:"title"`
}

func (s *Server) createChat(c *gin.Context) {
	var req chatRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultChatTitle
	}

	now := s.now()
	chat := &chatRecord{
		ConversationSummary: models.ConversationSummary{
			ID:        newID(),
			Title:     title,
			CreatedAt: now,
			UpdatedAt: now,
		},
		userID: currentAccount(c).ID,
	}

	s.mu.Lock()
	s.chats[chat.ID] = chat
	s.mu.Unlock()

	ok(c, http.StatusCreated, "Chat created successfully", chat.ConversationSummary)
}

func (s *Server) listChats(c *gin.Context) {
	userID := currentAccount(c).ID

	s.mu.Lock()
	chats := make([]models.ConversationSummary, 0)
	for _, chat := range s.chats {
		if chat.userID == userID && !chat.IsArchived {
			chats = append(chats, chat.ConversationSummary)
		}
	}
	s.mu.Unlock()

	sort.Slice(chats, func(i, j int) bool {
		if !chats[i].UpdatedAt.Equal(chats[j].UpdatedAt) {
			return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
		}
		return chats[i].ID > chats[j].ID
	})
	ok(c, http.StatusOK, "Chats retrieved successfully", chats)
}

func (s *Server) getChat(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat := s.ownedChatLocked(c)
	if chat == nil {
		return
	}
	ok(c, http.StatusOK, "Chat retrieved successfully", chat.ConversationSummary)
}

func (s *Server) updateChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		fail(c, http.StatusBadRequest, "Title is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	chat := s.ownedChatLocked(c)
	if chat == nil {
		return
	}
	chat.Title = title
	chat.UpdatedAt = s.now()
	ok(c, http.StatusOK, "Chat updated successfully", nil)
}

func (s *Server) deleteChat(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat := s.ownedChatLocked(c)
	if chat == nil {
		return
	}
	delete(s.chats, chat.ID)
	ok(c, http.StatusOK, "Chat deleted successfully", nil)
}

// cleanupChat removes the chat when it never received a message. A chat that
// is already gone counts as cleaned up.
func (s *Server) cleanupChat(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, found := s.chats[c.Param("chat_id")]
	if !found {
		ok(c, http.StatusOK, "Chat not found, assumed cleaned up", nil)
		return
	}
	if chat.userID != currentAccount(c).ID {
		fail(c, http.StatusForbidden, "Access denied")
		return
	}
	if len(chat.messages) == 0 {
		delete(s.chats, chat.ID)
	}
	ok(c, http.StatusOK, "Chat cleanup completed", nil)
}

func (s *Server) listMessages(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat := s.ownedChatLocked(c)
	if chat == nil {
		return
	}
	messages := append([]models.Message{}, chat.messages...)
	ok(c, http.StatusOK, "Messages retrieved successfully", messages)
}

type messageRequest struct {
	Content string `json:"content"`
}

func (s *Server) createMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		fail(c, http.StatusBadRequest, "Message content is required")
		return
	}

	s.mu.Lock()
	chat := s.ownedChatLocked(c)
	if chat == nil {
		s.mu.Unlock()
		return
	}
	if len(chat.messages) == 0 {
		chat.Title = firstRunes(req.Content, titleMaxRunes)
	}
	chat.messages = append(chat.messages, s.newMessage(chat.ID, models.RoleUser, req.Content))
	chatID := chat.ID
	s.mu.Unlock()

	start := time.Now()
	if s.replyDelay > 0 {
		select {
		case <-time.After(s.replyDelay):
		case <-c.Request.Context().Done():
			fail(c, http.StatusServiceUnavailable, "Request cancelled")
			return
		}
	}
	reply := s.newMessage(chatID, models.RoleAssistant, echo(req.Content))
	reply.ModelUsed = echoModel
	reply.ResponseTime = time.Since(start).Seconds()

	s.mu.Lock()
	if chat, found := s.chats[chatID]; found {
		chat.messages = append(chat.messages, reply)
		chat.UpdatedAt = reply.Timestamp
	}
	s.mu.Unlock()

	ok(c, http.StatusOK, "Message sent successfully", reply)
}

func (s *Server) uploadDocument(c *gin.Context) {
	header, err := c.FormFile("document")
	if err != nil {
		fail(c, http.StatusBadRequest, "No document uploaded")
		return
	}
	if header.Size > maxDocumentSize {
		fail(c, http.StatusBadRequest, "File size exceeds 10MB limit")
		return
	}
	action := models.DocumentAction(c.DefaultPostForm("action", string(models.DocumentSummarize)))
	if !action.Valid() {
		fail(c, http.StatusBadRequest, "Invalid action")
		return
	}

	f, err := header.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "Failed to read document")
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		fail(c, http.StatusBadRequest, "Failed to read document")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	chat := s.ownedChatLocked(c)
	if chat == nil {
		return
	}

	processed := processDocument(action, header.Filename, string(content))
	attachment := models.Attachment{
		ID:            newID(),
		Filename:      header.Filename,
		MimeType:      header.Header.Get("Content-Type"),
		Size:          header.Size,
		UploadedAt:    s.now(),
		ProcessedData: processed,
	}

	userMsg := s.newMessage(chat.ID, models.RoleUser,
		fmt.Sprintf("Uploaded document: %s (Action: %s)", header.Filename, action))
	userMsg.Attachments = []models.Attachment{attachment}
	aiMsg := s.newMessage(chat.ID, models.RoleAssistant, processed)
	aiMsg.ModelUsed = echoModel

	if len(chat.messages) == 0 {
		chat.Title = firstRunes(header.Filename, titleMaxRunes)
	}
	chat.messages = append(chat.messages, userMsg, aiMsg)
	chat.UpdatedAt = aiMsg.Timestamp

	ok(c, http.StatusOK, "Document processed successfully", models.DocumentResult{
		UserMessage: userMsg,
		AIMessage:   aiMsg,
		Attachment:  attachment,
	})
}

func (s *Server) newMessage(chatID string, role models.Role, content string) models.Message {
	return models.Message{
		ID:        newID(),
		ChatID:    chatID,
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	}
}

// echo is the assistant.
func echo(content string) string {
	return "You said: " + strings.TrimSpace(content)
}

func processDocument(action models.DocumentAction, filename, content string) string {
	words := strings.FieldsFunc(content, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if action == models.DocumentExtract {
		seen := make(map[string]bool)
		var keywords []string
		for _, w := range words {
			w = strings.ToLower(w)
			if len(w) < 4 || seen[w] {
				continue
			}
			seen[w] = true
			keywords = append(keywords, w)
			if len(keywords) == 10 {
				break
			}
		}
		return fmt.Sprintf("Key terms in %s: %s", filename, strings.Join(keywords, ", "))
	}
	return fmt.Sprintf("Summary of %s: %d words. %s", filename, len(words), firstRunes(content, 200))
}

// firstRunes returns at most n runes of s.
func firstRunes(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
