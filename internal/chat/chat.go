// Package chat provides the document Q&A surface. The default responder
// is canned; Responder is the seam where an LLM-backed implementation
// plugs in.
package chat

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// DocContext tells the responder what material the session has loaded.
type DocContext struct {
	DocumentPath string
	RecordPath   string
	OCRPath      string
}

// Responder generates a reply to a reviewer's question about the
// document.
type Responder interface {
	Reply(ctx context.Context, doc DocContext, input string) (string, error)
}

// Canned is the default stub responder: keyword-matched fixed answers,
// no model calls.
type Canned struct{}

// Reply returns a fixed answer keyed on the input. Never fails.
func (Canned) Reply(_ context.Context, doc DocContext, input string) (string, error) {
	name := filepath.Base(doc.DocumentPath)
	lower := strings.ToLower(input)

	switch {
	case strings.Contains(lower, "hello"), hasWord(lower, "hi"):
		return fmt.Sprintf("Hello! I'm here to help you with document %q. What would you like to know?", name), nil
	case strings.Contains(lower, "what") && strings.Contains(lower, "document"):
		return fmt.Sprintf("This is document %q. I can help you understand its contents or answer questions about it.", name), nil
	case strings.Contains(lower, "search"), strings.Contains(lower, "find"):
		return "You can use the search tool to find specific information in the document.", nil
	case strings.Contains(lower, "json"), strings.Contains(lower, "data"):
		return "The extracted data is shown in the editor. You can modify values there if needed.", nil
	case strings.Contains(lower, "ocr"):
		if doc.OCRPath != "" {
			return "OCR data is available for this document. The text extraction with bounding boxes is shown in the OCR panel.", nil
		}
		return "No OCR data has been provided for this document.", nil
	case strings.Contains(lower, "help"):
		return "I can help you understand the document, find information, or explain the extracted data.", nil
	default:
		return "I'm a stub implementation for now. A full version would analyze the document and answer your question.", nil
	}
}

// hasWord reports whether s contains w as a whole word; "hi" should not
// fire on "this".
func hasWord(s, w string) bool {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if f == w {
			return true
		}
	}
	return false
}

// History is an in-session transcript.
type History struct {
	messages []Message
}

// Add appends a turn to the transcript.
func (h *History) Add(role Role, content string) {
	h.messages = append(h.messages, Message{Role: role, Content: content})
}

// Messages returns the transcript in order.
func (h *History) Messages() []Message {
	return h.messages
}

// Clear drops the transcript.
func (h *History) Clear() {
	h.messages = nil
}
