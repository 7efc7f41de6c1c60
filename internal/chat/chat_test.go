package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCannedReplies(t *testing.T) {
	t.Parallel()

	doc := DocContext{DocumentPath: "/data/invoice.pdf", OCRPath: "/data/invoice_ocr.json"}
	c := Canned{}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"greeting", "hello there", "invoice.pdf"},
		{"document question", "what is this document?", "invoice.pdf"},
		{"search hint", "how do I find the total?", "search tool"},
		{"data hint", "where is the extracted data?", "editor"},
		{"ocr available", "is there ocr?", "OCR data is available"},
		{"help", "help", "understand the document"},
		{"fallback", "unrelated question", "stub implementation"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			reply, err := c.Reply(context.Background(), doc, tt.input)
			require.NoError(t, err)
			assert.Contains(t, reply, tt.want)
		})
	}
}

func TestCannedOCRUnavailable(t *testing.T) {
	t.Parallel()

	reply, err := Canned{}.Reply(context.Background(), DocContext{DocumentPath: "doc.pdf"}, "any ocr?")
	require.NoError(t, err)
	assert.Contains(t, reply, "No OCR data")
}

func TestHistory(t *testing.T) {
	t.Parallel()

	var h History
	assert.Empty(t, h.Messages())

	h.Add(RoleUser, "hello")
	h.Add(RoleAssistant, "hi")
	require.Len(t, h.Messages(), 2)
	assert.Equal(t, RoleUser, h.Messages()[0].Role)
	assert.Equal(t, "hi", h.Messages()[1].Content)

	h.Clear()
	assert.Empty(t, h.Messages())
}
