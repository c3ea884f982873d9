package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// MarkdownHandler renders assistant markdown to HTML for the chat
// view. Raw HTML in the source is escaped by the renderer.
type MarkdownHandler struct {
	md goldmark.Markdown
}

func NewMarkdownHandler() *MarkdownHandler {
	return &MarkdownHandler{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

type markdownRequest struct {
	Markdown string `json:"markdown"`
}

type markdownResponse struct {
	HTML string `json:"html"`
}

func (h *MarkdownHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req markdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := h.md.Convert([]byte(req.Markdown), &buf); err != nil {
		writeError(w, "Could not render markdown", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, markdownResponse{HTML: buf.String()})
}
