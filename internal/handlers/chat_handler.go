package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/minichat/minichat/internal/domain"
	"github.com/minichat/minichat/internal/services"
	chatservice "github.com/minichat/minichat/internal/services/chat"
)

type ChatHandler struct {
	ChatService *services.ChatService
	Logger      services.Logger
}

func NewChatHandler(cs *services.ChatService, logger services.Logger) (*ChatHandler, error) {
	if cs == nil {
		return nil, errors.New("chat service is required")
	}
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &ChatHandler{ChatService: cs, Logger: logger}, nil
}

// ListConversations returns the sidebar list. Store failures already
// degrade to an empty list inside the service, so this always answers
// 200.
func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ChatService.ListConversations(r.Context()))
}

// GetConversationMessages returns a conversation's history in turn
// order.
func (h *ChatHandler) GetConversationMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["id"]

	messages, err := h.ChatService.GetConversationMessages(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			writeError(w, "Conversation not found", http.StatusNotFound)
			return
		}
		writeError(w, "Could not retrieve messages", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

// DeleteConversation removes a conversation and its messages.
func (h *ChatHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["id"]

	if err := h.ChatService.DeleteConversation(r.Context(), conversationID); err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			writeError(w, "Conversation not found", http.StatusNotFound)
			return
		}
		writeError(w, "Could not delete conversation", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// StreamChat runs one streaming turn over SSE. Events:
//
//	conversation  the lazily created conversation (sidebar refresh signal)
//	status        submitted | streaming | idle | error
//	delta         one incremental content chunk
//	done          the finalized assistant message
//	error         terminal failure of the turn
//
// Closing the request (the Stop button aborts the fetch) cancels the
// stream; partial output is never persisted.
func (h *ChatHandler) StreamChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		// Blank input is dropped silently: no store write, no model call.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var history []domain.Message
	if req.ConversationID != "" {
		var err error
		history, err = h.ChatService.GetConversationMessages(r.Context(), req.ConversationID)
		if err != nil {
			if errors.Is(err, services.ErrConversationNotFound) {
				writeError(w, "Conversation not found", http.StatusNotFound)
				return
			}
			writeError(w, "Could not load conversation", http.StatusInternalServerError)
			return
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	session := h.ChatService.NewSession(req.ConversationID, history, func(conv *domain.Conversation) {
		h.writeEvent(w, flusher, "conversation", conv)
	})

	err := session.Submit(r.Context(), req.Message, chatservice.Callbacks{
		OnStatus: func(status chatservice.Status) {
			h.writeEvent(w, flusher, "status", map[string]string{"status": string(status)})
		},
		OnDelta: func(delta string) error {
			h.writeEvent(w, flusher, "delta", map[string]string{"text": delta})
			return nil
		},
		OnDone: func(msg domain.Message) {
			h.writeEvent(w, flusher, "done", msg)
		},
	})
	if err != nil && !errors.Is(err, chatservice.ErrEmptyMessage) {
		h.Logger.Error("streaming turn failed", "error", err)
		h.writeEvent(w, flusher, "error", map[string]string{"error": turnErrorMessage(err)})
	}
}

func (h *ChatHandler) writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.Logger.Error("could not encode SSE event", "event", event, "error", err)
		return
	}
	if _, err := w.Write([]byte("event: " + event + "\ndata: " + string(payload) + "\n\n")); err != nil {
		h.Logger.Debug("SSE write failed, client likely gone", "error", err)
		return
	}
	flusher.Flush()
}

func turnErrorMessage(err error) string {
	switch {
	case chatservice.IsPersistenceError(err):
		return "Could not save the message."
	case chatservice.IsStreamError(err):
		return "The model request failed."
	default:
		return "Something went wrong."
	}
}

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
