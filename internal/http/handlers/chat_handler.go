package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/diagnosis/salvatore-shoes/internal/chat"
	"github.com/diagnosis/salvatore-shoes/internal/http/response"
	"github.com/diagnosis/salvatore-shoes/internal/utils"
	"github.com/diagnosis/salvatore-shoes/pkg/events"
	"github.com/diagnosis/salvatore-shoes/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// The chat widget only reads {"error": ...}, so every failure uses that shape.
const (
	ChatServerError  = "Error interno del servidor"
	ChatInvalidInput = "El mensaje es obligatorio"
)

const maxChatMessageRunes = 2000

type ChatHandler struct {
	Relay  *chat.Relay
	Events events.Publisher
	Model  string
}

func NewChatHandler(relay *chat.Relay, pub events.Publisher, model string) *ChatHandler {
	return &ChatHandler{Relay: relay, Events: pub, Model: model}
}

func (h *ChatHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.reply)
	return r
}

type chatReq struct {
	Message string         `json:"message"`
	History []chat.Message `json:"history"`
}

type chatRes struct {
	Message string `json:"message"`
}

type chatErrorRes struct {
	Error string `json:"error"`
}

func (h *ChatHandler) reply(w http.ResponseWriter, r *http.Request) {
	var in chatReq
	if err := decodeJSON(w, r, &in, false); err != nil {
		response.WriteJSON(w, http.StatusBadRequest, chatErrorRes{Error: ChatInvalidInput})
		return
	}

	started := time.Now()
	reply, err := h.Relay.Reply(r.Context(), utils.Truncate(in.Message, maxChatMessageRunes), in.History)
	if errors.Is(err, chat.ErrEmptyMessage) {
		response.WriteJSON(w, http.StatusBadRequest, chatErrorRes{Error: ChatInvalidInput})
		return
	}

	publish(r.Context(), h.Events, events.ChatRelayed, events.ChatRelayedEvent{
		Model:      h.Model,
		HistoryLen: len(in.History),
		Failed:     err != nil,
		ElapsedMs:  time.Since(started).Milliseconds(),
		At:         started,
	})

	if err != nil {
		logger.ErrorContext(r.Context(), "Chat relay failed", "error", err)
		response.WriteJSON(w, http.StatusInternalServerError, chatErrorRes{Error: ChatServerError})
		return
	}
	response.WriteJSON(w, http.StatusOK, chatRes{Message: reply})
}
