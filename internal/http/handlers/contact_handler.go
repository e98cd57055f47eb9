package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/diagnosis/salvatore-shoes/internal/domain"
	"github.com/diagnosis/salvatore-shoes/internal/http/response"
	"github.com/diagnosis/salvatore-shoes/internal/repo"
	"github.com/diagnosis/salvatore-shoes/internal/utils"
	"github.com/diagnosis/salvatore-shoes/pkg/events"
	"github.com/diagnosis/salvatore-shoes/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	ContactCreatedMessage = "¡Mensaje enviado! Te contactaremos pronto."

	maxMessageRunes = 5000
)

type ContactNotifier interface {
	ContactReceived(ctx context.Context, ev events.ContactReceivedEvent) error
}

type ContactHandler struct {
	Repo     repo.ContactRepo
	Events   events.Publisher
	Notifier ContactNotifier
}

func NewContactHandler(r repo.ContactRepo, pub events.Publisher, n ContactNotifier) *ContactHandler {
	return &ContactHandler{Repo: r, Events: pub, Notifier: n}
}

func (h *ContactHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	return r
}

func (h *ContactHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.ContactMessageIn
	if err := decodeJSON(w, r, &in, false); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}

	m, err := validateContact(in)
	if err != nil {
		response.WriteErrorWithDetails(w, http.StatusBadRequest, "invalid input", response.CodeInvalidInput, err.Error())
		return
	}

	m.ID = uuid.NewString()
	if err := h.Repo.CreateContact(r.Context(), m); err != nil {
		logger.ErrorContext(r.Context(), "Failed to store contact message", "error", err)
		response.InternalError(w, "error sending message")
		return
	}
	logger.InfoContext(r.Context(), "Contact message received", "contact_id", m.ID)

	ev := events.ContactReceivedEvent{
		ContactID: m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
	publish(r.Context(), h.Events, events.ContactReceived, ev)
	if h.Notifier != nil {
		if err := h.Notifier.ContactReceived(r.Context(), ev); err != nil {
			logger.ErrorContext(r.Context(), "Failed to notify shop of contact message", "contact_id", m.ID, "error", err)
		}
	}

	response.WriteJSON(w, http.StatusCreated, domain.ContactMessageRes{ID: m.ID, Message: ContactCreatedMessage})
}

func validateContact(in domain.ContactMessageIn) (*domain.ContactMessage, error) {
	m := &domain.ContactMessage{
		Name:    utils.NormalizeString(in.Name),
		Email:   utils.NormalizeEmail(in.Email),
		Phone:   utils.NormalizePhone(in.Phone),
		Message: utils.Truncate(in.Message, maxMessageRunes),
	}
	if m.Name == "" || len([]rune(m.Name)) > maxNameRunes {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !utils.IsValidEmail(m.Email) {
		return nil, fmt.Errorf("%w: a valid email is required", domain.ErrValidation)
	}
	if m.Phone != "" && !utils.IsValidPhone(m.Phone) {
		return nil, fmt.Errorf("%w: phone must have at least 7 digits", domain.ErrValidation)
	}
	if utils.NormalizeString(m.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrValidation)
	}
	return m, nil
}
