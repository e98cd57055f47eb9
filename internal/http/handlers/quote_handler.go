package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/diagnosis/salvatore-shoes/internal/domain"
	"github.com/diagnosis/salvatore-shoes/internal/hours"
	"github.com/diagnosis/salvatore-shoes/internal/http/response"
	"github.com/diagnosis/salvatore-shoes/internal/repo"
	"github.com/diagnosis/salvatore-shoes/internal/utils"
	"github.com/diagnosis/salvatore-shoes/pkg/events"
	"github.com/diagnosis/salvatore-shoes/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	QuoteCreatedMessage = "¡Solicitud enviada! Te contactaremos pronto."

	maxNameRunes     = 100
	maxCommentsRunes = 2000
	dateLayout       = "2006-01-02"
)

// QuoteNotifier mails the shop directly when no event bus carries the
// request to the notifier service.
type QuoteNotifier interface {
	QuoteRequested(ctx context.Context, ev events.QuoteRequestedEvent) error
}

type QuoteHandler struct {
	Repo     repo.QuoteRepo
	Hours    *hours.Evaluator
	Events   events.Publisher
	Notifier QuoteNotifier // nil when events reach the notifier service
}

func NewQuoteHandler(r repo.QuoteRepo, ev *hours.Evaluator, pub events.Publisher, n QuoteNotifier) *QuoteHandler {
	return &QuoteHandler{Repo: r, Hours: ev, Events: pub, Notifier: n}
}

func (h *QuoteHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	return r
}

func (h *QuoteHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.QuoteRequestIn
	if err := decodeJSON(w, r, &in, false); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}

	q, err := h.validate(in)
	if err != nil {
		response.WriteErrorWithDetails(w, http.StatusBadRequest, "invalid input", response.CodeInvalidInput, err.Error())
		return
	}

	q.ID = uuid.NewString()
	if err := h.Repo.CreateQuote(r.Context(), q); err != nil {
		logger.ErrorContext(r.Context(), "Failed to store quote request", "error", err)
		response.InternalError(w, "error creating quote request")
		return
	}
	logger.InfoContext(r.Context(), "Quote request created", "quote_id", q.ID)

	ev := events.QuoteRequestedEvent{
		QuoteID:       q.ID,
		Name:          q.Name,
		Phone:         q.Phone,
		Comments:      q.Comments,
		PreferredDate: q.PreferredDate,
		CreatedAt:     q.CreatedAt,
	}
	publish(r.Context(), h.Events, events.QuoteRequested, ev)
	if h.Notifier != nil {
		if err := h.Notifier.QuoteRequested(r.Context(), ev); err != nil {
			logger.ErrorContext(r.Context(), "Failed to notify shop of quote request", "quote_id", q.ID, "error", err)
		}
	}

	response.WriteJSON(w, http.StatusCreated, domain.QuoteRequestRes{ID: q.ID, Message: QuoteCreatedMessage})
}

func (h *QuoteHandler) validate(in domain.QuoteRequestIn) (*domain.QuoteRequest, error) {
	q := &domain.QuoteRequest{
		Name:     utils.NormalizeString(in.Name),
		Phone:    utils.NormalizePhone(in.Phone),
		Comments: utils.Truncate(in.Comments, maxCommentsRunes),
	}
	if q.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if len([]rune(q.Name)) > maxNameRunes {
		return nil, fmt.Errorf("%w: name is too long", domain.ErrValidation)
	}
	if !utils.IsValidPhone(in.Phone) {
		return nil, fmt.Errorf("%w: phone must have at least 7 digits", domain.ErrValidation)
	}

	if in.PreferredDate != "" {
		day, err := h.preferredDate(in.PreferredDate)
		if err != nil {
			return nil, err
		}
		q.PreferredDate = &day
	}
	return q, nil
}

// preferredDate accepts today or a later day on which the shop opens, in the
// shop's location.
func (h *QuoteHandler) preferredDate(raw string) (time.Time, error) {
	loc := h.Hours.Location()
	day, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: preferredDate must be YYYY-MM-DD", domain.ErrValidation)
	}

	now := h.Hours.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if day.Before(today) {
		return time.Time{}, fmt.Errorf("%w: preferredDate is in the past", domain.ErrValidation)
	}
	if !h.Hours.Schedule().OpensOn(day.Weekday()) {
		return time.Time{}, fmt.Errorf("%w: the shop is closed on %s", domain.ErrValidation, hours.DayName(day.Weekday()))
	}
	return day, nil
}
