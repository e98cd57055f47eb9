package handlers

import (
	"net/http"
	"time"

	"github.com/diagnosis/salvatore-shoes/internal/hours"
	"github.com/diagnosis/salvatore-shoes/internal/http/response"
	"github.com/go-chi/chi/v5"
)

const (
	LabelOpen   = "ABIERTO"
	LabelClosed = "CERRADO"
)

type StoreHandler struct {
	Hours *hours.Evaluator
}

func NewStoreHandler(ev *hours.Evaluator) *StoreHandler {
	return &StoreHandler{Hours: ev}
}

func (h *StoreHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/status", h.status)
	r.Get("/hours", h.hours)
	return r
}

type storeStatusRes struct {
	IsOpen bool      `json:"isOpen"`
	AsOf   time.Time `json:"asOf"`
	Clock  string    `json:"clock"`
	Label  string    `json:"label"`
}

func (h *StoreHandler) status(w http.ResponseWriter, r *http.Request) {
	st := h.Hours.Status()
	label := LabelClosed
	if st.IsOpen {
		label = LabelOpen
	}
	response.WriteJSON(w, http.StatusOK, storeStatusRes{
		IsOpen: st.IsOpen,
		AsOf:   st.AsOf,
		Clock:  hours.Clock(st.AsOf),
		Label:  label,
	})
}

type storeHoursRes struct {
	Timezone string           `json:"timezone"`
	Week     []hours.DayHours `json:"week"`
	Summary  []string         `json:"summary"`
}

func (h *StoreHandler) hours(w http.ResponseWriter, r *http.Request) {
	s := h.Hours.Schedule()
	response.WriteJSON(w, http.StatusOK, storeHoursRes{
		Timezone: h.Hours.Location().String(),
		Week:     s.Week(),
		Summary:  s.Summary(),
	})
}
