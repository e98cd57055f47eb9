package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/diagnosis/salvatore-shoes/internal/http/middleware"
	"github.com/diagnosis/salvatore-shoes/internal/http/response"
	"github.com/diagnosis/salvatore-shoes/internal/intro"
	"github.com/diagnosis/salvatore-shoes/pkg/events"
	"github.com/diagnosis/salvatore-shoes/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type IntroHandler struct {
	Gate   *intro.Gate
	Events events.Publisher
	Now    func() time.Time
}

func NewIntroHandler(gate *intro.Gate, pub events.Publisher) *IntroHandler {
	return &IntroHandler{Gate: gate, Events: pub, Now: time.Now}
}

func (h *IntroHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.check)
	r.Post("/decide", h.decide)
	return r
}

type introRes struct {
	ShowIntro bool  `json:"showIntro"`
	Count     int   `json:"count"`
	LastReset int64 `json:"lastReset"`
}

// check decides for the visitor identified by the signed cookie and stores
// the updated record server side.
func (h *IntroHandler) check(w http.ResponseWriter, r *http.Request) {
	visitorID := middleware.VisitorID(r.Context())
	if visitorID == "" {
		response.InternalError(w, "visitor not identified")
		return
	}

	d := h.Gate.Check(r.Context(), visitorID)

	publish(r.Context(), h.Events, events.IntroDecided, events.IntroDecidedEvent{
		VisitorID: visitorID,
		Shown:     d.Show,
		Count:     d.Record.Count,
		LastReset: d.Record.LastReset,
		DecidedAt: h.Now(),
	})

	response.WriteJSON(w, http.StatusOK, introRes{
		ShowIntro: d.Show,
		Count:     d.Record.Count,
		LastReset: d.Record.LastReset.UnixMilli(),
	})
}

type decideReq struct {
	Record json.RawMessage `json:"record"`
}

type decideRes struct {
	ShowIntro bool         `json:"showIntro"`
	Record    intro.Record `json:"record"`
}

// decide serves clients that keep the record themselves: it only applies
// the policy and returns the record to store.
func (h *IntroHandler) decide(w http.ResponseWriter, r *http.Request) {
	var in decideReq
	if err := decodeJSON(w, r, &in, true); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}

	var prev *intro.Record
	if len(in.Record) > 0 && string(in.Record) != "null" {
		rec, err := intro.Decode(in.Record)
		if err != nil {
			logger.DebugContext(r.Context(), "Ignoring malformed intro record", "error", err)
		} else {
			prev = &rec
		}
	}

	d := h.Gate.Policy().Decide(prev, h.Now())
	response.WriteJSON(w, http.StatusOK, decideRes{ShowIntro: d.Show, Record: d.Record})
}
