package domain

import (
	"errors"
	"time"
)

var ErrValidation = errors.New("validation failed")

// QuoteRequest is a repair estimate request sent from the landing page.
type QuoteRequest struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone"`
	Comments      string     `json:"comments"`
	PreferredDate *time.Time `json:"preferred_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type QuoteRequestIn struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Comments      string `json:"comments"`
	PreferredDate string `json:"preferredDate"` // YYYY-MM-DD, optional
}

type QuoteRequestRes struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}
