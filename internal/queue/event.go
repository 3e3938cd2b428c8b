// Package queue defines the sale events exchanged over RabbitMQ and the
// publisher and consumer that move them.
package queue

import (
	"time"

	"github.com/iliyamo/cinepos/internal/model"
)

// SaleRecordedQueue is the durable queue carrying SaleRecordedEvent.
const SaleRecordedQueue = "sale.recorded"

// SaleRecordedEvent is published after a sale is recorded in the ledger.
// It carries enough for downstream consumers to log or report the sale
// without calling back into the till.
type SaleRecordedEvent struct {
	Folio        string   `json:"folio"`
	FilmID       string   `json:"film_id"`
	FilmTitle    string   `json:"film_title"`
	Rating       string   `json:"rating"`
	RoomKey      string   `json:"room_key"`
	RoomName     string   `json:"room_name"`
	Tickets      int      `json:"tickets"`
	Seats        []string `json:"seats"`
	TotalCents   int64    `json:"total_cents"`
	PaymentCents int64    `json:"payment_cents"`
	ChangeCents  int64    `json:"change_cents"`
	IssuedAt     string   `json:"issued_at"`
}

// NewSaleRecordedEvent builds the event for a receipt.
func NewSaleRecordedEvent(r *model.Receipt) SaleRecordedEvent {
	return SaleRecordedEvent{
		Folio:        r.Folio,
		FilmID:       r.Film.ID,
		FilmTitle:    r.Film.Title,
		Rating:       string(r.Film.Rating),
		RoomKey:      string(r.RoomKey),
		RoomName:     r.RoomName,
		Tickets:      r.Tickets,
		Seats:        append([]string(nil), r.Seats...),
		TotalCents:   r.TotalCents,
		PaymentCents: r.PaymentCents,
		ChangeCents:  r.ChangeCents,
		IssuedAt:     r.IssuedAt.UTC().Format(time.RFC3339),
	}
}
