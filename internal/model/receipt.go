package model

import "time"

// ChangeItem is one line of a change breakdown: Count notes or coins
// of the given Denomination (whole currency units).
type ChangeItem struct {
	Denomination int `json:"denomination"`
	Count        int `json:"count"`
}

// Receipt records a completed sale.  It is built once by the ledger
// and never modified afterwards.
//
// Fields:
//
//	Folio         – short identifier printed on the ticket.
//	Film          – snapshot of the film at sale time.
//	RoomKey       – room the seats belong to.
//	RoomName      – display name of the room.
//	Tickets       – number of tickets sold.
//	Seats         – booked seat ids in the order they were chosen.
//	SubtotalCents – exact amount owed (tickets × unit price).
//	TotalCents    – amount charged, rounded up to a whole unit.
//	PaymentCents  – cash handed over by the customer.
//	ChangeCents   – whole-unit change returned.
//	Change        – denomination breakdown of ChangeCents.
//	IssuedAt      – when the sale was recorded.
type Receipt struct {
	Folio         string       `json:"folio"`
	Film          Film         `json:"film"`
	RoomKey       RoomKey      `json:"room_key"`
	RoomName      string       `json:"room_name"`
	Tickets       int          `json:"tickets"`
	Seats         []string     `json:"seats"`
	SubtotalCents int64        `json:"subtotal_cents"`
	TotalCents    int64        `json:"total_cents"`
	PaymentCents  int64        `json:"payment_cents"`
	ChangeCents   int64        `json:"change_cents"`
	Change        []ChangeItem `json:"change"`
	IssuedAt      time.Time    `json:"issued_at"`
}

// DailySummary aggregates the sales recorded since the session started
// or the last day reset.  TotalTickets always equals the sum of
// TicketsByFilm.
type DailySummary struct {
	TotalTickets      int            `json:"total_tickets"`
	TotalRevenueCents int64          `json:"total_revenue_cents"`
	SalesCount        int            `json:"sales_count"`
	TicketsByFilm     map[string]int `json:"tickets_by_film"`
}

// Clone returns a deep copy so callers cannot mutate ledger state.
func (s DailySummary) Clone() DailySummary {
	out := s
	out.TicketsByFilm = make(map[string]int, len(s.TicketsByFilm))
	for k, v := range s.TicketsByFilm {
		out.TicketsByFilm[k] = v
	}
	return out
}
