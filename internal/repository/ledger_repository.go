package repository

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinepos/internal/catalog"
	"github.com/iliyamo/cinepos/internal/model"
	"github.com/iliyamo/cinepos/internal/pricing"
)

// ErrInvalidSale is returned when a sale record is not settleable: no
// tickets, or a payment below the rounded total.
var ErrInvalidSale = errors.New("invalid sale record")

// folioLen is the number of characters printed as the folio.
const folioLen = 8

// SaleRecord carries what the ledger needs to settle a sale.  Seats have
// already been booked by the caller.
type SaleRecord struct {
	Film         model.Film
	RoomKey      model.RoomKey
	Tickets      int
	Seats        []string
	PaymentCents int64
}

// LedgerRepo records the sales of the session and keeps the running day
// summary.  Receipt storage and summary updates happen under one lock.
type LedgerRepo struct {
	occupancy *OccupancyRepo

	mu       sync.Mutex
	summary  model.DailySummary
	receipts map[string]*model.Receipt
	order    []string

	now      func() time.Time
	newFolio func() string
}

// NewLedgerRepo returns an empty ledger.  ResetDay also clears occupancy.
func NewLedgerRepo(occupancy *OccupancyRepo) *LedgerRepo {
	return &LedgerRepo{
		occupancy: occupancy,
		summary:   model.DailySummary{TicketsByFilm: map[string]int{}},
		receipts:  map[string]*model.Receipt{},
		now:       time.Now,
		newFolio:  NewFolio,
	}
}

// NewFolio returns eight upper-case alphanumeric characters taken from a
// random UUID.
func NewFolio() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:folioLen])
}

// RecordSale prices the sale, computes change, issues a receipt with a
// fresh folio and adds the sale to the day summary.
func (r *LedgerRepo) RecordSale(rec SaleRecord) (*model.Receipt, error) {
	room, err := catalog.Room(rec.RoomKey)
	if err != nil {
		return nil, err
	}
	if rec.Tickets <= 0 {
		return nil, fmt.Errorf("%w: %d tickets", ErrInvalidSale, rec.Tickets)
	}
	charge := pricing.ComputeCharge(room, rec.Tickets)
	if rec.PaymentCents < charge.TotalCents {
		return nil, fmt.Errorf("%w: payment %d below total %d", ErrInvalidSale, rec.PaymentCents, charge.TotalCents)
	}

	receipt := &model.Receipt{
		Film:          rec.Film,
		RoomKey:       room.Key,
		RoomName:      room.Name,
		Tickets:       rec.Tickets,
		Seats:         append([]string(nil), rec.Seats...),
		SubtotalCents: charge.SubtotalCents,
		TotalCents:    charge.TotalCents,
		PaymentCents:  rec.PaymentCents,
		ChangeCents:   pricing.ChangeCents(rec.PaymentCents, charge.TotalCents),
		Change:        pricing.BreakdownChange(rec.PaymentCents, charge.TotalCents),
		IssuedAt:      r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	folio := r.newFolio()
	for _, taken := r.receipts[folio]; taken; _, taken = r.receipts[folio] {
		folio = r.newFolio()
	}
	receipt.Folio = folio
	r.receipts[folio] = receipt
	r.order = append(r.order, folio)

	r.summary.TotalTickets += rec.Tickets
	r.summary.TotalRevenueCents += charge.TotalCents
	r.summary.SalesCount++
	r.summary.TicketsByFilm[rec.Film.ID] += rec.Tickets

	return cloneReceipt(receipt), nil
}

// Summary returns a copy of the day summary.
func (r *LedgerRepo) Summary() model.DailySummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary.Clone()
}

// Receipt returns a copy of the receipt issued under folio.
func (r *LedgerRepo) Receipt(folio string) (*model.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rc, ok := r.receipts[strings.ToUpper(folio)]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneReceipt(rc), nil
}

// Receipts returns copies of every receipt of the session in issue order.
func (r *LedgerRepo) Receipts() []*model.Receipt {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Receipt, 0, len(r.order))
	for _, f := range r.order {
		out = append(out, cloneReceipt(r.receipts[f]))
	}
	return out
}

// ResetDay zeroes the summary, drops the session receipts and clears seat
// occupancy.  The ledger lock is held throughout so no sale is recorded
// against a half-reset day.
func (r *LedgerRepo) ResetDay() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary = model.DailySummary{TicketsByFilm: map[string]int{}}
	r.receipts = map[string]*model.Receipt{}
	r.order = nil
	if r.occupancy != nil {
		r.occupancy.Reset()
	}
}

func cloneReceipt(rc *model.Receipt) *model.Receipt {
	out := *rc
	out.Seats = append([]string(nil), rc.Seats...)
	out.Change = append([]model.ChangeItem{}, rc.Change...)
	return &out
}
