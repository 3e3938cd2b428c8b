package pricing

import (
	"github.com/iliyamo/cinepos/internal/catalog"
	"github.com/iliyamo/cinepos/internal/model"
)

// CentsPerUnit is the number of cents in one whole currency unit.
const CentsPerUnit = 100

// Charge is the price of a ticket request.
//
// Fields:
//
//	UnitCents     – price of one ticket in the room.
//	SubtotalCents – exact amount, tickets × unit price.
//	TotalCents    – subtotal rounded up to a whole unit; what is charged.
type Charge struct {
	UnitCents     int64 `json:"unit_cents"`
	SubtotalCents int64 `json:"subtotal_cents"`
	TotalCents    int64 `json:"total_cents"`
}

// ComputeCharge prices tickets in room.  Negative ticket counts are
// treated as zero.
func ComputeCharge(room model.Room, tickets int) Charge {
	if tickets < 0 {
		tickets = 0
	}
	sub := int64(tickets) * room.PriceCents
	return Charge{
		UnitCents:     room.PriceCents,
		SubtotalCents: sub,
		TotalCents:    CeilUnit(sub),
	}
}

// ChargeFor resolves roomKey in the catalog and prices tickets in it.
func ChargeFor(roomKey model.RoomKey, tickets int) (Charge, error) {
	room, err := catalog.Room(roomKey)
	if err != nil {
		return Charge{}, err
	}
	return ComputeCharge(room, tickets), nil
}

// CeilUnit rounds cents up to the next whole currency unit.
func CeilUnit(cents int64) int64 {
	if cents <= 0 {
		return 0
	}
	return (cents + CentsPerUnit - 1) / CentsPerUnit * CentsPerUnit
}
