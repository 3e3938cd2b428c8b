package handler

import (
	"fmt"
	"strings"

	"github.com/iliyamo/cinepos/internal/model"
)

const ticketWidth = 40

// ticketTimeLayout is how FECHA/HORA is printed.
const ticketTimeLayout = "02/01/2006 15:04:05"

// RenderTicket lays out a receipt as the printed ticket.
func RenderTicket(r *model.Receipt) string {
	header := strings.Repeat("═", ticketWidth)
	rule := strings.Repeat("─", ticketWidth)

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line(" CINEPOS — CINE CURIO")
	line("%s", header)
	line("PELÍCULA : %s", r.Film.Title)
	line("CLASIF. : %s", r.Film.Rating)
	line("SALA : %s", r.RoomName)
	line("ASIENTOS : %s", strings.Join(r.Seats, ", "))
	line("BOLETOS : %d", r.Tickets)
	line("%s", rule)
	line("SUBTOTAL : %s", money(r.SubtotalCents))
	line("TOTAL (↑) : $%d", r.TotalCents/100)
	line("PAGO : $%d", r.PaymentCents/100)
	line("CAMBIO : $%d", r.ChangeCents/100)
	line("%s", rule)
	line("DESGLOSE CAMBIO:")
	for _, it := range r.Change {
		line(" $%d × %d", it.Denomination, it.Count)
	}
	line("%s", rule)
	line("FECHA/HORA : %s", r.IssuedAt.Format(ticketTimeLayout))
	line("FOLIO : %s", r.Folio)
	line("%s", header)
	line("GRACIAS POR SU COMPRA — DISFRUTE LA FUNCIÓN")
	return b.String()
}

// money formats cents as $units.cc.
func money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
