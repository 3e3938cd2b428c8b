package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinepos/internal/catalog"
	"github.com/iliyamo/cinepos/internal/model"
	"github.com/iliyamo/cinepos/internal/pricing"
	"github.com/iliyamo/cinepos/internal/repository"
	"github.com/iliyamo/cinepos/internal/service"
)

// Ticket count bounds accepted at the till.
const (
	MinTickets = 1
	MaxTickets = 20
)

// SaleSubmitter runs sale attempts.  *service.SaleService implements it.
type SaleSubmitter interface {
	Submit(ctx context.Context, req service.SaleRequest) (*model.Receipt, error)
	ResetDay()
}

// LedgerReader is the read side of the sale ledger.
type LedgerReader interface {
	Summary() model.DailySummary
	Receipt(folio string) (*model.Receipt, error)
	Receipts() []*model.Receipt
}

// TillHandler serves the sale flow and the admin view.
type TillHandler struct {
	Catalog *catalog.Catalog
	Sales   SaleSubmitter
	Ledger  LedgerReader
	Logger  *zap.Logger
	Now     func() time.Time
}

// NewTillHandler constructs a TillHandler.  All dependencies but logger
// must be non-nil.
func NewTillHandler(cat *catalog.Catalog, sales SaleSubmitter, ledger LedgerReader, logger *zap.Logger) *TillHandler {
	if cat == nil || sales == nil || ledger == nil {
		panic("nil dependency passed to NewTillHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TillHandler{Catalog: cat, Sales: sales, Ledger: ledger, Logger: logger, Now: time.Now}
}

type admissionRequest struct {
	BirthDate string       `json:"birth_date"`
	FilmID    string       `json:"film_id"`
	Rating    model.Rating `json:"rating"`
}

// CheckAdmission handles POST /v1/admission.  It computes the age from
// birth_date and checks it against the rating of film_id, or against
// rating when no film is given.
func (h *TillHandler) CheckAdmission(c echo.Context) error {
	var body admissionRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	rating := body.Rating
	if body.FilmID != "" {
		f, err := h.Catalog.Film(body.FilmID)
		if err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		rating = f.Rating
	}
	if !rating.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "film_id or a valid rating is required"})
	}
	age, err := pricing.AgeFromBirthDate(body.BirthDate, h.Now())
	if err != nil || age == nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":   "unknown_age",
			"message": service.Describe(service.ErrUnknownAge),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"age":      *age,
		"rating":   rating,
		"admitted": *age >= 0 && pricing.IsAdmitted(*age, rating),
	})
}

type quoteRequest struct {
	Room         model.RoomKey `json:"room"`
	Tickets      int           `json:"tickets"`
	PaymentCents int64         `json:"payment_cents"`
}

// Quote handles POST /v1/quote: the charge for the tickets and, when a
// payment is given, the change and its breakdown.
func (h *TillHandler) Quote(c echo.Context) error {
	var body quoteRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Tickets < MinTickets || body.Tickets > MaxTickets {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tickets must be between 1 and 20"})
	}
	charge, err := pricing.ChargeFor(body.Room, body.Tickets)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"unit_cents":     charge.UnitCents,
		"subtotal_cents": charge.SubtotalCents,
		"total_cents":    charge.TotalCents,
		"payment_cents":  body.PaymentCents,
		"sufficient":     body.PaymentCents >= charge.TotalCents,
		"change_cents":   pricing.ChangeCents(body.PaymentCents, charge.TotalCents),
		"change":         pricing.BreakdownChange(body.PaymentCents, charge.TotalCents),
	})
}

type saleRequest struct {
	FilmID       string        `json:"film_id"`
	Room         model.RoomKey `json:"room"`
	Tickets      int           `json:"tickets"`
	Seats        []string      `json:"seats"`
	BirthDate    string        `json:"birth_date"`
	PaymentCents int64         `json:"payment_cents"`
}

// ConfirmSale handles POST /v1/sales.  On success it returns 201 with the
// receipt.  Sale failures carry an error code, the clerk message and the
// stage the attempt stopped at.
func (h *TillHandler) ConfirmSale(c echo.Context) error {
	var body saleRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Tickets < MinTickets || body.Tickets > MaxTickets {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tickets must be between 1 and 20"})
	}

	req := service.SaleRequest{
		RoomKey:      body.Room,
		Tickets:      body.Tickets,
		Seats:        body.Seats,
		PaymentCents: body.PaymentCents,
	}
	if body.FilmID != "" {
		f, err := h.Catalog.Film(body.FilmID)
		if err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		req.Film = &f
	}
	// an unparseable birth date leaves the age unknown
	if age, err := pricing.AgeFromBirthDate(body.BirthDate, h.Now()); err == nil {
		req.Age = age
	}

	receipt, err := h.Sales.Submit(c.Request().Context(), req)
	if err != nil {
		return h.saleError(c, err)
	}
	return c.JSON(http.StatusCreated, receipt)
}

func (h *TillHandler) saleError(c echo.Context, err error) error {
	status, code := saleStatus(err)
	resp := echo.Map{"error": code, "message": service.Describe(err)}
	var se *service.SaleError
	if errors.As(err, &se) {
		resp["stage"] = se.Stage
	}
	var conflict *repository.SeatConflictError
	if errors.As(err, &conflict) {
		resp["seat"] = conflict.Seat
	}
	if status >= http.StatusInternalServerError {
		h.Logger.Error("sale failed", zap.Error(err))
	}
	return c.JSON(status, resp)
}

func saleStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrSubmissionInProgress):
		return http.StatusConflict, "submission_in_progress"
	case errors.Is(err, service.ErrDuplicateSubmission):
		return http.StatusConflict, "duplicate_submission"
	case errors.Is(err, repository.ErrSeatConflict):
		return http.StatusConflict, "seat_conflict"
	case errors.Is(err, repository.ErrInvalidSeat), errors.Is(err, repository.ErrDuplicateSeat):
		return http.StatusBadRequest, "invalid_seats"
	case errors.Is(err, service.ErrMissingSelection):
		return http.StatusUnprocessableEntity, "missing_selection"
	case errors.Is(err, service.ErrUnknownAge):
		return http.StatusUnprocessableEntity, "unknown_age"
	case errors.Is(err, service.ErrImplausibleAge):
		return http.StatusUnprocessableEntity, "implausible_age"
	case errors.Is(err, service.ErrAdmissionDenied):
		return http.StatusForbidden, "admission_denied"
	case errors.Is(err, service.ErrInvalidTicketCount), errors.Is(err, service.ErrSeatCountMismatch):
		return http.StatusUnprocessableEntity, "seat_count_mismatch"
	case errors.Is(err, service.ErrInsufficientPayment):
		return http.StatusPaymentRequired, "insufficient_payment"
	case errors.Is(err, catalog.ErrUnknownRoom):
		return http.StatusNotFound, "unknown_room"
	}
	return http.StatusInternalServerError, "transaction_failed"
}

// GetReceipt handles GET /v1/sales/:folio.
func (h *TillHandler) GetReceipt(c echo.Context) error {
	rc, err := h.Ledger.Receipt(c.Param("folio"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "receipt not found"})
	}
	return c.JSON(http.StatusOK, rc)
}

// GetTicket handles GET /v1/sales/:folio/ticket and returns the printable
// ticket as plain text.
func (h *TillHandler) GetTicket(c echo.Context) error {
	rc, err := h.Ledger.Receipt(c.Param("folio"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "receipt not found"})
	}
	return c.String(http.StatusOK, RenderTicket(rc))
}

// FilmTally is one row of the per-film section of the day summary.
type FilmTally struct {
	FilmID  string       `json:"film_id"`
	Title   string       `json:"title,omitempty"`
	Rating  model.Rating `json:"rating,omitempty"`
	Tickets int          `json:"tickets"`
}

// Summary handles GET /v1/admin/summary.  Every film in the catalog gets a
// row, zero when unsold; films sold earlier that have since left the
// catalog are appended.
func (h *TillHandler) Summary(c echo.Context) error {
	sum := h.Ledger.Summary()
	films := h.Catalog.Films()

	rows := make([]FilmTally, 0, len(films))
	listed := map[string]bool{}
	for _, f := range films {
		rows = append(rows, FilmTally{FilmID: f.ID, Title: f.Title, Rating: f.Rating, Tickets: sum.TicketsByFilm[f.ID]})
		listed[f.ID] = true
	}
	for _, rc := range h.Ledger.Receipts() {
		if listed[rc.Film.ID] {
			continue
		}
		listed[rc.Film.ID] = true
		rows = append(rows, FilmTally{FilmID: rc.Film.ID, Title: rc.Film.Title, Rating: rc.Film.Rating, Tickets: sum.TicketsByFilm[rc.Film.ID]})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"sales_count":         sum.SalesCount,
		"total_tickets":       sum.TotalTickets,
		"total_revenue_cents": sum.TotalRevenueCents,
		"films":               rows,
		"prices":              catalog.Rooms(),
	})
}

// ResetDay handles POST /v1/admin/reset: clears sales and seat occupancy.
func (h *TillHandler) ResetDay(c echo.Context) error {
	h.Sales.ResetDay()
	return c.NoContent(http.StatusNoContent)
}
