// Package service coordinates a sale at the till: validation, seat booking
// and ledger recording as one logical transaction.
package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinepos/internal/model"
	"github.com/iliyamo/cinepos/internal/pricing"
	"github.com/iliyamo/cinepos/internal/queue"
	"github.com/iliyamo/cinepos/internal/repository"
)

// Stage is the step a sale attempt is in.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageValidating Stage = "validating"
	StageBooking    Stage = "booking"
	StageRecording  Stage = "recording"
	StageDone       Stage = "done"
	StageRejected   Stage = "rejected"
)

// SeatBooker books seats for a screening.  *repository.OccupancyRepo
// implements it.
type SeatBooker interface {
	BookSeats(roomKey model.RoomKey, filmID string, seats []string) error
}

// SaleRecorder settles sales.  *repository.LedgerRepo implements it.
type SaleRecorder interface {
	RecordSale(rec repository.SaleRecord) (*model.Receipt, error)
	ResetDay()
}

// EventPublisher announces recorded sales.  *queue.Publisher implements it.
type EventPublisher interface {
	PublishSaleRecorded(ctx context.Context, ev queue.SaleRecordedEvent) error
}

// SaleRequest is one sale attempt as entered by the clerk.  Film and Age
// are nil when not yet chosen or not computable.
type SaleRequest struct {
	Film         *model.Film
	RoomKey      model.RoomKey
	Tickets      int
	Seats        []string
	Age          *int
	PaymentCents int64
}

// SaleService runs sale attempts one at a time.  An attempt that arrives
// while another is in flight is turned away with ErrSubmissionInProgress.
// An exact repeat of the last committed sale is turned away with
// ErrDuplicateSubmission and changes nothing.
type SaleService struct {
	seats  SeatBooker
	ledger SaleRecorder
	events EventPublisher
	logger *zap.Logger

	// PublishTimeout bounds each sale event publish.
	PublishTimeout time.Duration

	mu      sync.Mutex // held for the whole attempt
	lastSig string

	stageMu sync.RWMutex
	stage   Stage

	publishing sync.WaitGroup
}

// NewSaleService wires the orchestrator.  events may be nil to disable
// sale events; logger may be nil.
func NewSaleService(seats SeatBooker, ledger SaleRecorder, events EventPublisher, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		seats:          seats,
		ledger:         ledger,
		events:         events,
		logger:         logger,
		PublishTimeout: 5 * time.Second,
		stage:          StageIdle,
	}
}

// Stage returns the stage of the current or most recent attempt.
func (s *SaleService) Stage() Stage {
	s.stageMu.RLock()
	defer s.stageMu.RUnlock()
	return s.stage
}

func (s *SaleService) setStage(st Stage) {
	s.stageMu.Lock()
	s.stage = st
	s.stageMu.Unlock()
}

// Submit validates req, books its seats and records the sale.  Every
// failure is a *SaleError; use errors.Is with the package sentinels or
// Describe for the clerk message.
func (s *SaleService) Submit(ctx context.Context, req SaleRequest) (*model.Receipt, error) {
	if !s.mu.TryLock() {
		return nil, &SaleError{Stage: s.Stage(), Err: ErrSubmissionInProgress}
	}
	defer s.mu.Unlock()

	s.setStage(StageValidating)
	charge, err := validate(req)
	if err != nil {
		return nil, s.reject(StageValidating, err)
	}

	sig := Signature(req, charge.TotalCents)
	if sig == s.lastSig {
		s.setStage(StageDone)
		return nil, &SaleError{Stage: StageValidating, Err: ErrDuplicateSubmission}
	}

	receipt, err := s.commit(req)
	if err != nil {
		return nil, err
	}
	s.lastSig = sig
	s.setStage(StageDone)

	s.logger.Info("sale recorded",
		zap.String("folio", receipt.Folio),
		zap.String("film_id", receipt.Film.ID),
		zap.String("room", string(receipt.RoomKey)),
		zap.Int("tickets", receipt.Tickets),
		zap.Int64("total_cents", receipt.TotalCents),
	)
	s.publish(ctx, receipt)
	return receipt, nil
}

// commit books seats then records the sale.  Panics and unexpected errors
// become ErrTransactionFailed.
func (s *SaleService) commit(req SaleRequest) (receipt *model.Receipt, err error) {
	stage := StageBooking
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sale panicked", zap.String("stage", string(stage)), zap.Any("panic", r), zap.Stack("stack"))
			receipt, err = nil, s.reject(stage, ErrTransactionFailed)
		}
	}()

	s.setStage(StageBooking)
	if err := s.seats.BookSeats(req.RoomKey, req.Film.ID, req.Seats); err != nil {
		if IsSeatError(err) || IsValidationError(err) {
			return nil, s.reject(StageBooking, err)
		}
		s.logger.Error("seat booking failed", zap.Error(err))
		return nil, s.reject(StageBooking, fmt.Errorf("%w: %v", ErrTransactionFailed, err))
	}

	stage = StageRecording
	s.setStage(StageRecording)
	receipt, err = s.ledger.RecordSale(repository.SaleRecord{
		Film:         *req.Film,
		RoomKey:      req.RoomKey,
		Tickets:      req.Tickets,
		Seats:        req.Seats,
		PaymentCents: req.PaymentCents,
	})
	if err != nil {
		s.logger.Error("sale recording failed", zap.Error(err))
		return nil, s.reject(StageRecording, fmt.Errorf("%w: %v", ErrTransactionFailed, err))
	}
	return receipt, nil
}

func (s *SaleService) reject(at Stage, err error) error {
	s.setStage(StageRejected)
	return &SaleError{Stage: at, Err: err}
}

// publish sends the sale event in the background.  Failures are logged.
func (s *SaleService) publish(ctx context.Context, receipt *model.Receipt) {
	if s.events == nil {
		return
	}
	ev := queue.NewSaleRecordedEvent(receipt)
	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.PublishTimeout)
		defer cancel()
		if err := s.events.PublishSaleRecorded(ctx, ev); err != nil {
			s.logger.Warn("sale event not published", zap.String("folio", ev.Folio), zap.Error(err))
		}
	}()
}

// Flush waits for background sale event publishes to finish.
func (s *SaleService) Flush() { s.publishing.Wait() }

// ResetDay waits for any in-flight attempt, then clears the ledger and
// seat occupancy and forgets the last committed sale.
func (s *SaleService) ResetDay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.ResetDay()
	s.lastSig = ""
	s.setStage(StageIdle)
	s.logger.Info("day reset")
}

// validate applies the checks in order and returns the charge.
func validate(req SaleRequest) (pricing.Charge, error) {
	if req.Film == nil || req.Film.ID == "" {
		return pricing.Charge{}, ErrMissingSelection
	}
	if req.Age == nil {
		return pricing.Charge{}, ErrUnknownAge
	}
	if *req.Age < 0 {
		return pricing.Charge{}, ErrImplausibleAge
	}
	if !pricing.IsAdmitted(*req.Age, req.Film.Rating) {
		return pricing.Charge{}, &admissionError{rating: string(req.Film.Rating)}
	}
	if req.Tickets < 1 {
		return pricing.Charge{}, ErrInvalidTicketCount
	}
	if len(req.Seats) != req.Tickets {
		return pricing.Charge{}, &seatCountError{want: req.Tickets, got: len(req.Seats)}
	}
	charge, err := pricing.ChargeFor(req.RoomKey, req.Tickets)
	if err != nil {
		return pricing.Charge{}, err
	}
	if req.PaymentCents < charge.TotalCents {
		return charge, ErrInsufficientPayment
	}
	return charge, nil
}

// Signature identifies a sale by film, room, seat set, payment and total.
// Seat order does not matter.
func Signature(req SaleRequest, totalCents int64) string {
	seats := append([]string(nil), req.Seats...)
	sort.Strings(seats)
	var filmID string
	if req.Film != nil {
		filmID = req.Film.ID
	}
	b, _ := json.Marshal(struct {
		Film    string   `json:"film"`
		Room    string   `json:"room"`
		Seats   []string `json:"seats"`
		Payment int64    `json:"payment"`
		Total   int64    `json:"total"`
	}{filmID, string(req.RoomKey), seats, req.PaymentCents, totalCents})
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
