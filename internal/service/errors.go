package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/cinepos/internal/catalog"
	"github.com/iliyamo/cinepos/internal/repository"
)

// Validation failures, in the order they are checked.
var (
	ErrMissingSelection    = errors.New("no film selected")
	ErrUnknownAge          = errors.New("customer age unknown")
	ErrImplausibleAge      = errors.New("birth date is in the future")
	ErrAdmissionDenied     = errors.New("customer below the rating's minimum age")
	ErrInvalidTicketCount  = errors.New("ticket count must be positive")
	ErrSeatCountMismatch   = errors.New("seat count does not match ticket count")
	ErrInsufficientPayment = errors.New("payment below rounded total")
)

// Guard and commit failures.
var (
	ErrSubmissionInProgress = errors.New("a sale is already being submitted")
	ErrDuplicateSubmission  = errors.New("identical sale was just committed")
	ErrTransactionFailed    = errors.New("sale could not be completed")
)

// ErrSeatConflict is re-exported so callers need not import repository.
var ErrSeatConflict = repository.ErrSeatConflict

// SaleError reports the stage at which a sale attempt stopped.
type SaleError struct {
	Stage Stage
	Err   error
}

func (e *SaleError) Error() string { return fmt.Sprintf("sale %s: %v", e.Stage, e.Err) }

func (e *SaleError) Unwrap() error { return e.Err }

// IsValidationError reports whether err is one of the validation failures.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingSelection) ||
		errors.Is(err, ErrUnknownAge) ||
		errors.Is(err, ErrImplausibleAge) ||
		errors.Is(err, ErrAdmissionDenied) ||
		errors.Is(err, ErrInvalidTicketCount) ||
		errors.Is(err, ErrSeatCountMismatch) ||
		errors.Is(err, ErrInsufficientPayment) ||
		errors.Is(err, catalog.ErrUnknownRoom)
}

// IsSeatError reports whether err came from the seat booking step.
func IsSeatError(err error) bool {
	return errors.Is(err, repository.ErrSeatConflict) ||
		errors.Is(err, repository.ErrInvalidSeat) ||
		errors.Is(err, repository.ErrDuplicateSeat)
}

// Describe returns the message shown to the clerk for a sale failure.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var (
		conflict *repository.SeatConflictError
		denied   *admissionError
		count    *seatCountError
	)
	switch {
	case errors.As(err, &conflict):
		return fmt.Sprintf("Asiento %s ya está ocupado.", conflict.Seat)
	case errors.Is(err, ErrMissingSelection):
		return "Selecciona una película."
	case errors.Is(err, ErrUnknownAge):
		return "Ingresa tu fecha de nacimiento para verificar edad."
	case errors.Is(err, ErrImplausibleAge):
		return "La fecha de nacimiento no puede ser futura."
	case errors.As(err, &denied):
		return fmt.Sprintf("El cliente no tiene la edad permitida para %s.", denied.rating)
	case errors.Is(err, ErrAdmissionDenied):
		return "El cliente no tiene la edad permitida."
	case errors.Is(err, ErrInvalidTicketCount):
		return "Selecciona al menos un boleto."
	case errors.As(err, &count):
		return fmt.Sprintf("Selecciona exactamente %d asiento(s).", count.want)
	case errors.Is(err, ErrSeatCountMismatch):
		return "El número de asientos no coincide con los boletos."
	case errors.Is(err, ErrInsufficientPayment):
		return "El pago es insuficiente."
	case errors.Is(err, catalog.ErrUnknownRoom):
		return "Selecciona una sala válida."
	case errors.Is(err, repository.ErrInvalidSeat), errors.Is(err, repository.ErrDuplicateSeat):
		return "No se pudo apartar asientos."
	case errors.Is(err, ErrSubmissionInProgress):
		return "Ya se está procesando una venta."
	case errors.Is(err, ErrDuplicateSubmission):
		return "Esta venta ya fue registrada."
	}
	return "Ocurrió un error al confirmar la venta."
}

// admissionError carries the rating that denied admission.
type admissionError struct{ rating string }

func (e *admissionError) Error() string { return ErrAdmissionDenied.Error() + " " + e.rating }

func (e *admissionError) Unwrap() error { return ErrAdmissionDenied }

// seatCountError carries the expected seat count.
type seatCountError struct{ want, got int }

func (e *seatCountError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", ErrSeatCountMismatch, e.want, e.got)
}

func (e *seatCountError) Unwrap() error { return ErrSeatCountMismatch }
