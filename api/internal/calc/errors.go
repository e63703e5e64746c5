package calc

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrBadImageData       = errors.New("bad image data")
	ErrModelUnavailable   = errors.New("model unavailable")
	ErrEmptyModelResponse = errors.New("empty model response")
	ErrUnparsableResponse = errors.New("unparsable model response")
	ErrNoValidRecords     = errors.New("no valid records in model response")
)

// AnalysisError wraps every failure that happens once the model has been called.
type AnalysisError struct {
	Cause error
}

func (e *AnalysisError) Error() string { return "analysis failed: " + e.Cause.Error() }
func (e *AnalysisError) Unwrap() error { return e.Cause }

// HTTPStatus maps an error from this package onto a response status.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrBadImageData):
		return http.StatusBadRequest
	case errors.Is(err, ErrModelUnavailable), errors.Is(err, ErrEmptyModelResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text safe to return to a caller. Client errors keep
// their detail; server side failures collapse to the taxonomy name.
func PublicMessage(err error) string {
	for _, known := range []error{ErrModelUnavailable, ErrEmptyModelResponse, ErrUnparsableResponse, ErrNoValidRecords} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrBadImageData) {
		return err.Error()
	}
	return "internal error"
}
