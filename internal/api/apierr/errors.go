package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/dicegame/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeMissingSender      = "MISSING_SENDER"
	CodeWrongDepositAmount = "WRONG_DEPOSIT_AMOUNT"
	CodeGameFull           = "GAME_FULL"
	CodeGameNotFull        = "GAME_NOT_FULL"
	CodeGameOver           = "GAME_OVER"
	CodeNotAPlayer         = "NOT_A_PLAYER"
	CodeNothingToLeave     = "NOTHING_TO_LEAVE"
	CodeMalformedMessage   = "MALFORMED_MESSAGE"
	CodeNotResolved        = "NOT_RESOLVED"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeConcurrentUpdate   = "CONCURRENT_UPDATE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors. Rule errors carry their own detail, so the message is
	// the wrapped error text.
	switch {
	case errors.Is(err, model.ErrWrongDepositAmount):
		return &httpError{http.StatusBadRequest, APIError{CodeWrongDepositAmount, err.Error()}}
	case errors.Is(err, model.ErrMalformedMessage):
		return &httpError{http.StatusBadRequest, APIError{CodeMalformedMessage, err.Error()}}
	case errors.Is(err, model.ErrGameFull):
		return &httpError{http.StatusConflict, APIError{CodeGameFull, "The game is full"}}
	case errors.Is(err, model.ErrGameNotFull):
		return &httpError{http.StatusConflict, APIError{CodeGameNotFull, "The game is still waiting for players"}}
	case errors.Is(err, model.ErrGameOver):
		return &httpError{http.StatusConflict, APIError{CodeGameOver, "The game is already over"}}
	case errors.Is(err, model.ErrNotAPlayer):
		return &httpError{http.StatusForbidden, APIError{CodeNotAPlayer, "You are not a player"}}
	case errors.Is(err, model.ErrNothingToLeave):
		return &httpError{http.StatusConflict, APIError{CodeNothingToLeave, "Nothing to leave"}}
	case errors.Is(err, model.ErrNotResolved):
		return &httpError{http.StatusNotFound, APIError{CodeNotResolved, "No winner yet"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrConcurrentUpdate):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeConcurrentUpdate, "Game is busy, retry the message"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewMissingSenderError is returned when a message carries no sender identity
func NewMissingSenderError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeMissingSender, "X-Sender-Address header is required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
