package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-formatter/internal/client"
	"github.com/jonathan/resume-formatter/internal/history"
	"github.com/jonathan/resume-formatter/internal/rendering"
	"github.com/jonathan/resume-formatter/internal/schemas"
	"github.com/jonathan/resume-formatter/internal/upload"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error. Backend
// errors keep the backend's status.
func HTTPStatus(err error) int {
	var (
		httpErr    *client.HTTPError
		reqErr     *client.RequestError
		validErr   *ErrValidation
		uploadErr  *upload.ValidationError
		schemaErr  *schemas.ValidationError
		renderErr  *rendering.RenderError
		processErr *upload.ProcessingError
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode
	case errors.As(err, &validErr), errors.As(err, &uploadErr), errors.As(err, &schemaErr),
		errors.Is(err, rendering.ErrUnsupportedFormat), errors.Is(err, history.ErrInvalidRows):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrNotViewable):
		return http.StatusConflict
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &processErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &reqErr), errors.Is(err, upload.ErrPollTimeout):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &renderErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the text returned to callers for err. Rendering failures
// get the generic message; their cause is only logged.
func publicMessage(err error) string {
	var (
		httpErr    *client.HTTPError
		renderErr  *rendering.RenderError
		processErr *upload.ProcessingError
	)
	switch {
	case errors.As(err, &renderErr):
		return renderErr.Message
	case errors.As(err, &httpErr):
		return httpErr.Message
	case errors.As(err, &processErr):
		return processErr.Message
	default:
		return err.Error()
	}
}
