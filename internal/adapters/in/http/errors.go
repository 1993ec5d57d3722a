package http

import (
	"errors"
	"log/slog"
	"net/http"

	"fooddelivery/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

var statusByCode = map[errs.Code]int{
	errs.CodeIllegalTransition:  http.StatusConflict,
	errs.CodeOrderTerminal:      http.StatusConflict,
	errs.CodeOtpNotVerified:     http.StatusConflict,
	errs.CodeOtpMismatch:        http.StatusUnprocessableEntity,
	errs.CodeNoPartnerAvailable: http.StatusConflict,
	errs.CodeOfferExpired:       http.StatusGone,
	errs.CodeAlreadyClaimed:     http.StatusConflict,
	errs.CodeNotFound:           http.StatusNotFound,
	errs.CodeForbidden:          http.StatusForbidden,
	errs.CodeTooManyAttempts:    http.StatusTooManyRequests,
	errs.CodePartnerUnavailable: http.StatusConflict,
	errs.CodeConflict:           http.StatusConflict,
	errs.CodeInvalidArgument:    http.StatusBadRequest,
	errs.CodeInternal:           http.StatusInternalServerError,
}

// StatusOf maps an error code onto the HTTP status it is reported with.
func StatusOf(code errs.Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// codeByStatus classifies errors raised by echo itself and by middleware.
func codeByStatus(status int) errs.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return errs.CodeInvalidArgument
	case http.StatusUnauthorized, http.StatusForbidden:
		return errs.CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return errs.CodeNotFound
	case http.StatusTooManyRequests:
		return errs.CodeTooManyAttempts
	default:
		return errs.CodeInternal
	}
}

// NewErrorHandler renders every error as {code, message}. Internal errors are
// logged with their cause and reported with a generic message.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var status int
		var body Error

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			body = Error{Code: string(codeByStatus(status)), Message: http.StatusText(status)}
			if msg, ok := httpErr.Message.(string); ok && msg != "" {
				body.Message = msg
			}
		} else {
			code := errs.CodeOf(err)
			status = StatusOf(code)
			body = Error{Code: string(code), Message: errs.MessageOf(err)}
		}

		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
				slog.Any("error", err))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.ErrorContext(c.Request().Context(), "write error response", slog.Any("error", writeErr))
		}
	}
}
