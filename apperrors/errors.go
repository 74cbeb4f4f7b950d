package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is an error that knows which HTTP status it maps to. Message is safe
// to show to callers; Err carries the internal cause for logs only.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// BadRequest is a client input error. message should name the offending field.
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message, nil)
}

// NotConfigured reports a missing credential. The caller sees only message;
// the missing key belongs in the server log.
func NotConfigured(message string) *Error {
	return New(http.StatusInternalServerError, message, nil)
}

// Upstream wraps a failure returned by a third-party API.
func Upstream(code int, message string, err error) *Error {
	return New(code, message, err)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message, nil)
}

var (
	ErrInternal         = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed, "Method not allowed", nil)
	ErrInvalidJSON      = New(http.StatusBadRequest, "Invalid JSON body", nil)
)

// As extracts an *Error from err. Anything else becomes a 500 that wraps err
// without mutating the shared ErrInternal value.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(ErrInternal.Code, ErrInternal.Message, err)
}

// Respond writes err as {"error": message} and aborts the chain.
func Respond(c *gin.Context, err error) {
	appErr := As(err)
	if appErr.Err != nil || appErr.Code >= http.StatusInternalServerError {
		_ = c.Error(appErr)
	}
	c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message})
}

// Middleware converts errors attached with c.Error into JSON when the
// handler did not write a response itself.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := As(c.Errors.Last().Err)
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
	}
}
