package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow/internal/service"
	"taskflow/internal/task"
)

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errRemoteUnavailable  = errors.New("remote backend not configured")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

// localError maps a task store failure to a response.
func localError(err error) apiError {
	switch {
	case errors.Is(err, task.ErrNotFound):
		return newNotFoundError(err.Error())
	case errors.Is(err, task.ErrInvalid), errors.Is(err, task.ErrTitleRequired):
		return newBadRequestError(err.Error())
	}
	return newAPIError(http.StatusInternalServerError, err.Error())
}

// remoteError maps a remote failure to a response. The message is the one
// recorded in the slice state.
func remoteError(err error) apiError {
	if errors.Is(err, service.ErrUnsupported) {
		return newAPIError(http.StatusNotImplemented, err.Error())
	}
	return newAPIError(http.StatusBadGateway, err.Error())
}
