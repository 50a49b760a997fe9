package handler

import (
	"errors"
	"net/http"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/BloggingApp/blog-gateway/internal/service"
	"github.com/gin-gonic/gin"
)

var (
	errNotAuthorized = errors.New("user is not authorized")
	errInvalidPostID = errors.New("invalid post ID")
	errActionFailed  = errors.New("action failed")
	errPleaseLogIn   = errors.New("please log in to vote")
)

func statusOf(err error) int {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConnectivity):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewFieldError(validationErr.Field, validationErr.Message))
		return
	}
	c.AbortWithStatusJSON(statusOf(err), dto.NewBasicResponse(false, err.Error()))
}

// abortVoteFailure reports a vote that was rolled back.
func abortVoteFailure(c *gin.Context, err error) {
	status := statusOf(err)
	details := errActionFailed.Error() + ": " + err.Error()
	if status == http.StatusUnauthorized {
		details = errPleaseLogIn.Error()
	}
	c.AbortWithStatusJSON(status, dto.NewBasicResponse(false, details))
}
