package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/practix/internal/composer"
	"github.com/abhisek/practix/internal/dailyset"
	"github.com/abhisek/practix/internal/rewards"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: "success", Data: data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Code: http.StatusCreated, Message: "created", Data: data})
}

func fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Response{Code: code, Message: message})
}

// failErr maps domain errors to status codes. Anything unrecognized is
// logged and reported as a 500 without details.
func (s *Server) failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dailyset.ErrSetNotFound), errors.Is(err, dailyset.ErrProblemNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, dailyset.ErrForbidden):
		fail(c, http.StatusForbidden, "Forbidden")
	case errors.Is(err, dailyset.ErrInvalidSubmission),
		errors.Is(err, composer.ErrUnknownTopic),
		errors.Is(err, composer.ErrInvalidSize),
		errors.Is(err, rewards.ErrInvalidPreferences):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}
