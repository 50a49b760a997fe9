package handler

import (
	"github.com/gin-gonic/gin"
)

// notRequiredAuthMiddleware attaches the session when the request carries a
// usable token and lets the request through as anonymous otherwise.
func (h *Handler) notRequiredAuthMiddleware(c *gin.Context) {
	accessToken := bearerToken(c)
	if accessToken == "" {
		c.Next()
		return
	}

	session, err := h.services.Authenticate(c.Request.Context(), accessToken)
	if err != nil {
		c.Next()
		return
	}

	c.Set(sessionKey, session)

	c.Next()
}
