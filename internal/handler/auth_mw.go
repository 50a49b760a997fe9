package handler

import (
	"net/http"
	"strings"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func (h *Handler) authMiddleware(c *gin.Context) {
	accessToken := bearerToken(c)
	if accessToken == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewBasicResponse(false, errNotAuthorized.Error()))
		return
	}

	session, err := h.services.Authenticate(c.Request.Context(), accessToken)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Set(sessionKey, session)

	c.Next()
}
