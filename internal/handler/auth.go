package handler

import (
	"net/http"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) authRegister(c *gin.Context) {
	var input dto.RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	session, accessToken, err := h.services.Register(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SessionResponse{
		AccessToken: accessToken,
		User:        session.User,
	})
}

func (h *Handler) authLogin(c *gin.Context) {
	var input dto.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	session, accessToken, err := h.services.Login(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SessionResponse{
		AccessToken: accessToken,
		User:        session.User,
	})
}

func (h *Handler) authLogout(c *gin.Context) {
	session := h.getSessionFromRequest(c)

	if err := h.services.Logout(c.Request.Context(), session); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, ""))
}

func (h *Handler) authMe(c *gin.Context) {
	session := h.getSessionFromRequest(c)

	c.JSON(http.StatusOK, session.User)
}

func (h *Handler) usersUpdateMe(c *gin.Context) {
	session := h.getSessionFromRequest(c)

	var input dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	user, err := h.services.UpdateProfile(c.Request.Context(), session, input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, *user)
}
