package handler

import (
	"net/http"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) postsVote(c *gin.Context) {
	session := h.getSessionFromRequest(c)
	if !session.IsValid() {
		abortVoteFailure(c, service.ErrUnauthenticated)
		return
	}

	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	var input dto.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	kind, err := model.ParseReactionKind(input.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	view, err := h.services.Vote(c.Request.Context(), session, postID, kind)
	if err != nil {
		abortVoteFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, *view)
}

func (h *Handler) postsRemoveReaction(c *gin.Context) {
	session := h.getSessionFromRequest(c)

	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	view, err := h.services.ClearReaction(c.Request.Context(), session, postID)
	if err != nil {
		abortVoteFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, *view)
}
