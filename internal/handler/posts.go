package handler

import (
	"net/http"
	"strings"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/gin-gonic/gin"
)

func postIDParam(c *gin.Context) (string, bool) {
	postID := strings.TrimSpace(c.Param("postID"))
	if postID == "" {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, errInvalidPostID.Error()))
		return "", false
	}
	return postID, true
}

func (h *Handler) postsFeed(c *gin.Context) {
	session := h.getSessionFromRequest(c)

	feed := h.services.NewFeed(session)
	if err := feed.Load(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FeedResponse{Posts: feed.View()})
}

func (h *Handler) postsCreate(c *gin.Context) {
	session := h.getSessionFromRequest(c)

	var input dto.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	createdPost, err := h.services.Post.Create(c.Request.Context(), session, input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, *createdPost)
}

func (h *Handler) postsGetByID(c *gin.Context) {
	session := h.getSessionFromRequest(c)

	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	view, err := h.services.Detail(c.Request.Context(), session, postID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, *view)
}

func (h *Handler) postsEdit(c *gin.Context) {
	session := h.getSessionFromRequest(c)

	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	var input dto.EditPostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	post, err := h.services.Post.Edit(c.Request.Context(), session, postID, input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, *post)
}

func (h *Handler) postsDelete(c *gin.Context) {
	session := h.getSessionFromRequest(c)

	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	if err := h.services.Post.Delete(c.Request.Context(), session, postID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, ""))
}

func (h *Handler) postsGetLiked(c *gin.Context) {
	session := h.getSessionFromRequest(c)

	posts, err := h.services.LikedPosts(c.Request.Context(), session)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LikedPostsResponse{Posts: posts})
}
