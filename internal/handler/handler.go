package handler

import (
	"github.com/BloggingApp/blog-gateway/internal/metrics"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	services     *service.Service
	logger       *zap.Logger
	clientOrigin string
}

func New(services *service.Service, logger *zap.Logger, clientOrigin string) *Handler {
	return &Handler{
		services:     services,
		logger:       logger,
		clientOrigin: clientOrigin,
	}
}

func (h *Handler) InitRoutes() *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), h.loggingMiddleware)
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{h.clientOrigin},
		AllowMethods:     []string{"POST", "GET", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.authRegister)
			auth.POST("/login", h.authLogin)
			auth.POST("/logout", h.authMiddleware, h.authLogout)
			auth.GET("/me", h.authMiddleware, h.authMe)
		}

		users := v1.Group("/users")
		{
			users.PATCH("/me", h.authMiddleware, h.usersUpdateMe)
		}

		posts := v1.Group("/posts")
		{
			posts.GET("", h.notRequiredAuthMiddleware, h.postsFeed)
			posts.POST("", h.authMiddleware, h.postsCreate)
			posts.GET("/liked", h.authMiddleware, h.postsGetLiked)

			post := posts.Group("/:postID")
			{
				post.GET("", h.notRequiredAuthMiddleware, h.postsGetByID)
				post.PATCH("", h.authMiddleware, h.postsEdit)
				post.DELETE("", h.authMiddleware, h.postsDelete)
				post.POST("/vote", h.notRequiredAuthMiddleware, h.postsVote)
				post.DELETE("/reaction", h.authMiddleware, h.postsRemoveReaction)
			}
		}
	}

	return r
}

// getSessionFromRequest returns nil for anonymous requests.
func (h *Handler) getSessionFromRequest(c *gin.Context) *model.Session {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}

	session, ok := value.(*model.Session)
	if !ok {
		return nil
	}

	return session
}
