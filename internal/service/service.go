package service

import (
	"context"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/rabbitmq"
	"github.com/BloggingApp/blog-gateway/internal/repository"
	"go.uber.org/zap"
)

const likedPostsLimit = 50

// Interaction wraps the two reaction collections. Like and Dislike keep at
// most one reaction per (user, post) by deleting the opposite one first.
type Interaction interface {
	Like(ctx context.Context, session *model.Session, postID string) error
	Dislike(ctx context.Context, session *model.Session, postID string) error
	RemoveInteraction(ctx context.Context, session *model.Session, postID string) error
	GetUserInteractions(ctx context.Context, session *model.Session, userID string) (*model.UserInteractions, error)
	GetPostStats(ctx context.Context, session *model.Session, postID string) (model.PostStats, error)
	LikedPosts(ctx context.Context, session *model.Session) ([]*model.Post, error)
}

type Post interface {
	List(ctx context.Context, session *model.Session, page int, perPage int) ([]*model.Post, error)
	FindByID(ctx context.Context, session *model.Session, id string) (*model.Post, error)
	Create(ctx context.Context, session *model.Session, input dto.CreatePostRequest) (*model.Post, error)
	Edit(ctx context.Context, session *model.Session, id string, input dto.EditPostRequest) (*model.Post, error)
	Delete(ctx context.Context, session *model.Session, id string) error
}

type User interface {
	Register(ctx context.Context, input dto.RegisterRequest) (*model.Session, string, error)
	Login(ctx context.Context, input dto.LoginRequest) (*model.Session, string, error)
	Logout(ctx context.Context, session *model.Session) error
	UpdateProfile(ctx context.Context, session *model.Session, input dto.UpdateProfileRequest) (*model.User, error)
	Authenticate(ctx context.Context, accessToken string) (*model.Session, error)
}

type Options struct {
	FeedPageSize int
	SessionTTL   time.Duration
	PostCacheTTL time.Duration
	AccessSecret []byte
}

type Service struct {
	Interaction
	Post
	User
	logger       *zap.Logger
	feedPageSize int
}

func New(logger *zap.Logger, repo *repository.Repository, publisher rabbitmq.Publisher, opts Options) *Service {
	return &Service{
		Interaction:  newInteractionService(logger, repo, publisher),
		Post:         newPostService(logger, repo, publisher, opts.PostCacheTTL),
		User:         newUserService(logger, repo, opts.SessionTTL, opts.AccessSecret),
		logger:       logger,
		feedPageSize: opts.FeedPageSize,
	}
}

// NewFeed returns a presenter for one view rendered for session.
func (s *Service) NewFeed(session *model.Session) *Feed {
	return NewFeed(s.logger, s.Post, s.Interaction, session, s.feedPageSize)
}
