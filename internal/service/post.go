package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/BloggingApp/blog-gateway/internal/metrics"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/rabbitmq"
	"github.com/BloggingApp/blog-gateway/internal/repository"
	"github.com/BloggingApp/blog-gateway/internal/repository/redisrepo"
	"go.uber.org/zap"
)

const (
	minTitleLength = 2
	postCacheName  = "post"
)

type postService struct {
	logger    *zap.Logger
	repo      *repository.Repository
	publisher rabbitmq.Publisher
	cacheTTL  time.Duration
}

func newPostService(logger *zap.Logger, repo *repository.Repository, publisher rabbitmq.Publisher, cacheTTL time.Duration) Post {
	return &postService{
		logger:    logger,
		repo:      repo,
		publisher: publisher,
		cacheTTL:  cacheTTL,
	}
}

func (s *postService) List(ctx context.Context, session *model.Session, page int, perPage int) ([]*model.Post, error) {
	posts, err := s.repo.Store.Post.List(ctx, session, page, perPage)
	if err != nil {
		s.logger.Sugar().Errorf("failed to list posts(page %d): %s", page, err.Error())
		return nil, classifyStoreErr(err, "")
	}

	return posts, nil
}

func (s *postService) Create(ctx context.Context, session *model.Session, input dto.CreatePostRequest) (*model.Post, error) {
	if !session.IsValid() {
		return nil, ErrUnauthenticated
	}

	if err := validatePostFields(&input.Title, &input.Text); err != nil {
		return nil, err
	}

	post, err := s.repo.Store.Post.Create(ctx, session, model.Post{
		Title:     input.Title,
		Text:      input.Text,
		Author:    session.User.ID,
		HideStats: input.HideStats,
	})
	if err != nil {
		s.logger.Sugar().Errorf("failed to create post of user(%s): %s", session.User.ID, err.Error())
		return nil, classifyStoreErr(err, "")
	}

	msg := dto.MQPostCreatedMsg{
		PostID:    post.ID,
		UserID:    post.Author,
		PostTitle: post.Title,
		CreatedAt: post.Created,
	}
	if err := s.publisher.Publish(ctx, rabbitmq.POST_CREATED_QUEUE, msg); err != nil {
		s.logger.Sugar().Errorf("failed to publish post(%s) creation: %s", post.ID, err.Error())
	}

	return post, nil
}

func (s *postService) FindByID(ctx context.Context, session *model.Session, id string) (*model.Post, error) {
	load := func(ctx context.Context) (*model.Post, error) {
		return s.repo.Store.Post.FindByID(ctx, session, id)
	}
	onCacheErr := func(err error) {
		s.logger.Sugar().Errorf("failed to use redis cache for post(%s): %s", id, err.Error())
	}

	post, hit, err := redisrepo.ReadThrough(s.repo.Redis.Default, ctx, redisrepo.PostKey(id), s.cacheTTL, load, onCacheErr)
	if err != nil {
		if !repository.IsNotFound(err) {
			s.logger.Sugar().Errorf("failed to find post(%s): %s", id, err.Error())
		}
		return nil, classifyStoreErr(err, "")
	}

	if hit {
		metrics.CacheHits.WithLabelValues(postCacheName).Inc()
	} else {
		metrics.CacheMisses.WithLabelValues(postCacheName).Inc()
	}

	return post, nil
}

func (s *postService) Edit(ctx context.Context, session *model.Session, id string, input dto.EditPostRequest) (*model.Post, error) {
	if err := s.authorize(ctx, session, id); err != nil {
		return nil, err
	}

	if err := validatePostFields(input.Title, input.Text); err != nil {
		return nil, err
	}

	post, err := s.repo.Store.Post.Update(ctx, session, id, model.PostUpdate{
		Title:     input.Title,
		Text:      input.Text,
		HideStats: input.HideStats,
	})
	if err != nil {
		s.logger.Sugar().Errorf("failed to update post(%s): %s", id, err.Error())
		return nil, ownerStoreErr(err)
	}

	s.invalidate(ctx, id)

	return post, nil
}

func (s *postService) Delete(ctx context.Context, session *model.Session, id string) error {
	if err := s.authorize(ctx, session, id); err != nil {
		return err
	}

	if err := s.repo.Store.Post.Delete(ctx, session, id); err != nil {
		s.logger.Sugar().Errorf("failed to delete post(%s): %s", id, err.Error())
		return ownerStoreErr(err)
	}

	s.invalidate(ctx, id)

	msg := dto.MQPostDeletedMsg{
		PostID:    id,
		UserID:    session.User.ID,
		DeletedAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, rabbitmq.POST_DELETED_QUEUE, msg); err != nil {
		s.logger.Sugar().Errorf("failed to publish post(%s) deletion: %s", id, err.Error())
	}

	return nil
}

// authorize checks that the session user wrote the post before the store is
// asked to change it.
func (s *postService) authorize(ctx context.Context, session *model.Session, id string) error {
	if !session.IsValid() {
		return ErrUnauthenticated
	}

	post, err := s.FindByID(ctx, session, id)
	if err != nil {
		return err
	}

	if !post.IsAuthor(session.User.ID) {
		return ErrForbidden
	}

	return nil
}

func (s *postService) invalidate(ctx context.Context, id string) {
	if err := s.repo.Redis.Default.Del(ctx, redisrepo.PostKey(id)).Err(); err != nil {
		s.logger.Sugar().Errorf("failed to delete post(%s) from redis: %s", id, err.Error())
	}
}

// ownerStoreErr treats a store auth rejection of a post write as an ownership failure.
func ownerStoreErr(err error) error {
	err = classifyStoreErr(err, "")
	if errors.Is(err, ErrUnauthenticated) {
		return ErrForbidden
	}
	return err
}

// validatePostFields trims the given fields in place. Nil fields are skipped.
func validatePostFields(title *string, text *string) error {
	if title != nil {
		*title = strings.TrimSpace(*title)
		if len([]rune(*title)) < minTitleLength {
			return &ValidationError{Field: "title", Message: "The title must be at least 2 characters long."}
		}
	}

	if text != nil {
		*text = strings.TrimSpace(*text)
		if *text == "" {
			return &ValidationError{Field: "text", Message: "The text must not be empty."}
		}
	}

	return nil
}
