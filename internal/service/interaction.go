package service

import (
	"context"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/rabbitmq"
	"github.com/BloggingApp/blog-gateway/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type interactionService struct {
	logger    *zap.Logger
	repo      *repository.Repository
	publisher rabbitmq.Publisher
}

func newInteractionService(logger *zap.Logger, repo *repository.Repository, publisher rabbitmq.Publisher) Interaction {
	return &interactionService{
		logger:    logger,
		repo:      repo,
		publisher: publisher,
	}
}

func (s *interactionService) Like(ctx context.Context, session *model.Session, postID string) error {
	return s.react(ctx, session, model.Like, postID)
}

func (s *interactionService) Dislike(ctx context.Context, session *model.Session, postID string) error {
	return s.react(ctx, session, model.Dislike, postID)
}

// react removes the opposite reaction before inserting kind. If the insert
// fails after the delete the pair is left with no reaction at all.
func (s *interactionService) react(ctx context.Context, session *model.Session, kind model.ReactionKind, postID string) error {
	if !session.IsValid() {
		return ErrUnauthenticated
	}
	userID := session.User.ID

	opposite, err := s.repo.Store.Reaction.Find(ctx, session, kind.Opposite(), userID, postID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find %s of user(%s) on post(%s): %s", kind.Opposite(), userID, postID, err.Error())
		return classifyStoreErr(err, "")
	}

	if opposite != nil {
		if err := s.repo.Store.Reaction.Delete(ctx, session, opposite.Kind, opposite.ID); err != nil && !repository.IsNotFound(err) {
			s.logger.Sugar().Errorf("failed to delete %s(%s): %s", opposite.Kind, opposite.ID, err.Error())
			return classifyStoreErr(err, "")
		}
	}

	if _, err := s.repo.Store.Reaction.Create(ctx, session, kind, userID, postID); err != nil {
		if opposite != nil {
			s.logger.Sugar().Warnf("%s of user(%s) on post(%s) was removed but the %s could not be stored", opposite.Kind, userID, postID, kind)
		}
		s.logger.Sugar().Errorf("failed to create %s of user(%s) on post(%s): %s", kind, userID, postID, err.Error())
		return classifyStoreErr(err, "")
	}

	state := model.Liked
	if kind == model.Dislike {
		state = model.Disliked
	}
	s.publishChange(ctx, userID, postID, state)

	return nil
}

func (s *interactionService) RemoveInteraction(ctx context.Context, session *model.Session, postID string) error {
	if !session.IsValid() {
		return nil
	}
	userID := session.User.ID

	removed := false
	for _, kind := range []model.ReactionKind{model.Like, model.Dislike} {
		reaction, err := s.repo.Store.Reaction.Find(ctx, session, kind, userID, postID)
		if err != nil {
			s.logger.Sugar().Errorf("failed to find %s of user(%s) on post(%s): %s", kind, userID, postID, err.Error())
			return classifyStoreErr(err, "")
		}
		if reaction == nil {
			continue
		}

		if err := s.repo.Store.Reaction.Delete(ctx, session, kind, reaction.ID); err != nil && !repository.IsNotFound(err) {
			s.logger.Sugar().Errorf("failed to delete %s(%s): %s", kind, reaction.ID, err.Error())
			return classifyStoreErr(err, "")
		}
		removed = true
	}

	if removed {
		s.publishChange(ctx, userID, postID, model.Neutral)
	}

	return nil
}

func (s *interactionService) GetUserInteractions(ctx context.Context, session *model.Session, userID string) (*model.UserInteractions, error) {
	var liked, disliked []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := s.repo.Store.Reaction.PostIDsByUser(gctx, session, model.Like, userID)
		liked = ids
		return err
	})
	g.Go(func() error {
		ids, err := s.repo.Store.Reaction.PostIDsByUser(gctx, session, model.Dislike, userID)
		disliked = ids
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Sugar().Errorf("failed to get interactions of user(%s): %s", userID, err.Error())
		return nil, classifyStoreErr(err, "")
	}

	return &model.UserInteractions{
		Liked:    model.NewIDSet(liked...),
		Disliked: model.NewIDSet(disliked...),
	}, nil
}

func (s *interactionService) GetPostStats(ctx context.Context, session *model.Session, postID string) (model.PostStats, error) {
	var stats model.PostStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.Store.Reaction.Count(gctx, session, model.Like, postID)
		stats.Likes = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.Store.Reaction.Count(gctx, session, model.Dislike, postID)
		stats.Dislikes = n
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Sugar().Errorf("failed to count reactions of post(%s): %s", postID, err.Error())
		return model.PostStats{}, classifyStoreErr(err, "")
	}

	return stats, nil
}

func (s *interactionService) LikedPosts(ctx context.Context, session *model.Session) ([]*model.Post, error) {
	if !session.IsValid() {
		return nil, ErrUnauthenticated
	}

	posts, err := s.repo.Store.Reaction.PostsByUser(ctx, session, model.Like, session.User.ID, likedPostsLimit)
	if err != nil {
		s.logger.Sugar().Errorf("failed to get liked posts of user(%s): %s", session.User.ID, err.Error())
		return nil, classifyStoreErr(err, "")
	}

	return posts, nil
}

func (s *interactionService) publishChange(ctx context.Context, userID, postID string, state model.ReactionState) {
	msg := dto.MQReactionChangedMsg{
		PostID:    postID,
		UserID:    userID,
		State:     state.String(),
		ChangedAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, rabbitmq.REACTION_CHANGED_QUEUE, msg); err != nil {
		s.logger.Sugar().Errorf("failed to publish reaction change of user(%s) on post(%s): %s", userID, postID, err.Error())
	}
}
