package postgres

import (
	"context"

	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type reactionRepo struct {
	db     DB
	logger *zap.Logger
}

func newReactionRepo(db DB, logger *zap.Logger) repository.Reaction {
	return &reactionRepo{
		db:     db,
		logger: logger,
	}
}

func (r *reactionRepo) Find(ctx context.Context, auth *model.Session, kind model.ReactionKind, userID string, postID string) (*model.Reaction, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, nil
	}
	pid, err := parseID(postID)
	if err != nil {
		return nil, nil
	}

	rows, err := r.db.Query(
		ctx,
		"SELECT id FROM reactions WHERE user_id = $1 AND post_id = $2 AND kind = $3",
		uid,
		pid,
		string(kind),
	)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, storeError(rows.Err())
	}

	var id uuid.UUID
	if err := rows.Scan(&id); err != nil {
		return nil, storeError(err)
	}

	return &model.Reaction{ID: id.String(), User: userID, Post: postID, Kind: kind}, nil
}

func (r *reactionRepo) Create(ctx context.Context, auth *model.Session, kind model.ReactionKind, userID string, postID string) (*model.Reaction, error) {
	actor, err := actorID(auth)
	if err != nil {
		return nil, err
	}
	if actor.String() != userID {
		return nil, forbidden("reactions can only be recorded for the authenticated user")
	}
	pid, err := parseID(postID)
	if err != nil {
		return nil, err
	}

	// A leftover row of either polarity is replaced, never duplicated.
	var id uuid.UUID
	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO reactions(id, user_id, post_id, kind) VALUES($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT reactions_user_post_key DO UPDATE SET kind = EXCLUDED.kind, created_at = now()
		RETURNING id`,
		uuid.New(),
		actor,
		pid,
		string(kind),
	).Scan(&id); err != nil {
		return nil, storeError(err)
	}

	return &model.Reaction{ID: id.String(), User: userID, Post: postID, Kind: kind}, nil
}

func (r *reactionRepo) Delete(ctx context.Context, auth *model.Session, kind model.ReactionKind, id string) error {
	actor, err := actorID(auth)
	if err != nil {
		return err
	}
	reactionID, err := parseID(id)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, "DELETE FROM reactions WHERE id = $1 AND kind = $2 AND user_id = $3", reactionID, string(kind), actor)
	if err != nil {
		return storeError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.NewNotFound("reaction not found")
	}

	return nil
}

func (r *reactionRepo) PostIDsByUser(ctx context.Context, auth *model.Session, kind model.ReactionKind, userID string) ([]string, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, "SELECT post_id FROM reactions WHERE user_id = $1 AND kind = $2", uid, string(kind))
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	var postIDs []string
	for rows.Next() {
		var postID uuid.UUID
		if err := rows.Scan(&postID); err != nil {
			return nil, storeError(err)
		}
		postIDs = append(postIDs, postID.String())
	}

	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}

	return postIDs, nil
}

func (r *reactionRepo) Count(ctx context.Context, auth *model.Session, kind model.ReactionKind, postID string) (int64, error) {
	pid, err := parseID(postID)
	if err != nil {
		return 0, nil
	}

	var count int64
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM reactions WHERE post_id = $1 AND kind = $2", pid, string(kind)).Scan(&count); err != nil {
		return 0, storeError(err)
	}

	return count, nil
}

func (r *reactionRepo) PostsByUser(ctx context.Context, auth *model.Session, kind model.ReactionKind, userID string, limit int) ([]*model.Post, error) {
	maxLimit(&limit)
	uid, err := parseID(userID)
	if err != nil {
		return nil, nil
	}

	rows, err := r.db.Query(
		ctx,
		selectPost+`
		JOIN reactions r ON r.post_id = p.id
		WHERE r.user_id = $1 AND r.kind = $2
		ORDER BY r.created_at DESC
		LIMIT $3`,
		uid,
		string(kind),
		limit,
	)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, storeError(err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}

	return posts, nil
}
