package postgres

import (
	"context"
	"strconv"

	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const selectPost = `SELECT
	p.id, p.author_id, p.title, p.text, p.hide_stats, p.created_at, p.updated_at,
	u.id, u.email, u.username, u.name, u.avatar
	FROM posts p
	JOIN users u ON p.author_id = u.id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*model.Post, error) {
	var (
		id       uuid.UUID
		authorID uuid.UUID
		userID   uuid.UUID
		username *string
		post     model.Post
		author   model.User
	)
	if err := row.Scan(
		&id,
		&authorID,
		&post.Title,
		&post.Text,
		&post.HideStats,
		&post.Created,
		&post.Updated,
		&userID,
		&author.Email,
		&username,
		&author.Name,
		&author.Avatar,
	); err != nil {
		return nil, err
	}

	post.ID = id.String()
	post.Author = authorID.String()
	author.ID = userID.String()
	if username != nil {
		author.Username = *username
	}
	post.Expand.Author = &author

	return &post, nil
}

type postRepo struct {
	db     DB
	logger *zap.Logger
}

func newPostRepo(db DB, logger *zap.Logger) repository.Post {
	return &postRepo{
		db:     db,
		logger: logger,
	}
}

func (r *postRepo) List(ctx context.Context, auth *model.Session, page int, perPage int) ([]*model.Post, error) {
	maxLimit(&perPage)
	if page < 1 {
		page = 1
	}

	rows, err := r.db.Query(
		ctx,
		selectPost+`
		ORDER BY p.created_at DESC
		LIMIT $1
		OFFSET $2`,
		perPage,
		(page-1)*perPage,
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

func (r *postRepo) FindByID(ctx context.Context, auth *model.Session, id string) (*model.Post, error) {
	postID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	post, err := scanPost(r.db.QueryRow(ctx, selectPost+" WHERE p.id = $1", postID))
	if err != nil {
		return nil, storeError(err)
	}

	return post, nil
}

func (r *postRepo) Create(ctx context.Context, auth *model.Session, post model.Post) (*model.Post, error) {
	actor, err := actorID(auth)
	if err != nil {
		return nil, err
	}
	if post.Author != actor.String() {
		return nil, forbidden("posts can only be created for the authenticated user")
	}

	id := uuid.New()
	if _, err := r.db.Exec(
		ctx,
		"INSERT INTO posts(id, author_id, title, text, hide_stats) VALUES($1, $2, $3, $4, $5)",
		id,
		actor,
		post.Title,
		post.Text,
		post.HideStats,
	); err != nil {
		return nil, storeError(err)
	}

	return r.FindByID(ctx, auth, id.String())
}

func (r *postRepo) Update(ctx context.Context, auth *model.Session, id string, update model.PostUpdate) (*model.Post, error) {
	actor, err := actorID(auth)
	if err != nil {
		return nil, err
	}
	postID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	query := "UPDATE posts SET "
	args := []interface{}{}
	i := 1

	if update.Title != nil {
		query += "title = $" + strconv.Itoa(i) + ", "
		args = append(args, *update.Title)
		i++
	}
	if update.Text != nil {
		query += "text = $" + strconv.Itoa(i) + ", "
		args = append(args, *update.Text)
		i++
	}
	if update.HideStats != nil {
		query += "hide_stats = $" + strconv.Itoa(i) + ", "
		args = append(args, *update.HideStats)
		i++
	}

	query += "updated_at = now() WHERE id = $" + strconv.Itoa(i) + " AND author_id = $" + strconv.Itoa(i+1)
	args = append(args, postID, actor)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return nil, storeError(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, r.ownershipError(ctx, postID)
	}

	return r.FindByID(ctx, auth, id)
}

func (r *postRepo) Delete(ctx context.Context, auth *model.Session, id string) error {
	actor, err := actorID(auth)
	if err != nil {
		return err
	}
	postID, err := parseID(id)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, "DELETE FROM posts WHERE id = $1 AND author_id = $2", postID, actor)
	if err != nil {
		return storeError(err)
	}
	if tag.RowsAffected() == 0 {
		return r.ownershipError(ctx, postID)
	}

	return nil
}

// ownershipError tells apart a missing post from one owned by someone else
// after a guarded write touched no rows.
func (r *postRepo) ownershipError(ctx context.Context, postID uuid.UUID) error {
	var authorID uuid.UUID
	if err := r.db.QueryRow(ctx, "SELECT author_id FROM posts WHERE id = $1", postID).Scan(&authorID); err != nil {
		return storeError(err)
	}

	r.logger.Sugar().Warnf("rejected write to post(%s) by non-author", postID.String())
	return forbidden("only the author may modify this post")
}
