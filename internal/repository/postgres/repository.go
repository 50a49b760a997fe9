// Package postgres implements the record store on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/BloggingApp/blog-gateway/internal/config"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const MAX_LIMIT = 500

func maxLimit(limit *int) {
	if *limit > MAX_LIMIT || *limit <= 0 {
		*limit = MAX_LIMIT
	}
}

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, cfg.DSN())
}

func New(db DB, logger *zap.Logger) *repository.Store {
	return &repository.Store{
		Post:     newPostRepo(db, logger),
		User:     newUserRepo(db, logger),
		Reaction: newReactionRepo(db, logger),
	}
}

var fieldsByConstraint = map[string]string{
	"users_email_key":         "email",
	"users_username_key":      "username",
	"reactions_user_post_key": "post",
	"reactions_post_id_fkey":  "post",
	"posts_author_id_fkey":    "author",
}

// storeError translates a pgx error into the shape the services expect from
// any record store.
func storeError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return repository.NewNotFound("record not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23503", "23514", "22P02":
			storeErr := &repository.StoreError{Status: http.StatusBadRequest, Message: pgErr.Message, Err: err}
			if field, ok := fieldsByConstraint[pgErr.ConstraintName]; ok {
				storeErr.Fields = map[string]string{field: "validation_" + pgErr.Code}
			}
			return storeErr
		}
		return &repository.StoreError{Status: http.StatusInternalServerError, Message: pgErr.Message, Err: err}
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) {
		return repository.NewUnreachable(err)
	}

	return &repository.StoreError{Status: http.StatusInternalServerError, Message: "query failed", Err: err}
}

func unauthorized() error {
	return &repository.StoreError{Status: http.StatusUnauthorized, Message: "authentication required"}
}

func forbidden(message string) error {
	return &repository.StoreError{Status: http.StatusForbidden, Message: message}
}

// parseID maps malformed ids to not found, the same outcome an unknown id has.
func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, repository.NewNotFound(fmt.Sprintf("invalid id %q", id))
	}
	return parsed, nil
}

func actorID(auth *model.Session) (uuid.UUID, error) {
	if !auth.IsValid() {
		return uuid.Nil, unauthorized()
	}
	id, err := uuid.Parse(auth.User.ID)
	if err != nil {
		return uuid.Nil, unauthorized()
	}
	return id, nil
}
