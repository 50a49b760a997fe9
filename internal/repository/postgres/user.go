package postgres

import (
	"context"
	"errors"
	"net/http"

	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type userRepo struct {
	db     DB
	logger *zap.Logger
}

func newUserRepo(db DB, logger *zap.Logger) repository.User {
	return &userRepo{
		db:     db,
		logger: logger,
	}
}

func validationError(field string, code string, message string) error {
	return &repository.StoreError{
		Status:  http.StatusBadRequest,
		Message: message,
		Fields:  map[string]string{field: code},
	}
}

func (r *userRepo) Create(ctx context.Context, email string, password string, passwordConfirm string) (*model.User, error) {
	if password != passwordConfirm {
		return nil, validationError("passwordConfirm", "validation_values_mismatch", "Failed to create record.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, validationError("password", "validation_invalid_password", "Failed to create record.")
	}

	user := model.User{
		ID:    uuid.NewString(),
		Email: email,
	}
	if _, err := r.db.Exec(
		ctx,
		"INSERT INTO users(id, email, password_hash) VALUES($1, $2, $3)",
		uuid.MustParse(user.ID),
		user.Email,
		string(hash),
	); err != nil {
		return nil, storeError(err)
	}

	return &user, nil
}

func (r *userRepo) AuthWithPassword(ctx context.Context, email string, password string) (string, *model.User, error) {
	var (
		id       uuid.UUID
		username *string
		hash     string
		user     model.User
	)
	err := r.db.QueryRow(
		ctx,
		"SELECT u.id, u.email, u.username, u.name, u.avatar, u.password_hash FROM users u WHERE u.email = $1",
		email,
	).Scan(
		&id,
		&user.Email,
		&username,
		&user.Name,
		&user.Avatar,
		&hash,
	)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", nil, storeError(err)
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", nil, &repository.StoreError{Status: http.StatusBadRequest, Message: "Failed to authenticate."}
	}

	user.ID = id.String()
	if username != nil {
		user.Username = *username
	}

	// Writes are authorized by the session user, so the token is only an opaque handle.
	return uuid.NewString(), &user, nil
}

func (r *userRepo) Update(ctx context.Context, auth *model.Session, id string, name string) (*model.User, error) {
	actor, err := actorID(auth)
	if err != nil {
		return nil, err
	}
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if userID != actor {
		return nil, forbidden("users can only update their own profile")
	}

	var (
		username *string
		user     model.User
	)
	if err := r.db.QueryRow(
		ctx,
		"UPDATE users SET name = $1 WHERE id = $2 RETURNING email, username, name, avatar",
		name,
		userID,
	).Scan(
		&user.Email,
		&username,
		&user.Name,
		&user.Avatar,
	); err != nil {
		return nil, storeError(err)
	}

	user.ID = userID.String()
	if username != nil {
		user.Username = *username
	}

	return &user, nil
}
