package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/repository"
	"github.com/BloggingApp/blog-gateway/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const minPasswordLength = 8

var errWrongCredentials = &ValidationError{Message: "Wrong email address or password."}

type userService struct {
	logger       *zap.Logger
	repo         *repository.Repository
	sessionTTL   time.Duration
	accessSecret []byte
}

func newUserService(logger *zap.Logger, repo *repository.Repository, sessionTTL time.Duration, accessSecret []byte) User {
	return &userService{
		logger:       logger,
		repo:         repo,
		sessionTTL:   sessionTTL,
		accessSecret: accessSecret,
	}
}

func (s *userService) Register(ctx context.Context, input dto.RegisterRequest) (*model.Session, string, error) {
	email := strings.TrimSpace(input.Email)

	if input.Password != input.PasswordConfirm {
		return nil, "", &ValidationError{Field: fieldPasswordConfirm, Message: msgPasswordMismatch}
	}
	if len(input.Password) < minPasswordLength {
		return nil, "", &ValidationError{Field: "password", Message: "The password must be at least 8 characters long."}
	}

	if _, err := s.repo.Store.User.Create(ctx, email, input.Password, input.PasswordConfirm); err != nil {
		s.logger.Sugar().Errorf("failed to register user(%s): %s", email, err.Error())
		return nil, "", classifyStoreErr(err, "Registration failed. Please check your input.")
	}

	return s.Login(ctx, dto.LoginRequest{
		Email:    email,
		Password: input.Password,
	})
}

func (s *userService) Login(ctx context.Context, input dto.LoginRequest) (*model.Session, string, error) {
	token, user, err := s.repo.Store.User.AuthWithPassword(ctx, strings.TrimSpace(input.Email), input.Password)
	if err != nil {
		if status, ok := repository.StatusOf(err); ok && status == http.StatusBadRequest {
			return nil, "", errWrongCredentials
		}
		s.logger.Sugar().Errorf("failed to authenticate user(%s): %s", input.Email, err.Error())
		return nil, "", classifyStoreErr(err, "")
	}

	session := model.Session{
		ID:    uuid.NewString(),
		Token: token,
		User:  *user,
	}
	if err := s.repo.Redis.Session.Save(ctx, session, s.sessionTTL); err != nil {
		s.logger.Sugar().Errorf("failed to save session of user(%s) in redis: %s", user.ID, err.Error())
		return nil, "", ErrInternal
	}

	accessToken, err := utils.EncodeJWT(jwt.MapClaims{
		"sid": session.ID,
		"id":  user.ID,
		"exp": time.Now().Add(s.sessionTTL).Unix(),
	}, s.accessSecret)
	if err != nil {
		s.logger.Sugar().Errorf("failed to sign access token of user(%s): %s", user.ID, err.Error())
		return nil, "", ErrInternal
	}

	return &session, accessToken, nil
}

func (s *userService) Logout(ctx context.Context, session *model.Session) error {
	if session == nil {
		return nil
	}

	if err := s.repo.Redis.Session.Delete(ctx, session.ID); err != nil {
		s.logger.Sugar().Errorf("failed to delete session(%s) from redis: %s", session.ID, err.Error())
		return ErrInternal
	}

	return nil
}

func (s *userService) UpdateProfile(ctx context.Context, session *model.Session, input dto.UpdateProfileRequest) (*model.User, error) {
	if !session.IsValid() {
		return nil, ErrUnauthenticated
	}

	// a blank name leaves the profile as it is
	name := strings.TrimSpace(input.Name)
	if name == "" {
		user := session.User
		return &user, nil
	}

	user, err := s.repo.Store.User.Update(ctx, session, session.User.ID, name)
	if err != nil {
		s.logger.Sugar().Errorf("failed to update user(%s): %s", session.User.ID, err.Error())
		return nil, classifyStoreErr(err, "")
	}

	if err := s.repo.Redis.Session.Patch(ctx, session.ID, *user); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUnauthenticated
		}
		s.logger.Sugar().Errorf("failed to patch session(%s) in redis: %s", session.ID, err.Error())
		return nil, ErrInternal
	}
	session.User = *user

	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, accessToken string) (*model.Session, error) {
	claims, err := utils.DecodeJWT(accessToken, s.accessSecret)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	sessionID, ok := claims["sid"].(string)
	if !ok || sessionID == "" {
		return nil, ErrUnauthenticated
	}

	session, err := s.repo.Redis.Session.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUnauthenticated
		}
		s.logger.Sugar().Errorf("failed to get session(%s) from redis: %s", sessionID, err.Error())
		return nil, ErrInternal
	}

	if userID, _ := claims["id"].(string); userID != session.User.ID || !session.IsValid() {
		return nil, ErrUnauthenticated
	}

	return session, nil
}
