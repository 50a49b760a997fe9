package pocketbase

import (
	"context"
	"net/http"

	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/repository"
)

const usersCollection = "users"

type userRepo struct {
	c *client
}

func newUserRepo(c *client) repository.User {
	return &userRepo{
		c: c,
	}
}

func (r *userRepo) Create(ctx context.Context, email string, password string, passwordConfirm string) (*model.User, error) {
	body := map[string]interface{}{
		"email":           email,
		"password":        password,
		"passwordConfirm": passwordConfirm,
		"emailVisibility": true,
	}

	var record userRecord
	if err := r.c.do(ctx, nil, "users.create", http.MethodPost, recordsPath(usersCollection), nil, body, &record); err != nil {
		return nil, err
	}

	return record.toModel(), nil
}

type authResponse struct {
	Token  string     `json:"token"`
	Record userRecord `json:"record"`
}

func (r *userRepo) AuthWithPassword(ctx context.Context, email string, password string) (string, *model.User, error) {
	body := map[string]string{
		"identity": email,
		"password": password,
	}

	var resp authResponse
	path := "/api/collections/" + usersCollection + "/auth-with-password"
	if err := r.c.do(ctx, nil, "users.auth", http.MethodPost, path, nil, body, &resp); err != nil {
		return "", nil, err
	}

	return resp.Token, resp.Record.toModel(), nil
}

func (r *userRepo) Update(ctx context.Context, auth *model.Session, id string, name string) (*model.User, error) {
	body := map[string]string{
		"name": name,
	}

	var record userRecord
	if err := r.c.do(ctx, auth, "users.update", http.MethodPatch, recordPath(usersCollection, id), nil, body, &record); err != nil {
		return nil, err
	}

	return record.toModel(), nil
}
