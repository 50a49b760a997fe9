package pocketbase

import (
	"context"
	"net/http"
	"net/url"

	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/repository"
)

const postsCollection = "posts"

type postRepo struct {
	c *client
}

func newPostRepo(c *client) repository.Post {
	return &postRepo{
		c: c,
	}
}

func (r *postRepo) List(ctx context.Context, auth *model.Session, page int, perPage int) ([]*model.Post, error) {
	result, err := list[postRecord](ctx, r.c, auth, "posts.list", postsCollection, listParams{
		Page:      page,
		PerPage:   perPage,
		Sort:      "-created",
		Expand:    "author",
		SkipTotal: true,
	})
	if err != nil {
		return nil, err
	}

	posts := make([]*model.Post, 0, len(result.Items))
	for i := range result.Items {
		posts = append(posts, result.Items[i].toModel())
	}

	return posts, nil
}

func (r *postRepo) FindByID(ctx context.Context, auth *model.Session, id string) (*model.Post, error) {
	var record postRecord
	query := url.Values{"expand": {"author"}}
	if err := r.c.do(ctx, auth, "posts.view", http.MethodGet, recordPath(postsCollection, id), query, nil, &record); err != nil {
		return nil, err
	}

	return record.toModel(), nil
}

func (r *postRepo) Create(ctx context.Context, auth *model.Session, post model.Post) (*model.Post, error) {
	body := map[string]interface{}{
		"title":      post.Title,
		"text":       post.Text,
		"author":     post.Author,
		"hide_stats": post.HideStats,
	}

	var record postRecord
	query := url.Values{"expand": {"author"}}
	if err := r.c.do(ctx, auth, "posts.create", http.MethodPost, recordsPath(postsCollection), query, body, &record); err != nil {
		return nil, err
	}

	return record.toModel(), nil
}

func (r *postRepo) Update(ctx context.Context, auth *model.Session, id string, update model.PostUpdate) (*model.Post, error) {
	var record postRecord
	query := url.Values{"expand": {"author"}}
	if err := r.c.do(ctx, auth, "posts.update", http.MethodPatch, recordPath(postsCollection, id), query, update, &record); err != nil {
		return nil, err
	}

	return record.toModel(), nil
}

func (r *postRepo) Delete(ctx context.Context, auth *model.Session, id string) error {
	return r.c.do(ctx, auth, "posts.delete", http.MethodDelete, recordPath(postsCollection, id), nil, nil, nil)
}
