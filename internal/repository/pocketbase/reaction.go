package pocketbase

import (
	"context"
	"fmt"
	"net/http"

	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/repository"
)

// Likes and dislikes are stored in two disjoint collections.
var reactionCollections = map[model.ReactionKind]string{
	model.Like:    "likes",
	model.Dislike: "dislikes",
}

const userReactionsPageSize = 500

type reactionRepo struct {
	c *client
}

func newReactionRepo(c *client) repository.Reaction {
	return &reactionRepo{
		c: c,
	}
}

func collectionOf(kind model.ReactionKind) (string, error) {
	collection, ok := reactionCollections[kind]
	if !ok {
		return "", fmt.Errorf("unknown reaction kind %q", kind)
	}
	return collection, nil
}

func (r *reactionRepo) Find(ctx context.Context, auth *model.Session, kind model.ReactionKind, userID string, postID string) (*model.Reaction, error) {
	collection, err := collectionOf(kind)
	if err != nil {
		return nil, err
	}

	result, err := list[reactionRecord](ctx, r.c, auth, collection+".find", collection, listParams{
		Page:      1,
		PerPage:   1,
		Filter:    filterEq("user", userID, "post", postID),
		SkipTotal: true,
	})
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, nil
	}

	return result.Items[0].toModel(kind), nil
}

func (r *reactionRepo) Create(ctx context.Context, auth *model.Session, kind model.ReactionKind, userID string, postID string) (*model.Reaction, error) {
	collection, err := collectionOf(kind)
	if err != nil {
		return nil, err
	}

	body := map[string]string{
		"user": userID,
		"post": postID,
	}

	var record reactionRecord
	if err := r.c.do(ctx, auth, collection+".create", http.MethodPost, recordsPath(collection), nil, body, &record); err != nil {
		return nil, err
	}

	return record.toModel(kind), nil
}

func (r *reactionRepo) Delete(ctx context.Context, auth *model.Session, kind model.ReactionKind, id string) error {
	collection, err := collectionOf(kind)
	if err != nil {
		return err
	}

	return r.c.do(ctx, auth, collection+".delete", http.MethodDelete, recordPath(collection, id), nil, nil, nil)
}

func (r *reactionRepo) PostIDsByUser(ctx context.Context, auth *model.Session, kind model.ReactionKind, userID string) ([]string, error) {
	collection, err := collectionOf(kind)
	if err != nil {
		return nil, err
	}

	var postIDs []string
	for page := 1; ; page++ {
		result, err := list[reactionRecord](ctx, r.c, auth, collection+".by_user", collection, listParams{
			Page:      page,
			PerPage:   userReactionsPageSize,
			Filter:    filterEq("user", userID),
			Fields:    "id,post",
			SkipTotal: true,
		})
		if err != nil {
			return nil, err
		}

		for _, item := range result.Items {
			postIDs = append(postIDs, item.Post)
		}

		if len(result.Items) < userReactionsPageSize {
			return postIDs, nil
		}
	}
}

func (r *reactionRepo) Count(ctx context.Context, auth *model.Session, kind model.ReactionKind, postID string) (int64, error) {
	collection, err := collectionOf(kind)
	if err != nil {
		return 0, err
	}

	result, err := list[reactionRecord](ctx, r.c, auth, collection+".count", collection, listParams{
		Page:    1,
		PerPage: 1,
		Filter:  filterEq("post", postID),
		Fields:  "id",
	})
	if err != nil {
		return 0, err
	}

	return result.TotalItems, nil
}

func (r *reactionRepo) PostsByUser(ctx context.Context, auth *model.Session, kind model.ReactionKind, userID string, limit int) ([]*model.Post, error) {
	collection, err := collectionOf(kind)
	if err != nil {
		return nil, err
	}

	result, err := list[reactionRecord](ctx, r.c, auth, collection+".posts_by_user", collection, listParams{
		Page:      1,
		PerPage:   limit,
		Sort:      "-created",
		Filter:    filterEq("user", userID),
		Expand:    "post,post.author",
		SkipTotal: true,
	})
	if err != nil {
		return nil, err
	}

	posts := make([]*model.Post, 0, len(result.Items))
	for _, item := range result.Items {
		if item.Expand.Post == nil {
			continue
		}
		posts = append(posts, item.Expand.Post.toModel())
	}

	return posts, nil
}
