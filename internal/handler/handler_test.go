package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/rabbitmq"
	"github.com/BloggingApp/blog-gateway/internal/repository"
	"github.com/BloggingApp/blog-gateway/internal/service"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "secret-password"

// fakeStore is a minimal record store keeping everything in memory.
type fakeStore struct {
	mu        sync.Mutex
	seq       int
	users     map[string]model.User
	posts     []*model.Post
	reactions map[model.ReactionKind][]model.Reaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[string]model.User{},
		reactions: map[model.ReactionKind][]model.Reaction{},
	}
}

func (s *fakeStore) id(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

func (s *fakeStore) List(_ context.Context, _ *model.Session, _ int, perPage int) ([]*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := make([]*model.Post, 0, len(s.posts))
	for i := len(s.posts) - 1; i >= 0 && len(posts) < perPage; i-- {
		post := *s.posts[i]
		posts = append(posts, &post)
	}
	return posts, nil
}

func (s *fakeStore) FindByID(_ context.Context, _ *model.Session, id string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, post := range s.posts {
		if post.ID == id {
			p := *post
			return &p, nil
		}
	}
	return nil, repository.NewNotFound("The requested resource wasn't found.")
}

func (s *fakeStore) Create(_ context.Context, _ *model.Session, post model.Post) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = s.id("p")
	post.Created = time.Now()
	post.Updated = post.Created
	s.posts = append(s.posts, &post)
	p := post
	return &p, nil
}

func (s *fakeStore) Update(_ context.Context, _ *model.Session, id string, update model.PostUpdate) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, post := range s.posts {
		if post.ID != id {
			continue
		}
		if update.Title != nil {
			post.Title = *update.Title
		}
		if update.Text != nil {
			post.Text = *update.Text
		}
		if update.HideStats != nil {
			post.HideStats = *update.HideStats
		}
		p := *post
		return &p, nil
	}
	return nil, repository.NewNotFound("The requested resource wasn't found.")
}

func (s *fakeStore) Delete(_ context.Context, _ *model.Session, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, post := range s.posts {
		if post.ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return nil
		}
	}
	return repository.NewNotFound("The requested resource wasn't found.")
}

type fakeUsers struct{ *fakeStore }

func (s fakeUsers) Create(_ context.Context, email string, _ string, _ string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; ok {
		return nil, &repository.StoreError{Status: 400, Fields: map[string]string{"email": "validation_not_unique"}}
	}
	user := model.User{ID: s.id("u"), Email: email}
	s.users[email] = user
	return &user, nil
}

func (s fakeUsers) AuthWithPassword(_ context.Context, email string, password string) (string, *model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok || password != testPassword {
		return "", nil, &repository.StoreError{Status: 400, Message: "Failed to authenticate."}
	}
	return "store-token-" + user.ID, &user, nil
}

func (s fakeUsers) Update(_ context.Context, _ *model.Session, id string, name string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, user := range s.users {
		if user.ID == id {
			user.Name = name
			s.users[email] = user
			return &user, nil
		}
	}
	return nil, repository.NewNotFound("The requested resource wasn't found.")
}

type fakeReactions struct{ *fakeStore }

func (s fakeReactions) Find(_ context.Context, _ *model.Session, kind model.ReactionKind, userID string, postID string) (*model.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reactions[kind] {
		if r.User == userID && r.Post == postID {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (s fakeReactions) Create(_ context.Context, _ *model.Session, kind model.ReactionKind, userID string, postID string) (*model.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := model.Reaction{ID: s.id("r"), User: userID, Post: postID, Kind: kind}
	s.reactions[kind] = append(s.reactions[kind], r)
	return &r, nil
}

func (s fakeReactions) Delete(_ context.Context, _ *model.Session, kind model.ReactionKind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.reactions[kind] {
		if r.ID == id {
			s.reactions[kind] = append(s.reactions[kind][:i], s.reactions[kind][i+1:]...)
			return nil
		}
	}
	return repository.NewNotFound("The requested resource wasn't found.")
}

func (s fakeReactions) PostIDsByUser(_ context.Context, _ *model.Session, kind model.ReactionKind, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, r := range s.reactions[kind] {
		if r.User == userID {
			ids = append(ids, r.Post)
		}
	}
	return ids, nil
}

func (s fakeReactions) Count(_ context.Context, _ *model.Session, kind model.ReactionKind, postID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, r := range s.reactions[kind] {
		if r.Post == postID {
			n++
		}
	}
	return n, nil
}

func (s fakeReactions) PostsByUser(ctx context.Context, auth *model.Session, kind model.ReactionKind, userID string, limit int) ([]*model.Post, error) {
	ids, _ := s.PostIDsByUser(ctx, auth, kind, userID)
	posts := make([]*model.Post, 0, len(ids))
	for _, id := range ids {
		if len(posts) == limit {
			break
		}
		if post, err := s.FindByID(ctx, auth, id); err == nil {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

type testServer struct {
	router *gin.Engine
	store  *fakeStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	fake := newFakeStore()
	store := &repository.Store{
		Post:     fake,
		User:     fakeUsers{fake},
		Reaction: fakeReactions{fake},
	}

	logger := zap.NewNop()
	services := service.New(logger, repository.New(store, rdb, logger), rabbitmq.Noop{}, service.Options{
		FeedPageSize: 50,
		SessionTTL:   time.Hour,
		PostCacheTTL: time.Hour,
		AccessSecret: []byte("test-secret"),
	})

	return &testServer{
		router: New(services, logger, "http://localhost:5173").InitRoutes(),
		store:  fake,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(t *testing.T, email string) (string, model.User) {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Email:           email,
		Password:        testPassword,
		PasswordConfirm: testPassword,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken, resp.User
}

func (s *testServer) createPost(t *testing.T, token string, input dto.CreatePostRequest) model.Post {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/v1/posts", token, input)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var post model.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	return post
}

func decodeBasic(t *testing.T, w *httptest.ResponseRecorder) dto.BasicResponse {
	t.Helper()

	var resp dto.BasicResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// feedPost mirrors dto.PostView with the reaction state as its text form.
type feedPost struct {
	Post        model.Post       `json:"post"`
	Stats       *model.PostStats `json:"stats"`
	Reaction    string           `json:"reaction"`
	IsAuthor    bool             `json:"is_author"`
	StatsHidden bool             `json:"stats_hidden"`
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) feedPost {
	t.Helper()

	var view feedPost
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	return view
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	s := newTestServer(t)

	token, user := s.register(t, "ada@example.com")
	assert.NotEmpty(t, token)

	w := s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, user.ID, me.ID)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Wrong email address or password.", decodeBasic(t, w).Details)

	w = s.do(t, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{Email: "ada@example.com", Password: testPassword, PasswordConfirm: testPassword})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBasic(t, w)
	assert.Equal(t, "This email address is already in use.", resp.Details)
	assert.Equal(t, "email", resp.Field)

	w = s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_MissingToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, decodeBasic(t, w).Ok)
}

func TestUsers_UpdateMe(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "ada@example.com")

	w := s.do(t, http.MethodPatch, "/api/v1/users/me", token, dto.UpdateProfileRequest{Name: "Ada"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	var me model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "Ada", me.Name)
}

func TestPosts_FeedMutesDislikedPosts(t *testing.T) {
	s := newTestServer(t)
	author, _ := s.register(t, "author@example.com")
	viewer, _ := s.register(t, "viewer@example.com")

	first := s.createPost(t, author, dto.CreatePostRequest{Title: "First", Text: "one"})
	second := s.createPost(t, author, dto.CreatePostRequest{Title: "Second", Text: "two"})

	w := s.do(t, http.MethodPost, "/api/v1/posts/"+first.ID+"/vote", viewer, dto.VoteRequest{Kind: "dislike"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/posts", viewer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed struct {
		Posts []feedPost `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, second.ID, feed.Posts[0].Post.ID)

	w = s.do(t, http.MethodGet, "/api/v1/posts", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	assert.Len(t, feed.Posts, 2)
}

func TestPosts_VoteToggle(t *testing.T) {
	s := newTestServer(t)
	author, _ := s.register(t, "author@example.com")
	viewer, _ := s.register(t, "viewer@example.com")
	post := s.createPost(t, author, dto.CreatePostRequest{Title: "Hello", Text: "world"})
	path := "/api/v1/posts/" + post.ID + "/vote"

	w := s.do(t, http.MethodPost, path, viewer, dto.VoteRequest{Kind: "like"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decodeView(t, w)
	assert.Equal(t, "liked", view.Reaction)
	assert.Equal(t, &model.PostStats{Likes: 1}, view.Stats)

	w = s.do(t, http.MethodPost, path, viewer, dto.VoteRequest{Kind: "dislike"})
	view = decodeView(t, w)
	assert.Equal(t, "disliked", view.Reaction)
	assert.Equal(t, &model.PostStats{Dislikes: 1}, view.Stats)

	w = s.do(t, http.MethodPost, path, viewer, dto.VoteRequest{Kind: "dislike"})
	view = decodeView(t, w)
	assert.Equal(t, "neutral", view.Reaction)
	assert.Equal(t, &model.PostStats{}, view.Stats)

	w = s.do(t, http.MethodPost, path, viewer, dto.VoteRequest{Kind: "like"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/api/v1/posts/"+post.ID+"/reaction", viewer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "neutral", decodeView(t, w).Reaction)
}

func TestPosts_VoteRequiresLogin(t *testing.T) {
	s := newTestServer(t)
	author, _ := s.register(t, "author@example.com")
	post := s.createPost(t, author, dto.CreatePostRequest{Title: "Hello", Text: "world"})

	w := s.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/vote", "", dto.VoteRequest{Kind: "like"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "please log in to vote", decodeBasic(t, w).Details)

	w = s.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/vote", author, map[string]string{"kind": "love"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPosts_VoteAnonymousWithBadBody(t *testing.T) {
	s := newTestServer(t)
	author, _ := s.register(t, "author@example.com")
	post := s.createPost(t, author, dto.CreatePostRequest{Title: "Hello", Text: "world"})
	path := "/api/v1/posts/" + post.ID + "/vote"

	for _, body := range []interface{}{nil, map[string]string{"kind": "love"}} {
		w := s.do(t, http.MethodPost, path, "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "please log in to vote", decodeBasic(t, w).Details)
	}

	w := s.do(t, http.MethodPost, path, "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "please log in to vote", decodeBasic(t, w).Details)
}

func TestPosts_HiddenStats(t *testing.T) {
	s := newTestServer(t)
	author, _ := s.register(t, "author@example.com")
	viewer, _ := s.register(t, "viewer@example.com")
	post := s.createPost(t, author, dto.CreatePostRequest{Title: "Hello", Text: "world", HideStats: true})

	w := s.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/vote", viewer, dto.VoteRequest{Kind: "like"})
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeView(t, w)
	assert.Nil(t, view.Stats)
	assert.Equal(t, "liked", view.Reaction)

	w = s.do(t, http.MethodGet, "/api/v1/posts/"+post.ID, author, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decodeView(t, w)
	assert.True(t, view.IsAuthor)
	assert.True(t, view.StatsHidden)
	assert.Equal(t, &model.PostStats{Likes: 1}, view.Stats)
}

func TestPosts_EditAndDeleteByAuthorOnly(t *testing.T) {
	s := newTestServer(t)
	author, _ := s.register(t, "author@example.com")
	other, _ := s.register(t, "other@example.com")
	post := s.createPost(t, author, dto.CreatePostRequest{Title: "Hello", Text: "world"})
	path := "/api/v1/posts/" + post.ID

	w := s.do(t, http.MethodPatch, path, other, map[string]string{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, path, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPatch, path, author, map[string]string{"title": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, "Renamed", decodeView(t, w).Post.Title)

	w = s.do(t, http.MethodDelete, path, author, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPosts_CreateValidation(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "author@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/posts", token, dto.CreatePostRequest{Title: "H", Text: "world"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/posts", "", dto.CreatePostRequest{Title: "Hello", Text: "world"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPosts_Liked(t *testing.T) {
	s := newTestServer(t)
	author, _ := s.register(t, "author@example.com")
	viewer, _ := s.register(t, "viewer@example.com")
	liked := s.createPost(t, author, dto.CreatePostRequest{Title: "Liked", Text: "one"})
	s.createPost(t, author, dto.CreatePostRequest{Title: "Ignored", Text: "two"})

	w := s.do(t, http.MethodPost, "/api/v1/posts/"+liked.ID+"/vote", viewer, dto.VoteRequest{Kind: "like"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/posts/liked", viewer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.LikedPostsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, liked.ID, resp.Posts[0].ID)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodGet, "/api/v1/posts", "", nil)
	w := s.do(t, http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "blog_gateway_http_requests_total")
}
