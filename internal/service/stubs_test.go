package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/repository"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// memReactions is an in-memory two-collection reaction store.
type memReactions struct {
	mu     sync.Mutex
	nextID int
	rows   map[model.ReactionKind]map[string]model.Reaction

	createErr error
	countErr  error
	creates   int
}

func newMemReactions() *memReactions {
	return &memReactions{
		rows: map[model.ReactionKind]map[string]model.Reaction{
			model.Like:    {},
			model.Dislike: {},
		},
	}
}

func (m *memReactions) add(kind model.ReactionKind, userID, postID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("r%d", m.nextID)
	m.rows[kind][id] = model.Reaction{ID: id, User: userID, Post: postID, Kind: kind}
}

func (m *memReactions) has(kind model.ReactionKind, userID, postID string) bool {
	r, _ := m.Find(context.Background(), nil, kind, userID, postID)
	return r != nil
}

func (m *memReactions) Find(_ context.Context, _ *model.Session, kind model.ReactionKind, userID string, postID string) (*model.Reaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows[kind] {
		if r.User == userID && r.Post == postID {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memReactions) Create(_ context.Context, _ *model.Session, kind model.ReactionKind, userID string, postID string) (*model.Reaction, error) {
	m.mu.Lock()
	m.creates++
	err := m.createErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	m.add(kind, userID, postID)
	return m.Find(context.Background(), nil, kind, userID, postID)
}

func (m *memReactions) Delete(_ context.Context, _ *model.Session, kind model.ReactionKind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[kind][id]; !ok {
		return repository.NewNotFound("reaction not found")
	}
	delete(m.rows[kind], id)
	return nil
}

func (m *memReactions) PostIDsByUser(_ context.Context, _ *model.Session, kind model.ReactionKind, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, r := range m.rows[kind] {
		if r.User == userID {
			ids = append(ids, r.Post)
		}
	}
	return ids, nil
}

func (m *memReactions) Count(_ context.Context, _ *model.Session, kind model.ReactionKind, postID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, r := range m.rows[kind] {
		if r.Post == postID {
			n++
		}
	}
	return n, nil
}

func (m *memReactions) PostsByUser(_ context.Context, _ *model.Session, kind model.ReactionKind, userID string, limit int) ([]*model.Post, error) {
	ids, _ := m.PostIDsByUser(context.Background(), nil, kind, userID)
	posts := make([]*model.Post, 0, len(ids))
	for _, id := range ids {
		if len(posts) == limit {
			break
		}
		posts = append(posts, &model.Post{ID: id})
	}
	return posts, nil
}

type stubPosts struct {
	listFn     func(ctx context.Context, auth *model.Session, page int, perPage int) ([]*model.Post, error)
	findByIDFn func(ctx context.Context, auth *model.Session, id string) (*model.Post, error)
	createFn   func(ctx context.Context, auth *model.Session, post model.Post) (*model.Post, error)
	updateFn   func(ctx context.Context, auth *model.Session, id string, update model.PostUpdate) (*model.Post, error)
	deleteFn   func(ctx context.Context, auth *model.Session, id string) error
	finds      int
}

func (s *stubPosts) List(ctx context.Context, auth *model.Session, page int, perPage int) ([]*model.Post, error) {
	return s.listFn(ctx, auth, page, perPage)
}

func (s *stubPosts) FindByID(ctx context.Context, auth *model.Session, id string) (*model.Post, error) {
	s.finds++
	return s.findByIDFn(ctx, auth, id)
}

func (s *stubPosts) Create(ctx context.Context, auth *model.Session, post model.Post) (*model.Post, error) {
	return s.createFn(ctx, auth, post)
}

func (s *stubPosts) Update(ctx context.Context, auth *model.Session, id string, update model.PostUpdate) (*model.Post, error) {
	return s.updateFn(ctx, auth, id, update)
}

func (s *stubPosts) Delete(ctx context.Context, auth *model.Session, id string) error {
	return s.deleteFn(ctx, auth, id)
}

type stubUsers struct {
	createFn func(ctx context.Context, email string, password string, passwordConfirm string) (*model.User, error)
	authFn   func(ctx context.Context, email string, password string) (string, *model.User, error)
	updateFn func(ctx context.Context, auth *model.Session, id string, name string) (*model.User, error)
}

func (s *stubUsers) Create(ctx context.Context, email string, password string, passwordConfirm string) (*model.User, error) {
	return s.createFn(ctx, email, password, passwordConfirm)
}

func (s *stubUsers) AuthWithPassword(ctx context.Context, email string, password string) (string, *model.User, error) {
	return s.authFn(ctx, email, password)
}

func (s *stubUsers) Update(ctx context.Context, auth *model.Session, id string, name string) (*model.User, error) {
	return s.updateFn(ctx, auth, id, name)
}

type published struct {
	queue string
	msg   interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, queue string, v interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{queue: queue, msg: v})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) queues() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	queues := make([]string, 0, len(p.events))
	for _, e := range p.events {
		queues = append(queues, e.queue)
	}
	return queues
}

type testEnv struct {
	service   *Service
	posts     *stubPosts
	users     *stubUsers
	reactions *memReactions
	publisher *recordingPublisher
	redis     *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	env := &testEnv{
		posts:     &stubPosts{},
		users:     &stubUsers{},
		reactions: newMemReactions(),
		publisher: &recordingPublisher{},
		redis:     mr,
	}

	logger := zap.NewNop()
	store := &repository.Store{
		Post:     env.posts,
		User:     env.users,
		Reaction: env.reactions,
	}
	env.service = New(logger, repository.New(store, rdb, logger), env.publisher, Options{
		FeedPageSize: 50,
		SessionTTL:   time.Hour,
		PostCacheTTL: time.Hour,
		AccessSecret: []byte("test-secret"),
	})

	return env
}

func testSession(userID string) *model.Session {
	return &model.Session{
		ID:    "session-" + userID,
		Token: "token-" + userID,
		User:  model.User{ID: userID, Email: userID + "@example.com", Username: userID},
	}
}
