package service

import (
	"context"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/BloggingApp/blog-gateway/internal/metrics"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const feedFirstPage = 1

// voteState is everything a vote may change in a view.
type voteState struct {
	liked    model.IDSet
	disliked model.IDSet
	stats    map[string]model.PostStats
}

func newVoteState() voteState {
	return voteState{
		liked:    model.NewIDSet(),
		disliked: model.NewIDSet(),
		stats:    make(map[string]model.PostStats),
	}
}

func (v voteState) clone() voteState {
	stats := make(map[string]model.PostStats, len(v.stats))
	for id, s := range v.stats {
		stats[id] = s
	}
	return voteState{
		liked:    v.liked.Clone(),
		disliked: v.disliked.Clone(),
		stats:    stats,
	}
}

func (v voteState) reaction(postID string) model.ReactionState {
	return (&model.UserInteractions{Liked: v.liked, Disliked: v.disliked}).State(postID)
}

func (v voteState) set(postID string, state model.ReactionState) {
	v.liked.Remove(postID)
	v.disliked.Remove(postID)
	switch state {
	case model.Liked:
		v.liked.Add(postID)
	case model.Disliked:
		v.disliked.Add(postID)
	}
}

// withRollback runs apply against state and puts the snapshot back if it fails.
func withRollback[S any](state *S, snapshot func(S) S, apply func(*S) error) error {
	saved := snapshot(*state)
	if err := apply(state); err != nil {
		*state = saved
		return err
	}
	return nil
}

// Feed is the state of one rendered view: the posts shown, the viewer's
// reactions and the counts per post. It is not safe for concurrent use; every
// request builds its own.
type Feed struct {
	logger       *zap.Logger
	posts        Post
	interactions Interaction
	session      *model.Session
	pageSize     int

	visible []*model.Post
	state   voteState
}

func NewFeed(logger *zap.Logger, posts Post, interactions Interaction, session *model.Session, pageSize int) *Feed {
	return &Feed{
		logger:       logger,
		posts:        posts,
		interactions: interactions,
		session:      session,
		pageSize:     pageSize,
		state:        newVoteState(),
	}
}

// Load fetches the first feed page. Posts the viewer disliked are muted.
func (f *Feed) Load(ctx context.Context) error {
	visible, state, err := f.load(ctx, f.session)
	if err != nil {
		return err
	}

	f.visible = visible
	f.state = state

	return nil
}

// load builds the feed as session sees it without touching the presenter.
func (f *Feed) load(ctx context.Context, session *model.Session) ([]*model.Post, voteState, error) {
	posts, err := f.posts.List(ctx, session, feedFirstPage, f.pageSize)
	if err != nil {
		return nil, voteState{}, err
	}

	state := newVoteState()
	if err := f.loadInteractions(ctx, session, &state); err != nil {
		return nil, voteState{}, err
	}

	visible := make([]*model.Post, 0, len(posts))
	for _, post := range posts {
		if !state.disliked.Has(post.ID) {
			visible = append(visible, post)
		}
	}

	stats, err := f.fetchStats(ctx, session, visible)
	if err != nil {
		return nil, voteState{}, err
	}
	state.stats = stats

	return visible, state, nil
}

// Focus loads a single post for a detail view. Unlike Load, a disliked post
// is kept.
func (f *Feed) Focus(ctx context.Context, postID string) error {
	post, err := f.posts.FindByID(ctx, f.session, postID)
	if err != nil {
		return err
	}

	state := newVoteState()
	if err := f.loadInteractions(ctx, f.session, &state); err != nil {
		return err
	}

	stats, err := f.interactions.GetPostStats(ctx, f.session, post.ID)
	if err != nil {
		return err
	}
	state.stats[post.ID] = stats

	f.visible = []*model.Post{post}
	f.state = state

	return nil
}

// SetSession switches the viewer. The feed is reloaded only when the user
// changes, so a refreshed token alone does not refetch anything. If the
// reload fails the view is left empty: nothing of the previous user's
// reactions or counts survives the switch.
func (f *Feed) SetSession(ctx context.Context, session *model.Session) error {
	if session.UserID() == f.session.UserID() {
		f.session = session
		return nil
	}

	visible, state, err := f.load(ctx, session)
	f.session = session
	if err != nil {
		f.visible = nil
		f.state = newVoteState()
		return err
	}

	f.visible = visible
	f.state = state

	return nil
}

// HandleVote applies a like or dislike toggle on postID. On any failure the
// view is restored to what it was before the vote.
func (f *Feed) HandleVote(ctx context.Context, postID string, kind model.ReactionKind) error {
	if !f.session.IsValid() {
		metrics.Votes.WithLabelValues(string(kind), metrics.VoteRejected).Inc()
		return ErrUnauthenticated
	}

	err := withRollback(&f.state, voteState.clone, func(state *voteState) error {
		next := state.reaction(postID).Next(kind)

		var err error
		switch next {
		case model.Liked:
			err = f.interactions.Like(ctx, f.session, postID)
		case model.Disliked:
			err = f.interactions.Dislike(ctx, f.session, postID)
		default:
			err = f.interactions.RemoveInteraction(ctx, f.session, postID)
		}
		if err != nil {
			return err
		}
		state.set(postID, next)

		stats, err := f.interactions.GetPostStats(ctx, f.session, postID)
		if err != nil {
			return err
		}
		state.stats[postID] = stats

		return nil
	})
	if err != nil {
		f.logger.Sugar().Errorf("failed to %s post(%s) for user(%s): %s", kind, postID, f.session.User.ID, err.Error())
		metrics.Votes.WithLabelValues(string(kind), metrics.VoteRolledBack).Inc()
		return err
	}

	metrics.Votes.WithLabelValues(string(kind), metrics.VoteApplied).Inc()
	return nil
}

func (f *Feed) StatsVisible(post *model.Post) bool {
	return post.StatsVisibleTo(f.session.UserID())
}

func (f *Feed) Posts() []*model.Post {
	return f.visible
}

func (f *Feed) Reaction(postID string) model.ReactionState {
	return f.state.reaction(postID)
}

// Stats returns the last fetched counts of postID, zero if none were fetched.
func (f *Feed) Stats(postID string) model.PostStats {
	return f.state.stats[postID]
}

func (f *Feed) PostView(post *model.Post) dto.PostView {
	viewerID := f.session.UserID()
	view := dto.PostView{
		Post:        *post,
		Reaction:    f.state.reaction(post.ID),
		IsAuthor:    post.IsAuthor(viewerID),
		StatsHidden: post.HideStats && post.IsAuthor(viewerID),
	}
	if f.StatsVisible(post) {
		stats := f.Stats(post.ID)
		view.Stats = &stats
	}
	return view
}

func (f *Feed) View() []dto.PostView {
	views := make([]dto.PostView, 0, len(f.visible))
	for _, post := range f.visible {
		views = append(views, f.PostView(post))
	}
	return views
}

func (f *Feed) loadInteractions(ctx context.Context, session *model.Session, state *voteState) error {
	if !session.IsValid() {
		return nil
	}

	interactions, err := f.interactions.GetUserInteractions(ctx, session, session.User.ID)
	if err != nil {
		return err
	}
	state.liked = interactions.Liked
	state.disliked = interactions.Disliked

	return nil
}

func (f *Feed) fetchStats(ctx context.Context, session *model.Session, posts []*model.Post) (map[string]model.PostStats, error) {
	results := make([]model.PostStats, len(posts))

	g, gctx := errgroup.WithContext(ctx)
	for i, post := range posts {
		i, post := i, post
		g.Go(func() error {
			stats, err := f.interactions.GetPostStats(gctx, session, post.ID)
			results[i] = stats
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := make(map[string]model.PostStats, len(posts))
	for i, post := range posts {
		stats[post.ID] = results[i]
	}
	return stats, nil
}

// Detail renders a single post for the session user.
func (s *Service) Detail(ctx context.Context, session *model.Session, postID string) (*dto.PostView, error) {
	feed := s.NewFeed(session)
	if err := feed.Focus(ctx, postID); err != nil {
		return nil, err
	}

	view := feed.PostView(feed.Posts()[0])
	return &view, nil
}

// Vote applies a vote toggle on postID and returns the post as the session
// user now sees it.
func (s *Service) Vote(ctx context.Context, session *model.Session, postID string, kind model.ReactionKind) (*dto.PostView, error) {
	if !session.IsValid() {
		metrics.Votes.WithLabelValues(string(kind), metrics.VoteRejected).Inc()
		return nil, ErrUnauthenticated
	}

	feed := s.NewFeed(session)
	if err := feed.Focus(ctx, postID); err != nil {
		return nil, err
	}

	if err := feed.HandleVote(ctx, postID, kind); err != nil {
		return nil, err
	}

	view := feed.PostView(feed.Posts()[0])
	return &view, nil
}

// ClearReaction removes the session user's reaction on postID.
func (s *Service) ClearReaction(ctx context.Context, session *model.Session, postID string) (*dto.PostView, error) {
	if !session.IsValid() {
		return nil, ErrUnauthenticated
	}

	if err := s.Interaction.RemoveInteraction(ctx, session, postID); err != nil {
		return nil, err
	}

	return s.Detail(ctx, session, postID)
}
