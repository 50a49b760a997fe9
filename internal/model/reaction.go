package model

import "fmt"

type ReactionKind string

const (
	Like    ReactionKind = "like"
	Dislike ReactionKind = "dislike"
)

func ParseReactionKind(s string) (ReactionKind, error) {
	switch ReactionKind(s) {
	case Like, Dislike:
		return ReactionKind(s), nil
	default:
		return "", fmt.Errorf("unknown reaction kind %q", s)
	}
}

// Opposite returns the polarity that cannot coexist with k on the same post.
func (k ReactionKind) Opposite() ReactionKind {
	if k == Like {
		return Dislike
	}
	return Like
}

type Reaction struct {
	ID   string       `json:"id"`
	User string       `json:"user"`
	Post string       `json:"post"`
	Kind ReactionKind `json:"kind"`
}

// ReactionState is the position of one (user, post) pair in the vote state machine.
type ReactionState int

const (
	Neutral ReactionState = iota
	Liked
	Disliked
)

func (s ReactionState) String() string {
	switch s {
	case Liked:
		return "liked"
	case Disliked:
		return "disliked"
	default:
		return "neutral"
	}
}

func (s ReactionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Next applies a vote action. Voting for the current state toggles back to
// Neutral; voting for the other polarity switches to it.
func (s ReactionState) Next(action ReactionKind) ReactionState {
	switch action {
	case Like:
		if s == Liked {
			return Neutral
		}
		return Liked
	case Dislike:
		if s == Disliked {
			return Neutral
		}
		return Disliked
	}
	return s
}

type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

func (s IDSet) Remove(id string) {
	delete(s, id)
}

func (s IDSet) Clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

type UserInteractions struct {
	Liked    IDSet
	Disliked IDSet
}

func (i *UserInteractions) State(postID string) ReactionState {
	switch {
	case i.Liked.Has(postID):
		return Liked
	case i.Disliked.Has(postID):
		return Disliked
	default:
		return Neutral
	}
}
