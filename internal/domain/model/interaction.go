// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// Kind is the type of a feedback act.
type Kind string

const (
	KindLike    Kind = "like"
	KindDislike Kind = "dislike"
	KindComment Kind = "comment"
)

// ParseKind validates a raw kind string.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindLike, KindDislike, KindComment:
		return k, nil
	default:
		return "", WrapKind("model.parse_kind", ErrValidation, fmt.Errorf("unknown kind %q", s))
	}
}

// IsReaction reports whether k is a like or a dislike.
func (k Kind) IsReaction() bool { return k == KindLike || k == KindDislike }

// ReactionState is a user's standing on a target. A user holds a like or a
// dislike, never both.
type ReactionState int

const (
	StateNone ReactionState = iota
	StateLiked
	StateDisliked
)

func (s ReactionState) String() string {
	switch s {
	case StateLiked:
		return "liked"
	case StateDisliked:
		return "disliked"
	default:
		return "none"
	}
}

// MarshalText renders the state as its name in JSON payloads.
func (s ReactionState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// StateFor maps a reaction kind to the state it produces.
func StateFor(k Kind) ReactionState {
	switch k {
	case KindLike:
		return StateLiked
	case KindDislike:
		return StateDisliked
	default:
		return StateNone
	}
}

// Polarity returns the reaction kind held in state s, or "" for none.
func (s ReactionState) Polarity() Kind {
	switch s {
	case StateLiked:
		return KindLike
	case StateDisliked:
		return KindDislike
	default:
		return ""
	}
}

// Interaction is one feedback act on a target.
type Interaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"` // empty when anonymous
	TargetID  string    `json:"targetId"`
	Kind      Kind      `json:"kind"`
	Text      string    `json:"text,omitempty"`
	Anonymous bool      `json:"anonymous"`
	CreatedAt time.Time `json:"createdAt"`
}

// Counters is the denormalized feedback tally for a target.
type Counters struct {
	TargetID     string `json:"targetId"`
	Likes        int    `json:"likes"`
	Dislikes     int    `json:"dislikes"`
	CommentCount int    `json:"commentCount"`
}

// FeedbackResult is returned by every feedback mutation.
type FeedbackResult struct {
	Likes        int           `json:"likes"`
	Dislikes     int           `json:"dislikes"`
	CommentCount int           `json:"commentCount"`
	UserState    ReactionState `json:"userState"`
	Comment      *Interaction  `json:"comment,omitempty"`
}

// Page selects a window of a listing. Page is 1-based.
type Page struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Summary is the read view of a target's feedback.
type Summary struct {
	Counters
	UserState ReactionState `json:"userState"`
	Comments  []Interaction `json:"comments"`
	Page      int           `json:"page"`
	Limit     int           `json:"limit"`
}

// ReconcileReport lists targets whose stored counters were repaired.
type ReconcileReport struct {
	Checked int      `json:"checked"`
	Drifted []string `json:"drifted"`
}
