package feedback

import (
	"context"

	"github.com/okian/papermatch/internal/domain/model"
)

// Store is the interaction store the toggle service runs against. Every
// mutation returns counters recomputed from raw rows in the same transaction.
type Store interface {
	// Target returns the catalog entry or an error of kind model.ErrNotFound.
	Target(ctx context.Context, id string) (model.Target, error)

	// UpsertLike and UpsertDislike insert a reaction and fail with
	// model.ErrAlreadyReacted when the user already holds either polarity.
	UpsertLike(ctx context.Context, userID, targetID string) (model.Counters, error)
	UpsertDislike(ctx context.Context, userID, targetID string) (model.Counters, error)

	// RemoveReaction deletes the user's reaction of the given polarity and
	// fails with model.ErrNoReaction when there is none.
	RemoveReaction(ctx context.Context, userID, targetID string, polarity model.Kind) (model.Counters, error)

	// SwitchReaction replaces the opposite polarity with to atomically and
	// fails with model.ErrNoReaction when the opposite is not held.
	SwitchReaction(ctx context.Context, userID, targetID string, to model.Kind) (model.Counters, error)

	// AddComment appends a comment. userID is empty for anonymous comments.
	AddComment(ctx context.Context, userID, targetID, text string, anonymous bool) (model.Interaction, model.Counters, error)

	// ListInteractions pages through a target's interactions newest first.
	// An empty kind lists every kind.
	ListInteractions(ctx context.Context, targetID string, kind model.Kind, page model.Page) ([]model.Interaction, error)

	ReactionState(ctx context.Context, userID, targetID string) (model.ReactionState, error)
	Counters(ctx context.Context, targetID string) (model.Counters, error)
	ReconcileCounters(ctx context.Context) (model.ReconcileReport, error)
}
