package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okian/papermatch/internal/domain/model"
)

const insertInteractionSQL = `
INSERT INTO interactions (id, user_id, target_id, kind, text, is_anonymous, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

// UpsertLike inserts a like. It fails with model.ErrAlreadyReacted when the
// user already holds a like or a dislike on the target.
func (s *Store) UpsertLike(ctx context.Context, userID, targetID string) (model.Counters, error) {
	return s.insertReaction(ctx, "store.upsert_like", userID, targetID, model.KindLike)
}

// UpsertDislike inserts a dislike. See UpsertLike.
func (s *Store) UpsertDislike(ctx context.Context, userID, targetID string) (model.Counters, error) {
	return s.insertReaction(ctx, "store.upsert_dislike", userID, targetID, model.KindDislike)
}

func (s *Store) insertReaction(ctx context.Context, op, userID, targetID string, kind model.Kind) (c model.Counters, err error) {
	defer s.observe(ctx, op, time.Now(), &err)

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.ensureUser(ctx, tx, userID); err != nil {
			return model.Wrap(op, err)
		}
		if err := s.insertReactionTx(ctx, tx, op, userID, targetID, kind); err != nil {
			return err
		}
		var err error
		c, err = s.recompute(ctx, tx, targetID)
		return model.Wrap(op, err)
	})
	if err != nil {
		return model.Counters{}, err
	}
	return c, nil
}

func (s *Store) insertReactionTx(ctx context.Context, tx *sql.Tx, op, userID, targetID string, kind model.Kind) error {
	_, err := tx.ExecContext(ctx, insertInteractionSQL,
		s.newID(), userID, targetID, string(kind), nil, false, s.now().UnixNano())
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return model.WrapKind(op, model.ErrAlreadyReacted, err)
	}
	return classify(op, err)
}

// RemoveReaction deletes the user's reaction of the given polarity. It fails
// with model.ErrNoReaction when that reaction is not held.
func (s *Store) RemoveReaction(ctx context.Context, userID, targetID string, polarity model.Kind) (c model.Counters, err error) {
	const op = "store.remove_reaction"
	defer s.observe(ctx, op, time.Now(), &err)

	if !polarity.IsReaction() {
		return model.Counters{}, model.WrapKind(op, model.ErrValidation, fmt.Errorf("not a reaction: %q", polarity))
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := deleteReaction(ctx, tx, op, userID, targetID, polarity); err != nil {
			return err
		}
		var err error
		c, err = s.recompute(ctx, tx, targetID)
		return model.Wrap(op, err)
	})
	if err != nil {
		return model.Counters{}, err
	}
	return c, nil
}

// SwitchReaction replaces the opposite polarity with to in one transaction.
// It fails with model.ErrNoReaction when the opposite polarity is not held.
func (s *Store) SwitchReaction(ctx context.Context, userID, targetID string, to model.Kind) (c model.Counters, err error) {
	const op = "store.switch_reaction"
	defer s.observe(ctx, op, time.Now(), &err)

	var from model.Kind
	switch to {
	case model.KindLike:
		from = model.KindDislike
	case model.KindDislike:
		from = model.KindLike
	default:
		return model.Counters{}, model.WrapKind(op, model.ErrValidation, fmt.Errorf("not a reaction: %q", to))
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := deleteReaction(ctx, tx, op, userID, targetID, from); err != nil {
			return err
		}
		if err := s.insertReactionTx(ctx, tx, op, userID, targetID, to); err != nil {
			return err
		}
		var err error
		c, err = s.recompute(ctx, tx, targetID)
		return model.Wrap(op, err)
	})
	if err != nil {
		return model.Counters{}, err
	}
	return c, nil
}

func deleteReaction(ctx context.Context, tx *sql.Tx, op, userID, targetID string, kind model.Kind) error {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM interactions WHERE user_id = ? AND target_id = ? AND kind = ?`,
		userID, targetID, string(kind))
	if err != nil {
		return model.Wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Wrap(op, err)
	}
	if n == 0 {
		return model.NewKind(op, model.ErrNoReaction)
	}
	return nil
}

// AddComment appends a comment. An empty userID stores an anonymous comment.
func (s *Store) AddComment(ctx context.Context, userID, targetID, text string, anonymous bool) (it model.Interaction, c model.Counters, err error) {
	const op = "store.add_comment"
	defer s.observe(ctx, op, time.Now(), &err)

	if userID == "" {
		anonymous = true
	}
	it = model.Interaction{
		ID:        s.newID(),
		UserID:    userID,
		TargetID:  targetID,
		Kind:      model.KindComment,
		Text:      text,
		Anonymous: anonymous,
		CreatedAt: s.now().UTC(),
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if userID != "" {
			if err := s.ensureUser(ctx, tx, userID); err != nil {
				return model.Wrap(op, err)
			}
		}
		if _, err := tx.ExecContext(ctx, insertInteractionSQL,
			it.ID, nullString(userID), targetID, string(model.KindComment), text, anonymous,
			it.CreatedAt.UnixNano()); err != nil {
			return classify(op, err)
		}
		var err error
		c, err = s.recompute(ctx, tx, targetID)
		return model.Wrap(op, err)
	})
	if err != nil {
		return model.Interaction{}, model.Counters{}, err
	}
	return it, c, nil
}

// ListInteractions pages through a target's interactions newest first. An
// empty kind lists every kind; a non-positive limit lists everything.
func (s *Store) ListInteractions(ctx context.Context, targetID string, kind model.Kind, page model.Page) (out []model.Interaction, err error) {
	const op = "store.list_interactions"
	defer s.observe(ctx, op, time.Now(), &err)

	limit := page.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, target_id, kind, text, is_anonymous, created_at
FROM interactions
WHERE target_id = ? AND (? = '' OR kind = ?)
ORDER BY created_at DESC, rowid DESC
LIMIT ? OFFSET ?`,
		targetID, string(kind), string(kind), limit, page.Offset())
	if err != nil {
		return nil, model.Wrap(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it        model.Interaction
			userID    sql.NullString
			text      sql.NullString
			kindCol   string
			createdAt int64
		)
		if err := rows.Scan(&it.ID, &userID, &it.TargetID, &kindCol, &text, &it.Anonymous, &createdAt); err != nil {
			return nil, model.Wrap(op, err)
		}
		it.UserID = userID.String
		it.Text = text.String
		it.Kind = model.Kind(kindCol)
		it.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Wrap(op, err)
	}
	return out, nil
}

// ReactionState returns the user's current reaction on the target.
func (s *Store) ReactionState(ctx context.Context, userID, targetID string) (st model.ReactionState, err error) {
	const op = "store.reaction_state"
	defer s.observe(ctx, op, time.Now(), &err)

	var kind string
	err = s.db.QueryRowContext(ctx, `
SELECT kind FROM interactions
WHERE user_id = ? AND target_id = ? AND kind IN ('like', 'dislike')
LIMIT 1`, userID, targetID).Scan(&kind)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StateNone, nil
	}
	if err != nil {
		return model.StateNone, model.Wrap(op, err)
	}
	return model.StateFor(model.Kind(kind)), nil
}
