package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/okian/papermatch/internal/domain/model"
)

// ensureUser creates the user row on first feedback.
func (s *Store) ensureUser(ctx context.Context, tx *sql.Tx, userID string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, created_at) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`,
		userID, s.now().UnixNano())
	return err
}

// DeleteUser removes a user. Their interactions go with them through the
// foreign key cascade and the affected targets' counters are recomputed in
// the same transaction.
func (s *Store) DeleteUser(ctx context.Context, userID string) (err error) {
	const op = "store.delete_user"
	defer s.observe(ctx, op, time.Now(), &err)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		targets, err := userTargets(ctx, tx, userID)
		if err != nil {
			return model.Wrap(op, err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
		if err != nil {
			return model.Wrap(op, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return model.Wrap(op, err)
		} else if n == 0 {
			return model.WrapKind(op, model.ErrNotFound, ErrUserNotFound)
		}

		for _, id := range targets {
			if _, err := s.recompute(ctx, tx, id); err != nil {
				return model.Wrap(op, err)
			}
		}
		return nil
	})
}

func userTargets(ctx context.Context, tx *sql.Tx, userID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT target_id FROM interactions WHERE user_id = ? ORDER BY target_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
