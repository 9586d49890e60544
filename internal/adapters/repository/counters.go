package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/okian/papermatch/internal/domain/model"
)

const countInteractionsSQL = `
SELECT
    COALESCE(SUM(kind = 'like'), 0),
    COALESCE(SUM(kind = 'dislike'), 0),
    COALESCE(SUM(kind = 'comment'), 0)
FROM interactions
WHERE target_id = ?`

const upsertCountersSQL = `
INSERT INTO feedback_counters (target_id, likes, dislikes, comment_count, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (target_id) DO UPDATE SET
    likes = excluded.likes,
    dislikes = excluded.dislikes,
    comment_count = excluded.comment_count,
    updated_at = excluded.updated_at`

// recompute derives a target's counters from its raw interactions and
// stores them. It must run inside the mutation's transaction.
func (s *Store) recompute(ctx context.Context, tx *sql.Tx, targetID string) (model.Counters, error) {
	c := model.Counters{TargetID: targetID}
	if err := tx.QueryRowContext(ctx, countInteractionsSQL, targetID).
		Scan(&c.Likes, &c.Dislikes, &c.CommentCount); err != nil {
		return model.Counters{}, err
	}
	if _, err := tx.ExecContext(ctx, upsertCountersSQL,
		targetID, c.Likes, c.Dislikes, c.CommentCount, s.now().UnixNano()); err != nil {
		return model.Counters{}, err
	}
	return c, nil
}

// Counters returns the stored counters. A target with no feedback yet has
// zero counters.
func (s *Store) Counters(ctx context.Context, targetID string) (c model.Counters, err error) {
	const op = "store.counters"
	defer s.observe(ctx, op, time.Now(), &err)

	c.TargetID = targetID
	err = s.db.QueryRowContext(ctx,
		`SELECT likes, dislikes, comment_count FROM feedback_counters WHERE target_id = ?`, targetID).
		Scan(&c.Likes, &c.Dislikes, &c.CommentCount)
	if errors.Is(err, sql.ErrNoRows) {
		return c, nil
	}
	if err != nil {
		return model.Counters{}, model.Wrap(op, err)
	}
	return c, nil
}

type counterRow struct {
	stored, actual model.Counters
}

// ReconcileCounters recomputes every target's counters from raw
// interactions, repairs the ones that drifted and reports them.
func (s *Store) ReconcileCounters(ctx context.Context) (report model.ReconcileReport, err error) {
	const op = "store.reconcile_counters"
	defer s.observe(ctx, op, time.Now(), &err)

	report.Drifted = []string{}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := loadCounterRows(ctx, tx)
		if err != nil {
			return model.Wrap(op, err)
		}
		report.Checked = len(rows)
		for _, r := range rows {
			if r.stored == r.actual {
				continue
			}
			if _, err := s.recompute(ctx, tx, r.actual.TargetID); err != nil {
				return model.Wrap(op, err)
			}
			report.Drifted = append(report.Drifted, r.actual.TargetID)
		}
		return nil
	})
	if err != nil {
		return model.ReconcileReport{}, err
	}
	return report, nil
}

func loadCounterRows(ctx context.Context, tx *sql.Tx) ([]counterRow, error) {
	rows, err := tx.QueryContext(ctx, `
SELECT
    t.id,
    COALESCE(c.likes, 0), COALESCE(c.dislikes, 0), COALESCE(c.comment_count, 0),
    (SELECT COUNT(*) FROM interactions i WHERE i.target_id = t.id AND i.kind = 'like'),
    (SELECT COUNT(*) FROM interactions i WHERE i.target_id = t.id AND i.kind = 'dislike'),
    (SELECT COUNT(*) FROM interactions i WHERE i.target_id = t.id AND i.kind = 'comment')
FROM targets t
LEFT JOIN feedback_counters c ON c.target_id = t.id
ORDER BY t.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []counterRow
	for rows.Next() {
		var r counterRow
		if err := rows.Scan(&r.stored.TargetID,
			&r.stored.Likes, &r.stored.Dislikes, &r.stored.CommentCount,
			&r.actual.Likes, &r.actual.Dislikes, &r.actual.CommentCount); err != nil {
			return nil, err
		}
		r.actual.TargetID = r.stored.TargetID
		out = append(out, r)
	}
	return out, rows.Err()
}
