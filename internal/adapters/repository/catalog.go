package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okian/papermatch/internal/domain/model"
)

// AddTarget registers a catalog entry, updating its descriptive fields when
// it already exists. The kind of an existing target never changes.
func (s *Store) AddTarget(ctx context.Context, t model.Target) (err error) {
	const op = "store.add_target"
	defer s.observe(ctx, op, time.Now(), &err)

	if t.ID == "" {
		return model.WrapKind(op, model.ErrValidation, errors.New("target id is required"))
	}
	if t.Kind != model.TargetMatch && t.Kind != model.TargetPaper {
		return model.WrapKind(op, model.ErrValidation, fmt.Errorf("unknown target kind %q", t.Kind))
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.addTargetTx(ctx, tx, op, t)
	})
}

func (s *Store) addTargetTx(ctx context.Context, tx *sql.Tx, op string, t model.Target) error {
	res, err := tx.ExecContext(ctx, `
INSERT INTO targets (id, kind, category, subcategory, year, title, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    category = excluded.category,
    subcategory = excluded.subcategory,
    year = excluded.year,
    title = excluded.title
WHERE targets.kind = excluded.kind`,
		t.ID, string(t.Kind), t.Category, t.Subcategory, t.Year, t.Title, s.now().UnixNano())
	if err != nil {
		return classify(op, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Wrap(op, err)
	} else if n == 0 {
		return model.WrapKind(op, model.ErrConflict, fmt.Errorf("target %q exists with another kind", t.ID))
	}
	return nil
}

// Target returns a catalog entry or an error of kind model.ErrNotFound.
func (s *Store) Target(ctx context.Context, id string) (t model.Target, err error) {
	const op = "store.target"
	defer s.observe(ctx, op, time.Now(), &err)

	var kind string
	err = s.db.QueryRowContext(ctx,
		`SELECT id, kind, category, subcategory, year, title FROM targets WHERE id = ?`, id).
		Scan(&t.ID, &kind, &t.Category, &t.Subcategory, &t.Year, &t.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Target{}, model.WrapKind(op, model.ErrNotFound, fmt.Errorf("%w: %q", ErrTargetNotFound, id))
	}
	if err != nil {
		return model.Target{}, model.Wrap(op, err)
	}
	t.Kind = model.TargetKind(kind)
	return t, nil
}

// ListTargets returns targets of one kind in scope, ordered by id. An empty
// subcategory matches every subcategory and year 0 every year.
func (s *Store) ListTargets(ctx context.Context, kind model.TargetKind, scope model.Scope) (out []model.Target, err error) {
	const op = "store.list_targets"
	defer s.observe(ctx, op, time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `
SELECT id, kind, category, subcategory, year, title
FROM targets
WHERE kind = ? AND category = ? AND (? = '' OR subcategory = ?) AND (? = 0 OR year = ?)
ORDER BY id`, string(kind), scope.Category, scope.Subcategory, scope.Subcategory, scope.Year, scope.Year)
	if err != nil {
		return nil, model.Wrap(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t     model.Target
			kindS string
		)
		if err := rows.Scan(&t.ID, &kindS, &t.Category, &t.Subcategory, &t.Year, &t.Title); err != nil {
			return nil, model.Wrap(op, err)
		}
		t.Kind = model.TargetKind(kindS)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Wrap(op, err)
	}
	return out, nil
}
