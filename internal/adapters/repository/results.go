package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okian/papermatch/internal/domain/model"
)

const dateLayout = time.RFC3339

const insertResultSQL = `
INSERT INTO match_results (paper_id, match_id, date, opponent_id, result, opponent_rating, venue)
VALUES (?, ?, ?, ?, ?, ?, ?)`

// RecordMatch registers the match as a feedback target and writes one result
// per paper. Both papers must already be in the catalog.
func (s *Store) RecordMatch(ctx context.Context, target model.Target, m model.Match) (err error) {
	const op = "store.record_match"
	defer s.observe(ctx, op, time.Now(), &err)

	a, b := m.Results()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM targets WHERE id = ?`, m.ID).Scan(&exists)
		if err != nil {
			return model.Wrap(op, err)
		}
		if exists > 0 {
			return model.WrapKind(op, model.ErrConflict, fmt.Errorf("%w: %q", ErrMatchExists, m.ID))
		}
		if err := s.addTargetTx(ctx, tx, op, target); err != nil {
			return err
		}
		for _, r := range []struct {
			paper string
			res   model.MatchResult
		}{{m.PaperA, a}, {m.PaperB, b}} {
			if err := insertResult(ctx, tx, r.paper, m.ID, r.res); err != nil {
				return classify(op, err)
			}
		}
		return nil
	})
}

// ImportResults appends results for a paper, skipping ones already imported.
// Results are keyed by their position in the source file. It returns the
// number of rows inserted.
func (s *Store) ImportResults(ctx context.Context, paperID, source string, results []model.MatchResult) (inserted int, err error) {
	const op = "store.import_results"
	defer s.observe(ctx, op, time.Now(), &err)

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		for i, r := range results {
			matchID := fmt.Sprintf("%s#%d", source, i)
			res, err := tx.ExecContext(ctx, insertResultSQL+` ON CONFLICT (paper_id, match_id) DO NOTHING`,
				paperID, matchID, r.Date.UTC().Format(dateLayout), r.OpponentID, string(r.Result),
				r.RatingOfOpponent, r.Venue)
			if err != nil {
				return classify(op, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return model.Wrap(op, err)
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// Match reads back a recorded match from its catalog entry and the two
// results written for it. Paper A's result was written first.
func (s *Store) Match(ctx context.Context, id string) (rm model.RecordedMatch, err error) {
	const op = "store.match"
	defer s.observe(ctx, op, time.Now(), &err)

	t, err := s.Target(ctx, id)
	if err != nil {
		return model.RecordedMatch{}, err
	}
	if t.Kind != model.TargetMatch {
		return model.RecordedMatch{}, model.WrapKind(op, model.ErrNotFound, fmt.Errorf("%w: %q", ErrMatchNotFound, id))
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT paper_id, date, opponent_id, result, opponent_rating, venue
FROM match_results
WHERE match_id = ?
ORDER BY id`, id)
	if err != nil {
		return model.RecordedMatch{}, model.Wrap(op, err)
	}
	defer rows.Close()

	var (
		papers  []string
		results []model.MatchResult
	)
	for rows.Next() {
		var (
			paperID, date, result string
			r                     model.MatchResult
		)
		if err := rows.Scan(&paperID, &date, &r.OpponentID, &result, &r.RatingOfOpponent, &r.Venue); err != nil {
			return model.RecordedMatch{}, model.Wrap(op, err)
		}
		if r.Date, err = time.Parse(dateLayout, date); err != nil {
			return model.RecordedMatch{}, model.Wrap(op, errors.Join(ErrInvalidRecord, err))
		}
		r.Result = model.Outcome(result)
		papers = append(papers, paperID)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return model.RecordedMatch{}, model.Wrap(op, err)
	}
	if len(results) != 2 {
		return model.RecordedMatch{}, model.Wrap(op, fmt.Errorf("%w: match %q has %d results", ErrInvalidRecord, id, len(results)))
	}

	a, b := results[0], results[1]
	m := model.Match{
		ID:      id,
		PaperA:  papers[0],
		PaperB:  papers[1],
		RatingA: b.RatingOfOpponent,
		RatingB: a.RatingOfOpponent,
		Date:    a.Date,
		Venue:   a.Venue,
	}
	switch {
	case a.Result == model.OutcomeWin:
		m.Winner = m.PaperA
	case b.Result == model.OutcomeWin:
		m.Winner = m.PaperB
	}
	return model.RecordedMatch{
		Match:       m,
		Title:       t.Title,
		Category:    t.Category,
		Subcategory: t.Subcategory,
		Year:        t.Year,
	}, nil
}

func insertResult(ctx context.Context, tx *sql.Tx, paperID, matchID string, r model.MatchResult) error {
	_, err := tx.ExecContext(ctx, insertResultSQL,
		paperID, matchID, r.Date.UTC().Format(dateLayout), r.OpponentID, string(r.Result),
		r.RatingOfOpponent, r.Venue)
	return err
}

// Results returns a paper's results oldest first.
func (s *Store) Results(ctx context.Context, paperID string) (out []model.MatchResult, err error) {
	const op = "store.results"
	defer s.observe(ctx, op, time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `
SELECT paper_id, date, opponent_id, result, opponent_rating, venue
FROM match_results
WHERE paper_id = ?
ORDER BY date, id`, paperID)
	if err != nil {
		return nil, model.Wrap(op, err)
	}
	defer rows.Close()

	byPaper, err := scanResults(rows)
	if err != nil {
		return nil, model.Wrap(op, err)
	}
	return byPaper[paperID], nil
}

// ResultsByCategory returns the results of every paper in scope, keyed by
// paper id, each oldest first.
func (s *Store) ResultsByCategory(ctx context.Context, scope model.Scope) (out map[string][]model.MatchResult, err error) {
	const op = "store.results_by_category"
	defer s.observe(ctx, op, time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `
SELECT r.paper_id, r.date, r.opponent_id, r.result, r.opponent_rating, r.venue
FROM match_results r
JOIN targets t ON t.id = r.paper_id
WHERE t.kind = 'paper' AND t.category = ? AND (? = '' OR t.subcategory = ?) AND (? = 0 OR t.year = ?)
ORDER BY r.paper_id, r.date, r.id`, scope.Category, scope.Subcategory, scope.Subcategory, scope.Year, scope.Year)
	if err != nil {
		return nil, model.Wrap(op, err)
	}
	defer rows.Close()

	out, err = scanResults(rows)
	if err != nil {
		return nil, model.Wrap(op, err)
	}
	return out, nil
}

func scanResults(rows *sql.Rows) (map[string][]model.MatchResult, error) {
	out := make(map[string][]model.MatchResult)
	for rows.Next() {
		var (
			paperID, date, result string
			r                     model.MatchResult
		)
		if err := rows.Scan(&paperID, &date, &r.OpponentID, &result, &r.RatingOfOpponent, &r.Venue); err != nil {
			return nil, err
		}
		d, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, errors.Join(ErrInvalidRecord, err)
		}
		r.Date = d
		r.Result = model.Outcome(result)
		out[paperID] = append(out[paperID], r)
	}
	return out, rows.Err()
}
