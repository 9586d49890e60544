// Package importer loads match files, one per category, subcategory and
// year, into the paper catalog and result log.
//
// File layout:
//
//	matches:
//	  - id: vision-2024-1
//	    title: Vision Paper 1 (2024)
//	    match_details:
//	      - {date: 2024-03-12, result: W, opponent: Vision Opponent 3, rating: 1800, venue: Venue 1 2024}
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/papermatch/internal/domain/model"
	"github.com/okian/papermatch/pkg/logger"
)

// Sink receives imported papers and their results.
type Sink interface {
	AddTarget(ctx context.Context, t model.Target) error
	ImportResults(ctx context.Context, paperID, source string, results []model.MatchResult) (int, error)
}

// File is a decoded match file.
type File struct {
	Matches []Paper `yaml:"matches"`
}

// Paper is one paper and its result history.
type Paper struct {
	ID      string   `yaml:"id"`
	Title   string   `yaml:"title"`
	Details []Detail `yaml:"match_details"`
}

// Detail is one result from the paper's perspective.
type Detail struct {
	Date     string `yaml:"date"`
	Result   string `yaml:"result"`
	Opponent string `yaml:"opponent"`
	Rating   int    `yaml:"rating"`
	Venue    string `yaml:"venue"`
}

// Scope places every paper of a file in the catalog.
type Scope struct {
	Category    string
	Subcategory string
	Year        int
}

// Source names the scope for result deduplication.
func (s Scope) Source() string {
	return fmt.Sprintf("%s/%s/%d", s.Category, s.Subcategory, s.Year)
}

// Report summarizes an import.
type Report struct {
	Papers   int `json:"papers"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// Option applies a configuration option to the Importer.
type Option func(*Importer)

// WithLogger sets the importer's logger.
func WithLogger(l logger.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.log = l
		}
	}
}

// Importer writes decoded match files to a Sink.
type Importer struct {
	sink Sink
	log  logger.Logger
}

// New creates an Importer.
func New(sink Sink, opts ...Option) *Importer {
	im := &Importer{sink: sink, log: logger.Nop()}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Parse decodes a match file.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return f, nil
}

// ImportFile reads the match file at path.
func (im *Importer) ImportFile(ctx context.Context, path string, scope Scope) (Report, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	defer fh.Close()
	return im.Import(ctx, fh, scope)
}

// Import registers every paper under scope and appends its results. The
// whole file is validated before anything is written, but each paper is
// committed on its own: a sink failure leaves the papers before it in place
// and the returned Report counts them. Re-importing the same file inserts
// only what is missing, so a failed import is resumed by running it again.
func (im *Importer) Import(ctx context.Context, r io.Reader, scope Scope) (Report, error) {
	if strings.TrimSpace(scope.Category) == "" {
		return Report{}, fmt.Errorf("%w: category is required", ErrInvalidFile)
	}
	f, err := Parse(r)
	if err != nil {
		return Report{}, err
	}

	papers := make([]model.Target, 0, len(f.Matches))
	results := make([][]model.MatchResult, 0, len(f.Matches))
	seen := make(map[string]struct{}, len(f.Matches))
	for i, p := range f.Matches {
		if strings.TrimSpace(p.ID) == "" {
			return Report{}, fmt.Errorf("%w: entry %d has no id", ErrInvalidFile, i)
		}
		if _, dup := seen[p.ID]; dup {
			return Report{}, fmt.Errorf("%w: duplicate id %q", ErrInvalidFile, p.ID)
		}
		seen[p.ID] = struct{}{}

		rs, err := convert(p)
		if err != nil {
			return Report{}, err
		}
		papers = append(papers, model.Target{
			ID:          p.ID,
			Kind:        model.TargetPaper,
			Category:    scope.Category,
			Subcategory: scope.Subcategory,
			Year:        scope.Year,
			Title:       p.Title,
		})
		results = append(results, rs)
	}

	var rep Report
	source := scope.Source()
	for i, t := range papers {
		if err := im.sink.AddTarget(ctx, t); err != nil {
			return rep, fmt.Errorf("paper %q: %w", t.ID, err)
		}
		n, err := im.sink.ImportResults(ctx, t.ID, source, results[i])
		if err != nil {
			return rep, fmt.Errorf("paper %q: %w", t.ID, err)
		}
		rep.Papers++
		rep.Inserted += n
		rep.Skipped += len(results[i]) - n
	}

	im.log.Info(ctx, "match file imported",
		logger.String("source", source),
		logger.Int("papers", rep.Papers),
		logger.Int("inserted", rep.Inserted),
		logger.Int("skipped", rep.Skipped))
	return rep, nil
}

func convert(p Paper) ([]model.MatchResult, error) {
	out := make([]model.MatchResult, 0, len(p.Details))
	for j, d := range p.Details {
		date, err := parseDate(d.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %s detail %d: %w", ErrInvalidFile, p.ID, j, err)
		}
		outcome := model.Outcome(strings.ToUpper(strings.TrimSpace(d.Result)))
		if !outcome.Valid() {
			return nil, fmt.Errorf("%w: %s detail %d: result %q is not W, D or L", ErrInvalidFile, p.ID, j, d.Result)
		}
		if d.Rating < 0 {
			return nil, fmt.Errorf("%w: %s detail %d: negative rating", ErrInvalidFile, p.ID, j)
		}
		out = append(out, model.MatchResult{
			Date:             date,
			OpponentID:       d.Opponent,
			Result:           outcome,
			RatingOfOpponent: d.Rating,
			Venue:            d.Venue,
		})
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
