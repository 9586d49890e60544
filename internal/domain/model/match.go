package model

import "time"

// Outcome is a match result from the subject paper's perspective.
type Outcome string

const (
	OutcomeWin  Outcome = "W"
	OutcomeDraw Outcome = "D"
	OutcomeLoss Outcome = "L"
)

// Valid reports whether o is one of W, D, L.
func (o Outcome) Valid() bool {
	return o == OutcomeWin || o == OutcomeDraw || o == OutcomeLoss
}

// MatchResult is one recorded outcome for a paper. Immutable once stored.
type MatchResult struct {
	Date             time.Time `json:"date"`
	OpponentID       string    `json:"opponentId"`
	Result           Outcome   `json:"result"`
	RatingOfOpponent int       `json:"ratingOfOpponent"`
	Venue            string    `json:"venue"`
}

// Match is a pairwise comparison. An empty Winner is a draw.
type Match struct {
	ID      string    `json:"id"`
	PaperA  string    `json:"paperA"`
	PaperB  string    `json:"paperB"`
	Winner  string    `json:"winner,omitempty"`
	RatingA int       `json:"ratingA"`
	RatingB int       `json:"ratingB"`
	Date    time.Time `json:"date"`
	Venue   string    `json:"venue"`
}

// Results splits the match into one MatchResult per paper.
func (m Match) Results() (a, b MatchResult) {
	a = MatchResult{Date: m.Date, OpponentID: m.PaperB, RatingOfOpponent: m.RatingB, Venue: m.Venue}
	b = MatchResult{Date: m.Date, OpponentID: m.PaperA, RatingOfOpponent: m.RatingA, Venue: m.Venue}
	switch m.Winner {
	case m.PaperA:
		a.Result, b.Result = OutcomeWin, OutcomeLoss
	case m.PaperB:
		a.Result, b.Result = OutcomeLoss, OutcomeWin
	default:
		a.Result, b.Result = OutcomeDraw, OutcomeDraw
	}
	return a, b
}

// Trend is the direction of recent form.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// PaperStats is derived from a paper's result sequence.
type PaperStats struct {
	Wins       int     `json:"wins"`
	Draws      int     `json:"draws"`
	Losses     int     `json:"losses"`
	Points     int     `json:"points"`
	Matches    int     `json:"matches"`
	RatingDiff int     `json:"ratingDiff"`
	WinRate    float64 `json:"winRate"`
	Form       string  `json:"form"`
	Trend      Trend   `json:"trend"`
}

// Standing pairs a paper with its stats as input to ranking.
type Standing struct {
	ID    string
	Title string
	Stats PaperStats
}

// LeaderboardEntry is a ranked row. Not persisted.
type LeaderboardEntry struct {
	Rank  int    `json:"rank"`
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	PaperStats
}

// TargetKind distinguishes catalog entries.
type TargetKind string

const (
	TargetMatch TargetKind = "match"
	TargetPaper TargetKind = "paper"
)

// Target is a catalog entry that feedback can attach to.
type Target struct {
	ID          string     `json:"id"`
	Kind        TargetKind `json:"kind"`
	Category    string     `json:"category"`
	Subcategory string     `json:"subcategory"`
	Year        int        `json:"year,omitempty"`
	Title       string     `json:"title,omitempty"`
}

// Scope narrows a ranking to a category. An empty Subcategory covers the
// whole category and a zero Year covers every year.
type Scope struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Year        int    `json:"year,omitempty"`
}

// RecordedMatch is a stored match together with its catalog entry.
type RecordedMatch struct {
	Match
	Title       string `json:"title,omitempty"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Year        int    `json:"year,omitempty"`
}
