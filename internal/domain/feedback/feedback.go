// Package feedback applies like, dislike and comment requests against the
// interaction store.
//
// Reactions follow a three-state machine per user and target:
//
//	none     + like    -> liked
//	liked    + like    -> none
//	disliked + like    -> liked   (dislike removed in the same transaction)
//
// and symmetrically for dislike. The store's unique index is the only
// serialization point: an insert is always attempted first and a conflict is
// translated into a toggle-off or a switch.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/okian/papermatch/internal/domain/model"
	"github.com/okian/papermatch/pkg/logger"
	"github.com/okian/papermatch/pkg/metrics"
)

// Transition labels for metrics and logs.
const (
	transitionOn      = "on"
	transitionOff     = "off"
	transitionSwitch  = "switch"
	transitionComment = "comment"
)

// Service is the feedback toggle service. Safe for concurrent use.
type Service struct {
	store            Store
	anonymous        bool
	maxCommentLength int
	defaultPageLimit int
	maxPageLimit     int
	log              logger.Logger
}

// NewService creates a toggle service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:            store,
		maxCommentLength: DefaultMaxCommentLength,
		defaultPageLimit: DefaultPageLimit,
		maxPageLimit:     DefaultMaxPageLimit,
		log:              logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply records one feedback act and returns the refreshed counters with the
// caller's resulting state. userID is empty for unauthenticated callers.
func (s *Service) Apply(ctx context.Context, userID, targetID string, kind model.Kind, text string) (model.FeedbackResult, error) {
	const op = "feedback.apply"

	if strings.TrimSpace(targetID) == "" {
		return model.FeedbackResult{}, model.WrapKind(op, model.ErrValidation, errors.New("target id is required"))
	}
	if kind != model.KindComment && !kind.IsReaction() {
		return model.FeedbackResult{}, model.WrapKind(op, model.ErrValidation, fmt.Errorf("unknown kind %q", kind))
	}
	if userID == "" && !(s.anonymous && kind == model.KindComment) {
		return model.FeedbackResult{}, model.NewKind(op, model.ErrAuth)
	}

	var comment string
	if kind == model.KindComment {
		var err error
		if comment, err = s.validateComment(text); err != nil {
			return model.FeedbackResult{}, model.WrapKind(op, model.ErrValidation, err)
		}
	}

	if _, err := s.store.Target(ctx, targetID); err != nil {
		return model.FeedbackResult{}, model.Wrap(op, err)
	}

	if kind == model.KindComment {
		return s.comment(ctx, userID, targetID, comment)
	}
	return s.toggle(ctx, userID, targetID, kind)
}

func (s *Service) validateComment(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", errors.New("comment text must not be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n > s.maxCommentLength {
		return "", fmt.Errorf("comment is %d characters, limit is %d", n, s.maxCommentLength)
	}
	return trimmed, nil
}

func (s *Service) comment(ctx context.Context, userID, targetID, text string) (model.FeedbackResult, error) {
	const op = "feedback.comment"

	anonymous := userID == ""
	it, counters, err := s.store.AddComment(ctx, userID, targetID, text, anonymous)
	if err != nil {
		s.log.Error(ctx, "add comment failed", logger.String("target", targetID), logger.Error(err))
		return model.FeedbackResult{}, model.Wrap(op, err)
	}

	state := model.StateNone
	if !anonymous {
		if state, err = s.store.ReactionState(ctx, userID, targetID); err != nil {
			return model.FeedbackResult{}, model.Wrap(op, err)
		}
	}

	metrics.RecordFeedbackApplied(string(model.KindComment), transitionComment)
	s.log.Debug(ctx, "comment added",
		logger.String("target", targetID),
		logger.Bool("anonymous", anonymous),
		logger.Int("comments", counters.CommentCount))

	res := result(counters, state)
	res.Comment = &it
	return res, nil
}

// toggle attempts the insert first. When the store reports an existing
// reaction, the current state decides between toggle-off and switch. A
// translation that loses a race to a concurrent request is retried once.
func (s *Service) toggle(ctx context.Context, userID, targetID string, kind model.Kind) (model.FeedbackResult, error) {
	const op = "feedback.toggle"

	counters, err := s.insert(ctx, userID, targetID, kind)
	if err == nil {
		s.applied(ctx, targetID, kind, transitionOn)
		return result(counters, model.StateFor(kind)), nil
	}
	if !errors.Is(err, model.ErrAlreadyReacted) {
		return model.FeedbackResult{}, model.Wrap(op, err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		res, transition, err := s.translate(ctx, userID, targetID, kind)
		if err == nil {
			s.applied(ctx, targetID, kind, transition)
			return res, nil
		}
		if !errors.Is(err, model.ErrNoReaction) && !errors.Is(err, model.ErrAlreadyReacted) {
			return model.FeedbackResult{}, model.Wrap(op, err)
		}
		if attempt == 0 {
			metrics.RecordFeedbackRetry()
			s.log.Debug(ctx, "toggle lost a race, retrying",
				logger.String("target", targetID), logger.String("kind", string(kind)))
		}
	}

	metrics.RecordFeedbackConflict()
	s.log.Warn(ctx, "toggle conflict unresolved",
		logger.String("target", targetID), logger.String("kind", string(kind)))
	return model.FeedbackResult{}, model.NewKind(op, model.ErrConflict)
}

// translate reads the current state and resolves a conflicting insert.
func (s *Service) translate(ctx context.Context, userID, targetID string, kind model.Kind) (model.FeedbackResult, string, error) {
	state, err := s.store.ReactionState(ctx, userID, targetID)
	if err != nil {
		return model.FeedbackResult{}, "", err
	}

	switch state.Polarity() {
	case kind:
		counters, err := s.store.RemoveReaction(ctx, userID, targetID, kind)
		if err != nil {
			return model.FeedbackResult{}, "", err
		}
		return result(counters, model.StateNone), transitionOff, nil
	case "":
		// The reaction vanished between the insert and the read.
		counters, err := s.insert(ctx, userID, targetID, kind)
		if err != nil {
			return model.FeedbackResult{}, "", err
		}
		return result(counters, model.StateFor(kind)), transitionOn, nil
	default:
		counters, err := s.store.SwitchReaction(ctx, userID, targetID, kind)
		if err != nil {
			return model.FeedbackResult{}, "", err
		}
		return result(counters, model.StateFor(kind)), transitionSwitch, nil
	}
}

func (s *Service) insert(ctx context.Context, userID, targetID string, kind model.Kind) (model.Counters, error) {
	if kind == model.KindLike {
		return s.store.UpsertLike(ctx, userID, targetID)
	}
	return s.store.UpsertDislike(ctx, userID, targetID)
}

func (s *Service) applied(ctx context.Context, targetID string, kind model.Kind, transition string) {
	metrics.RecordFeedbackApplied(string(kind), transition)
	s.log.Debug(ctx, "reaction applied",
		logger.String("target", targetID),
		logger.String("kind", string(kind)),
		logger.String("transition", transition))
}

// Summary returns a target's counters, the caller's state and one page of
// comments, newest first. userID may be empty only when anonymous feedback
// is enabled.
func (s *Service) Summary(ctx context.Context, userID, targetID string, page model.Page) (model.Summary, error) {
	const op = "feedback.summary"

	if userID == "" && !s.anonymous {
		return model.Summary{}, model.NewKind(op, model.ErrAuth)
	}

	if page.Page == 0 {
		page.Page = 1
	}
	if page.Limit == 0 {
		page.Limit = s.defaultPageLimit
	}
	if page.Page < 1 || page.Limit < 1 || page.Limit > s.maxPageLimit {
		return model.Summary{}, model.WrapKind(op, model.ErrValidation,
			fmt.Errorf("page must be >= 1 and limit within 1..%d", s.maxPageLimit))
	}

	if _, err := s.store.Target(ctx, targetID); err != nil {
		return model.Summary{}, model.Wrap(op, err)
	}

	counters, err := s.store.Counters(ctx, targetID)
	if err != nil {
		return model.Summary{}, model.Wrap(op, err)
	}

	state := model.StateNone
	if userID != "" {
		if state, err = s.store.ReactionState(ctx, userID, targetID); err != nil {
			return model.Summary{}, model.Wrap(op, err)
		}
	}

	comments, err := s.store.ListInteractions(ctx, targetID, model.KindComment, page)
	if err != nil {
		return model.Summary{}, model.Wrap(op, err)
	}
	if comments == nil {
		comments = []model.Interaction{}
	}

	return model.Summary{
		Counters:  counters,
		UserState: state,
		Comments:  comments,
		Page:      page.Page,
		Limit:     page.Limit,
	}, nil
}

// Reconcile recomputes every target's counters from raw interactions and
// reports the targets whose stored counters had drifted.
func (s *Service) Reconcile(ctx context.Context) (model.ReconcileReport, error) {
	const op = "feedback.reconcile"

	report, err := s.store.ReconcileCounters(ctx)
	if err != nil {
		return model.ReconcileReport{}, model.Wrap(op, err)
	}
	if n := len(report.Drifted); n > 0 {
		metrics.RecordReconcileDrift(n)
		s.log.Warn(ctx, "feedback counters drifted",
			logger.Int("checked", report.Checked),
			logger.Int("drifted", n),
			logger.Any("targets", report.Drifted))
	}
	return report, nil
}

func result(c model.Counters, state model.ReactionState) model.FeedbackResult {
	return model.FeedbackResult{
		Likes:        c.Likes,
		Dislikes:     c.Dislikes,
		CommentCount: c.CommentCount,
		UserState:    state,
	}
}
