package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mindprint/internal/model"
	"mindprint/internal/registry"
	"mindprint/internal/session"
)

// ErrUnauthorized means an interaction came from someone other than
// the session owner. Rejected with no state change.
var ErrUnauthorized = errors.New("interaction not from session owner")

// QuizService drives a quiz from start to completion: it validates
// incoming answers, steps the session store, and decides between next
// question and completed. It owns the timeout policy.
type QuizService struct {
	store       *session.Store
	reg         *registry.Registry
	resultSvc   *ResultService
	broadcaster Broadcaster
	ttl         time.Duration
	logger      *zap.Logger
}

// NewQuizService creates a new quiz service.
func NewQuizService(
	store *session.Store,
	reg *registry.Registry,
	resultSvc *ResultService,
	ttl time.Duration,
	logger *zap.Logger,
) *QuizService {
	return &QuizService{
		store:     store,
		reg:       reg,
		resultSvc: resultSvc,
		ttl:       ttl,
		logger:    logger,
	}
}

// SetBroadcaster sets the broadcaster for push notifications.
func (s *QuizService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Start begins a quiz for the user and returns the first question. A
// user already mid-quiz is rejected with session.ErrDuplicateSession
// and the existing session is left untouched.
func (s *QuizService) Start(ctx context.Context, userID, username string, variant model.Variant) (*model.QuestionPayload, error) {
	if !variant.Valid() {
		return nil, fmt.Errorf("unknown variant %q", variant)
	}

	questions := s.reg.Questions(variant)
	snap, err := s.store.Create(userID, username, variant, questions)
	if err != nil {
		return nil, err
	}

	s.logger.Info("quiz started",
		zap.String("userId", userID),
		zap.String("username", username),
		zap.String("variant", string(variant)),
		zap.Int("questions", len(questions)))

	payload := questionPayload(snap)
	payload.Started = true
	return payload, nil
}

// SubmitAnswer processes one answer. Only the quiz initiator may
// answer; a redelivered or double-triggered answer carries a
// superseded token and is rejected by the store's atomic advance, so
// no answer is ever double-counted. Exactly one of the two return
// payloads is non-nil on success.
//
// On completion the session is not removed here: the result resolver
// removes it after persistence has been attempted.
func (s *QuizService) SubmitAnswer(ctx context.Context, userID, requesterID, token string, optionIndex int) (*model.QuestionPayload, *model.CompletedPayload, error) {
	if requesterID != userID {
		return nil, nil, ErrUnauthorized
	}

	snap, complete, err := s.store.Advance(userID, token, optionIndex)
	if err != nil {
		if errors.Is(err, session.ErrInvalidOption) {
			// Out-of-range indexes point at a client bug.
			s.logger.Warn("invalid option index",
				zap.String("userId", userID),
				zap.Int("optionIndex", optionIndex))
		}
		return nil, nil, err
	}

	if !complete {
		return questionPayload(snap), nil, nil
	}

	typeCode, profile, err := s.resultSvc.Resolve(snap)
	if err != nil {
		// Config-integrity failure. Fatal for this quiz only; drop
		// the session so the user can restart.
		s.store.Remove(userID)
		return nil, nil, err
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in finalize", zap.Any("panic", r))
			}
		}()
		s.resultSvc.Finalize(snap, typeCode, profile)
	}()

	return nil, &model.CompletedPayload{
		TypeCode: typeCode,
		Profile:  profile,
		Scores:   snap.Scores,
		Variant:  snap.Variant,
	}, nil
}

// Current re-renders the question the user's session is waiting on.
func (s *QuizService) Current(ctx context.Context, userID string) (*model.QuestionPayload, error) {
	snap, err := s.store.Get(userID)
	if err != nil {
		return nil, err
	}
	if snap.Completed() {
		return nil, session.ErrSessionExpired
	}
	return questionPayload(snap), nil
}

// Abandon cancels the user's quiz. Idempotent.
func (s *QuizService) Abandon(ctx context.Context, userID string) {
	s.store.Remove(userID)
	s.logger.Info("quiz abandoned", zap.String("userId", userID))
}

// RunSweeper evicts idle sessions on a fixed interval until ctx is
// cancelled. Evicted users get an expiry notice if they are still
// connected.
func (s *QuizService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted := s.store.SweepExpired(s.ttl)
			for _, userID := range evicted {
				s.logger.Info("session expired", zap.String("userId", userID))
				if s.broadcaster != nil {
					s.broadcaster.SendToUser(userID, "session_expired", map[string]string{
						"message": "Your quiz timed out. Please restart.",
					})
				}
			}
		}
	}
}

func questionPayload(snap model.Session) *model.QuestionPayload {
	q := snap.Current()
	options := make([]string, len(q.Options))
	for i, opt := range q.Options {
		options[i] = opt.Text
	}
	return &model.QuestionPayload{
		Step:    snap.Step,
		Total:   len(snap.Questions),
		Text:    q.Text,
		Options: options,
		Token:   snap.Token,
		Variant: snap.Variant,
	}
}
