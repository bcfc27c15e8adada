package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"mindprint/internal/cache"
	"mindprint/internal/model"
	"mindprint/internal/registry"
	"mindprint/internal/repository"
	"mindprint/internal/scoring"
	"mindprint/internal/session"
)

// ErrUnknownType means a resolved code has no registered profile. The
// registry validates the full 16-code table at startup, so hitting
// this at runtime is a severe misconfiguration.
var ErrUnknownType = errors.New("no profile registered for type code")

const finalizeTimeout = 10 * time.Second

// ResultService computes the quiz outcome and hands it off to
// persistence. Persistence is best-effort auditing: the in-memory
// outcome is authoritative once computed.
type ResultService struct {
	reg        *registry.Registry
	resultRepo repository.ResultRepo
	stats      cache.StatsCache
	store      *session.Store
	logger     *zap.Logger
}

// NewResultService creates a new result service.
func NewResultService(
	reg *registry.Registry,
	resultRepo repository.ResultRepo,
	stats cache.StatsCache,
	store *session.Store,
	logger *zap.Logger,
) *ResultService {
	return &ResultService{
		reg:        reg,
		resultRepo: resultRepo,
		stats:      stats,
		store:      store,
		logger:     logger,
	}
}

// Resolve computes the type code for a completed session and looks up
// its profile.
func (s *ResultService) Resolve(sess model.Session) (string, model.Profile, error) {
	code := scoring.ResolveType(sess.Scores)
	profile, ok := s.reg.Profile(code)
	if !ok {
		s.logger.Error("profile table missing resolved type",
			zap.String("typeCode", code),
			zap.String("userId", sess.UserID))
		return "", model.Profile{}, ErrUnknownType
	}
	return code, profile, nil
}

// Finalize attempts to persist the outcome, updates the type
// distribution, and removes the session. Failures are logged; none of
// them withholds the result from the user. The session is removed
// only after the save has been attempted, so a crash between
// completion and persistence cannot silently drop an in-flight
// result while the session still exists.
func (s *ResultService) Finalize(sess model.Session, typeCode string, profile model.Profile) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	result := &model.TestResult{
		UserID:      sess.UserID,
		Username:    sess.Username,
		TypeCode:    typeCode,
		Variant:     sess.Variant,
		Scores:      sess.Scores,
		AnswerLog:   sess.AnswerLog,
		Profile:     profile,
		CompletedAt: time.Now().UTC(),
	}
	if err := s.resultRepo.Create(ctx, result); err != nil {
		s.logger.Error("failed to persist quiz result",
			zap.String("userId", sess.UserID),
			zap.String("typeCode", typeCode),
			zap.Error(err))
	}

	if s.stats != nil {
		if err := s.stats.IncrType(ctx, sess.Variant, typeCode); err != nil {
			s.logger.Warn("failed to update type distribution",
				zap.String("typeCode", typeCode),
				zap.Error(err))
		}
	}

	s.store.Remove(sess.UserID)

	s.logger.Info("quiz completed",
		zap.String("userId", sess.UserID),
		zap.String("username", sess.Username),
		zap.String("typeCode", typeCode),
		zap.String("variant", string(sess.Variant)))
}

// LatestResult returns the newest stored result for a user, or nil.
func (s *ResultService) LatestResult(ctx context.Context, userID string) (*model.TestResult, error) {
	return s.resultRepo.GetLatestByUser(ctx, userID)
}

// RecentResults returns the newest stored results across all users.
func (s *ResultService) RecentResults(ctx context.Context, limit int64) ([]*model.TestResult, error) {
	return s.resultRepo.ListRecent(ctx, limit)
}

// TypeDistribution returns the ranked type counts for a variant.
func (s *ResultService) TypeDistribution(ctx context.Context, variant model.Variant, limit int) ([]model.TypeCount, error) {
	if s.stats == nil {
		return nil, nil
	}
	return s.stats.Distribution(ctx, variant, limit)
}
