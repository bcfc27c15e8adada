package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindprint/internal/model"
	"mindprint/internal/registry"
	"mindprint/internal/session"
)

type fakeResultRepo struct {
	mu        sync.Mutex
	results   []*model.TestResult
	createErr error
}

func (f *fakeResultRepo) Create(ctx context.Context, result *model.TestResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.results = append(f.results, result)
	return nil
}

func (f *fakeResultRepo) GetLatestByUser(ctx context.Context, userID string) (*model.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.results) - 1; i >= 0; i-- {
		if f.results[i].UserID == userID {
			return f.results[i], nil
		}
	}
	return nil, nil
}

func (f *fakeResultRepo) ListRecent(ctx context.Context, limit int64) ([]*model.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.TestResult, len(f.results))
	copy(out, f.results)
	return out, nil
}

func (f *fakeResultRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (f *fakeResultRepo) saved() []*model.TestResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.TestResult, len(f.results))
	copy(out, f.results)
	return out
}

type fakeStatsCache struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{counts: make(map[string]int)}
}

func (f *fakeStatsCache) IncrType(ctx context.Context, variant model.Variant, typeCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[string(variant)+":"+typeCode]++
	return nil
}

func (f *fakeStatsCache) Distribution(ctx context.Context, variant model.Variant, limit int) ([]model.TypeCount, error) {
	return nil, nil
}

func (f *fakeStatsCache) count(variant model.Variant, typeCode string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[string(variant)+":"+typeCode]
}

func testProfiles() map[string]model.Profile {
	profiles := make(map[string]model.Profile)
	for _, ei := range []string{"E", "I"} {
		for _, sn := range []string{"S", "N"} {
			for _, tf := range []string{"T", "F"} {
				for _, jp := range []string{"J", "P"} {
					code := ei + sn + tf + jp
					profiles[code] = model.Profile{Description: "profile " + code}
				}
			}
		}
	}
	return profiles
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	opts := []model.Option{{Text: "yes", Weight: 1}, {Text: "no", Weight: -1}}
	questions := []model.Question{
		{Text: "ei-1", Dimension: model.DimensionEI, Options: opts},
		{Text: "ei-2", Dimension: model.DimensionEI, Options: opts},
		{Text: "sn-1", Dimension: model.DimensionSN, Options: opts},
		{Text: "tf-1", Dimension: model.DimensionTF, Options: opts},
		{Text: "jp-1", Dimension: model.DimensionJP, Options: opts},
	}
	reg, err := registry.New(questions, testProfiles())
	require.NoError(t, err)
	return reg
}

type quizFixture struct {
	svc   *QuizService
	store *session.Store
	repo  *fakeResultRepo
	stats *fakeStatsCache
}

func newQuizFixture(t *testing.T) *quizFixture {
	t.Helper()
	reg := testRegistry(t)
	store := session.NewStore(time.Minute)
	repo := &fakeResultRepo{}
	stats := newFakeStatsCache()
	logger := zap.NewNop()

	resultSvc := NewResultService(reg, repo, stats, store, logger)
	svc := NewQuizService(store, reg, resultSvc, time.Minute, logger)
	return &quizFixture{svc: svc, store: store, repo: repo, stats: stats}
}

func TestStartReturnsFirstQuestion(t *testing.T) {
	fx := newQuizFixture(t)
	ctx := context.Background()

	q, err := fx.svc.Start(ctx, "u1", "alice", model.VariantShort)
	require.NoError(t, err)

	assert.True(t, q.Started)
	assert.Equal(t, 0, q.Step)
	assert.Equal(t, 5, q.Total)
	assert.Equal(t, "ei-1", q.Text)
	assert.Equal(t, []string{"yes", "no"}, q.Options)
	assert.NotEmpty(t, q.Token)
	assert.Equal(t, model.VariantShort, q.Variant)
}

func TestStartRejectsUnknownVariant(t *testing.T) {
	fx := newQuizFixture(t)

	_, err := fx.svc.Start(context.Background(), "u1", "alice", model.Variant("medium"))
	assert.Error(t, err)
}

func TestStartRejectsDuplicate(t *testing.T) {
	fx := newQuizFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Start(ctx, "u1", "alice", model.VariantShort)
	require.NoError(t, err)

	_, err = fx.svc.Start(ctx, "u1", "alice", model.VariantFull)
	assert.ErrorIs(t, err, session.ErrDuplicateSession)
}

func TestCompleteShortQuiz(t *testing.T) {
	fx := newQuizFixture(t)
	ctx := context.Background()

	q, err := fx.svc.Start(ctx, "u1", "alice", model.VariantShort)
	require.NoError(t, err)

	var done *model.CompletedPayload
	for i := 0; i < 5; i++ {
		var next *model.QuestionPayload
		next, done, err = fx.svc.SubmitAnswer(ctx, "u1", "u1", q.Token, 0)
		require.NoError(t, err)
		if done != nil {
			assert.Nil(t, next, "exactly one payload on completion")
			break
		}
		require.NotNil(t, next)
		q = next
	}

	require.NotNil(t, done)
	// All first options on the short set: first poles win every
	// dichotomy.
	assert.Equal(t, "ESTJ", done.TypeCode)
	assert.Equal(t, "profile ESTJ", done.Profile.Description)
	assert.Equal(t, model.VariantShort, done.Variant)
	assert.Equal(t, 2, done.Scores["E"])

	// Persistence and session teardown happen off the answer path.
	require.Eventually(t, func() bool {
		return len(fx.repo.saved()) == 1 && fx.store.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)

	saved := fx.repo.saved()[0]
	assert.Equal(t, "u1", saved.UserID)
	assert.Equal(t, "alice", saved.Username)
	assert.Equal(t, "ESTJ", saved.TypeCode)
	assert.Equal(t, []string{"A", "A", "A", "A", "A"}, saved.AnswerLog)
	assert.False(t, saved.CompletedAt.IsZero())
	assert.Equal(t, 1, fx.stats.count(model.VariantShort, "ESTJ"))
}

func TestSubmitAnswerRejectsForeignRequester(t *testing.T) {
	fx := newQuizFixture(t)
	ctx := context.Background()

	q, err := fx.svc.Start(ctx, "u1", "alice", model.VariantShort)
	require.NoError(t, err)

	_, _, err = fx.svc.SubmitAnswer(ctx, "u1", "intruder", q.Token, 0)
	require.ErrorIs(t, err, ErrUnauthorized)

	// The owner's session is untouched and still answerable.
	next, done, err := fx.svc.SubmitAnswer(ctx, "u1", "u1", q.Token, 0)
	require.NoError(t, err)
	assert.Nil(t, done)
	assert.Equal(t, 1, next.Step)
}

func TestSubmitAnswerRejectsRedelivery(t *testing.T) {
	fx := newQuizFixture(t)
	ctx := context.Background()

	q, err := fx.svc.Start(ctx, "u1", "alice", model.VariantShort)
	require.NoError(t, err)

	next, _, err := fx.svc.SubmitAnswer(ctx, "u1", "u1", q.Token, 0)
	require.NoError(t, err)

	_, _, err = fx.svc.SubmitAnswer(ctx, "u1", "u1", q.Token, 0)
	require.ErrorIs(t, err, session.ErrSessionExpired)

	cur, err := fx.svc.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, next.Step, cur.Step, "redelivery must not advance")
}

func TestSubmitAnswerInvalidOptionKeepsSession(t *testing.T) {
	fx := newQuizFixture(t)
	ctx := context.Background()

	q, err := fx.svc.Start(ctx, "u1", "alice", model.VariantShort)
	require.NoError(t, err)

	_, _, err = fx.svc.SubmitAnswer(ctx, "u1", "u1", q.Token, 7)
	require.ErrorIs(t, err, session.ErrInvalidOption)

	cur, err := fx.svc.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, cur.Step)
	assert.Equal(t, q.Token, cur.Token, "rejected answer must not burn the token")
}

func TestCompletionSurvivesPersistenceFailure(t *testing.T) {
	fx := newQuizFixture(t)
	fx.repo.createErr = errors.New("mongo down")
	ctx := context.Background()

	q, err := fx.svc.Start(ctx, "u1", "alice", model.VariantShort)
	require.NoError(t, err)

	var done *model.CompletedPayload
	for done == nil {
		var next *model.QuestionPayload
		next, done, err = fx.svc.SubmitAnswer(ctx, "u1", "u1", q.Token, 1)
		require.NoError(t, err)
		if next != nil {
			q = next
		}
	}

	assert.Equal(t, "INFP", done.TypeCode, "result delivered despite storage outage")

	// The session is still torn down once the save attempt finishes.
	require.Eventually(t, func() bool {
		return fx.store.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, fx.repo.saved())
}

func TestCurrentOnMissingSession(t *testing.T) {
	fx := newQuizFixture(t)

	_, err := fx.svc.Current(context.Background(), "nobody")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestAbandonIsIdempotent(t *testing.T) {
	fx := newQuizFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Start(ctx, "u1", "alice", model.VariantShort)
	require.NoError(t, err)

	fx.svc.Abandon(ctx, "u1")
	fx.svc.Abandon(ctx, "u1")

	_, err = fx.svc.Current(ctx, "u1")
	assert.ErrorIs(t, err, session.ErrNoSession)

	// A fresh start is allowed after abandoning.
	_, err = fx.svc.Start(ctx, "u1", "alice", model.VariantFull)
	assert.NoError(t, err)
}

type recordingBroadcaster struct {
	mu    sync.Mutex
	sends []string
}

func (r *recordingBroadcaster) SendToUser(userID string, msgType string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sends = append(r.sends, userID+":"+msgType)
}

func (r *recordingBroadcaster) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.sends))
	copy(out, r.sends)
	return out
}

func TestSweeperNotifiesEvictedUsers(t *testing.T) {
	reg := testRegistry(t)
	store := session.NewStore(10 * time.Millisecond)
	repo := &fakeResultRepo{}
	logger := zap.NewNop()

	resultSvc := NewResultService(reg, repo, nil, store, logger)
	svc := NewQuizService(store, reg, resultSvc, 10*time.Millisecond, logger)

	b := &recordingBroadcaster{}
	svc.SetBroadcaster(b)

	_, err := svc.Start(context.Background(), "u1", "alice", model.VariantShort)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.RunSweeper(ctx, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		return store.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		sends := b.snapshot()
		return len(sends) == 1 && sends[0] == "u1:session_expired"
	}, 2*time.Second, 10*time.Millisecond)
}
