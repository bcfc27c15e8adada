// Package session owns the only shared mutable state in the engine:
// the per-user quiz sessions. All operations on one user are strictly
// serialized; operations on users in different shards never contend.
package session

import (
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	"mindprint/internal/model"
	"mindprint/internal/scoring"
)

var (
	// ErrDuplicateSession means the user is already mid-quiz.
	ErrDuplicateSession = errors.New("session already exists for user")
	// ErrNoSession means no live session exists for the user.
	ErrNoSession = errors.New("no session for user")
	// ErrInvalidOption means the option index is outside the current
	// question's option count.
	ErrInvalidOption = errors.New("invalid option index")
	// ErrSessionExpired covers timed-out sessions and answers that
	// target a superseded question token.
	ErrSessionExpired = errors.New("session expired")
)

const shardCount = 16

type shard struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

// Store is a sharded in-process session store. Sessions live only
// between quiz start and completion, timeout, or abandonment; there
// is no cross-restart persistence.
type Store struct {
	shards [shardCount]*shard
	ttl    time.Duration
}

// NewStore creates a session store whose lazy expiry checks use ttl.
func NewStore(ttl time.Duration) *Store {
	st := &Store{ttl: ttl}
	for i := range st.shards {
		st.shards[i] = &shard{sessions: make(map[string]*model.Session)}
	}
	return st
}

func (st *Store) shardFor(userID string) *shard {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return st.shards[h.Sum32()%shardCount]
}

// Create atomically registers a new session for the user and returns
// a snapshot carrying the token for the first question. Fails with
// ErrDuplicateSession if a live session exists; the existing session
// is left untouched.
func (st *Store) Create(userID, username string, variant model.Variant, questions []model.Question) (model.Session, error) {
	sh := st.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if existing, ok := sh.sessions[userID]; ok {
		if !existing.Idle(st.ttl, time.Now()) {
			return model.Session{}, ErrDuplicateSession
		}
		delete(sh.sessions, userID)
	}

	now := time.Now()
	s := &model.Session{
		UserID:         userID,
		Username:       username,
		Variant:        variant,
		Scores:         model.NewScores(),
		AnswerLog:      make([]string, 0, len(questions)),
		Questions:      questions,
		Token:          uuid.NewString(),
		CreatedAt:      now,
		LastActivityAt: now,
	}
	sh.sessions[userID] = s
	return snapshot(s), nil
}

// Get returns a snapshot of the user's live session. An idle session
// past the TTL is evicted here and reported as expired.
func (st *Store) Get(userID string) (model.Session, error) {
	sh := st.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	s, ok := sh.sessions[userID]
	if !ok {
		return model.Session{}, ErrNoSession
	}
	if s.Idle(st.ttl, time.Now()) {
		delete(sh.sessions, userID)
		return model.Session{}, ErrSessionExpired
	}
	return snapshot(s), nil
}

// Advance applies one answer as a single atomic unit: token check,
// bounds check, scoring update, step increment, answer-log append,
// activity refresh, token rotation. Exactly one of two racing calls
// for the same user can match the token; the loser sees
// ErrSessionExpired and no state changes.
func (st *Store) Advance(userID, token string, optionIndex int) (model.Session, bool, error) {
	sh := st.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	s, ok := sh.sessions[userID]
	if !ok {
		return model.Session{}, false, ErrNoSession
	}
	now := time.Now()
	if s.Idle(st.ttl, now) {
		delete(sh.sessions, userID)
		return model.Session{}, false, ErrSessionExpired
	}
	if s.Token == "" || token != s.Token {
		// Stale or superseded question instance.
		return model.Session{}, false, ErrSessionExpired
	}
	q := s.Current()
	if q == nil {
		return model.Session{}, false, ErrSessionExpired
	}
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return model.Session{}, false, ErrInvalidOption
	}

	scoring.ApplyOption(s.Scores, q.Dimension, q.Options[optionIndex].Weight)
	s.AnswerLog = append(s.AnswerLog, optionSelector(optionIndex))
	s.Step++
	s.LastActivityAt = now

	complete := s.Completed()
	if complete {
		// No further answers are valid; the session stays around
		// until the resolver has attempted persistence.
		s.Token = ""
	} else {
		s.Token = uuid.NewString()
	}
	return snapshot(s), complete, nil
}

// Remove deletes the user's session. Idempotent.
func (st *Store) Remove(userID string) {
	sh := st.shardFor(userID)
	sh.mu.Lock()
	delete(sh.sessions, userID)
	sh.mu.Unlock()
}

// SweepExpired evicts every session idle longer than ttl and returns
// the evicted user IDs. It takes the same shard locks as Advance, so
// a sweep never races an in-flight answer.
func (st *Store) SweepExpired(ttl time.Duration) []string {
	now := time.Now()
	var evicted []string
	for _, sh := range st.shards {
		sh.mu.Lock()
		for userID, s := range sh.sessions {
			if s.Idle(ttl, now) {
				delete(sh.sessions, userID)
				evicted = append(evicted, userID)
			}
		}
		sh.mu.Unlock()
	}
	return evicted
}

// Len reports the number of live sessions across all shards.
func (st *Store) Len() int {
	n := 0
	for _, sh := range st.shards {
		sh.mu.Lock()
		n += len(sh.sessions)
		sh.mu.Unlock()
	}
	return n
}

// snapshot copies the session so callers never share the store's
// mutable maps and slices.
func snapshot(s *model.Session) model.Session {
	out := *s
	out.Scores = s.Scores.Clone()
	out.AnswerLog = append([]string(nil), s.AnswerLog...)
	return out
}

// optionSelector maps an option index to its presentation letter
// ("A", "B", ...), the form recorded in the answer log.
func optionSelector(idx int) string {
	return string(rune('A' + idx))
}
