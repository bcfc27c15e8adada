package model

import "time"

// Variant selects which question sequence a session runs.
type Variant string

const (
	VariantFull  Variant = "full"
	VariantShort Variant = "short"
)

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v == VariantFull || v == VariantShort
}

// Session tracks one user's quiz progress. At most one live session
// exists per user; all mutation goes through the session store, which
// serializes access per key.
type Session struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Variant  Variant `json:"variant"`

	// Step is the zero-based index of the question currently awaiting
	// an answer. It never exceeds len(Questions).
	Step      int        `json:"step"`
	Scores    Scores     `json:"scores"`
	AnswerLog []string   `json:"answerLog"`
	Questions []Question `json:"-"`

	// Token is the single-use identifier bound to the currently
	// rendered question. An answer carrying any other value is stale.
	// Cleared once the final answer has been accepted.
	Token string `json:"-"`

	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}

// Current returns the question awaiting an answer, or nil when the
// sequence has been exhausted.
func (s *Session) Current() *Question {
	if s.Step >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.Step]
}

// Completed reports whether every question has been answered.
func (s *Session) Completed() bool {
	return s.Step >= len(s.Questions)
}

// Idle reports whether the session has seen no activity for ttl.
func (s *Session) Idle(ttl time.Duration, now time.Time) bool {
	return now.Sub(s.LastActivityAt) > ttl
}
