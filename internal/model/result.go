package model

import "time"

// TestResult is a completed quiz outcome persisted to MongoDB.
// Storage is best-effort auditing; the in-memory outcome is
// authoritative once computed.
type TestResult struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	UserID      string    `json:"userId" bson:"userId"`
	Username    string    `json:"username" bson:"username"`
	TypeCode    string    `json:"typeCode" bson:"typeCode"`
	Variant     Variant   `json:"variant" bson:"variant"`
	Scores      Scores    `json:"scores" bson:"scores"`
	AnswerLog   []string  `json:"answerLog" bson:"answerLog"`
	Profile     Profile   `json:"profile" bson:"profile"`
	CompletedAt time.Time `json:"completedAt" bson:"completedAt"`
}

// QuestionPayload is what the transport renders for one question.
// Token must accompany the answer to this question and nothing else.
type QuestionPayload struct {
	Step     int      `json:"step"`
	Total    int      `json:"total"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Token    string   `json:"token"`
	Variant  Variant  `json:"variant"`
	Started  bool     `json:"started,omitempty"`
}

// CompletedPayload is delivered once after the final answer resolves.
type CompletedPayload struct {
	TypeCode string  `json:"typeCode"`
	Profile  Profile `json:"profile"`
	Scores   Scores  `json:"scores"`
	Variant  Variant `json:"variant"`
}

// TypeCount is one entry of the type distribution ranking.
type TypeCount struct {
	TypeCode string `json:"typeCode"`
	Count    int64  `json:"count"`
	Rank     int    `json:"rank"`
}
