package model

import "time"

// ChannelKind says where an inbound message arrived from.
type ChannelKind string

const (
	ChannelWebSocket ChannelKind = "websocket"
	ChannelREST      ChannelKind = "rest"
)

// MessageRecord captures one inbound user message for analytics.
// Insert-only; a failed insert is logged and otherwise ignored.
type MessageRecord struct {
	ID        string      `json:"id" bson:"_id,omitempty"`
	UserID    string      `json:"userId" bson:"userId"`
	Username  string      `json:"username" bson:"username"`
	Text      string      `json:"text" bson:"text"`
	Length    int         `json:"length" bson:"length"`
	Channel   ChannelKind `json:"channel" bson:"channel"`
	IsCommand bool        `json:"isCommand" bson:"isCommand"`
	CreatedAt time.Time   `json:"createdAt" bson:"createdAt"`
}
