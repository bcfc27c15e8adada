package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mindprint/internal/model"
	"mindprint/internal/repository"
)

// AnalyticsService records inbound user messages for later analysis.
// Everything here is best-effort: a storage failure must never break
// the quiz flow.
type AnalyticsService struct {
	messageRepo repository.MessageRepo
	logger      *zap.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(messageRepo repository.MessageRepo, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{messageRepo: messageRepo, logger: logger}
}

// RecordMessage stores the message metadata in the background and
// returns immediately.
func (s *AnalyticsService) RecordMessage(userID, username, text string, channel model.ChannelKind, isCommand bool) {
	if s.messageRepo == nil {
		return
	}

	rec := &model.MessageRecord{
		UserID:    userID,
		Username:  username,
		Text:      text,
		Length:    len(text),
		Channel:   channel,
		IsCommand: isCommand,
		CreatedAt: time.Now().UTC(),
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in message analytics", zap.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.messageRepo.Create(ctx, rec); err != nil {
			s.logger.Error("failed to store message",
				zap.String("userId", userID),
				zap.Error(err))
		}
	}()
}
