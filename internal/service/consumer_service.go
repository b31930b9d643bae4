package service

import (
	"context"
	"encoding/json"
	"time"

	"info-seeker-be/internal/dto"
	"info-seeker-be/internal/pkg/logger"
	"info-seeker-be/pkg/pipeline"
	"info-seeker-be/pkg/progress"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventSink receives the error event for runs that could not be scheduled.
type EventSink interface {
	Publish(sessionID string, ev progress.Event) bool
}

type consumerService struct {
	subscriber  message.Subscriber
	topic       string
	runner      Runner
	runs        pipeline.Submitter
	bus         SessionBus
	events      EventSink
	orphanGrace time.Duration
	logger      logger.ILogger
}

// NewConsumerService runs every dispatched search on runs. Queues that still
// hold events orphanGrace after a run ends are dropped.
func NewConsumerService(
	subscriber message.Subscriber,
	topic string,
	runner Runner,
	runs pipeline.Submitter,
	bus SessionBus,
	events EventSink,
	orphanGrace time.Duration,
	log logger.ILogger,
) IConsumerService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &consumerService{
		subscriber:  subscriber,
		topic:       topic,
		runner:      runner,
		runs:        runs,
		bus:         bus,
		events:      events,
		orphanGrace: orphanGrace,
		logger:      log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	// Runs are fire-and-forget: every message is acked once handed off.
	defer msg.Ack()

	var payload dto.SearchRunMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal run message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	err := cs.runs.Submit(func(ctx context.Context) {
		defer cs.scheduleCleanup(payload.SessionID)

		_, err := cs.runner.Run(ctx, payload.Query, payload.SessionID, payload.Options)
		if err != nil {
			cs.logger.Warn("CONSUMER", "Search run failed", map[string]interface{}{
				"session_id": payload.SessionID,
				"error":      err.Error(),
			})
		}
	})
	if err != nil {
		cs.logger.Error("CONSUMER", "Search run rejected", map[string]interface{}{
			"session_id": payload.SessionID,
			"error":      err.Error(),
		})
		cs.events.Publish(payload.SessionID, progress.Event{
			Type:    progress.EventError,
			Agent:   "pipeline",
			Status:  progress.StatusError,
			Message: "Search could not be scheduled",
			Details: map[string]interface{}{"error": err.Error()},
		})
		cs.scheduleCleanup(payload.SessionID)
	}
}

func (cs *consumerService) scheduleCleanup(sessionID string) {
	if cs.orphanGrace <= 0 {
		return
	}
	time.AfterFunc(cs.orphanGrace, func() {
		if n := cs.bus.Pending(sessionID); n > 0 {
			cs.bus.Disconnect(sessionID)
			cs.logger.Debug("CONSUMER", "Dropped unread session queue", map[string]interface{}{
				"session_id": sessionID,
				"events":     n,
			})
		}
	})
}
