// Package events publishes portal audit events (logins, denied navigation,
// approvals) to the message bus.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const (
	Source  = "exam-portal"
	Version = "1.0"
)

const (
	TypeLogin                 = "session.login"
	TypeLogout                = "session.logout"
	TypeGuardDenied           = "guard.denied"
	TypeExamApproved          = "exam.approved"
	TypeReevaluationRequested = "reevaluation.requested"
)

type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
	Data      any       `json:"data"`
}

type LoginData struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
	IsHead bool   `json:"is_head"`
	Method string `json:"method"`
}

type LogoutData struct {
	Role string `json:"role"`
}

type GuardDeniedData struct {
	Path     string `json:"path"`
	Role     string `json:"role"`
	Location string `json:"location"`
}

type ExamApprovedData struct {
	ExamID     int `json:"exam_id"`
	ApprovalID int `json:"approval_id"`
}

type ReevaluationRequestedData struct {
	ReevaluationID int `json:"reevaluation_id"`
	AnswerID       int `json:"answer_id"`
}

// EventPublisher emits portal events. Implementations must be safe for
// concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any) error
	Close() error
}

func NewEvent(eventType string, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    Source,
		Version:   Version,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type requestIDKey struct{}

// WithRequestID tags events published under ctx with the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type PublisherConfig struct {
	Brokers []string
	Topic   string
}

// WatermillPublisher sends events as JSON messages on a single topic.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

// NewPublisher publishes to Kafka when brokers are configured and to an
// in-process channel otherwise.
func NewPublisher(cfg PublisherConfig, logger *slog.Logger) (*WatermillPublisher, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if len(cfg.Brokers) == 0 {
		logger.Info("No Kafka brokers configured, publishing events in-process")
		return NewWatermillPublisher(gochannel.NewGoChannel(gochannel.Config{}, wmLogger), cfg.Topic, logger), nil
	}

	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.Brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return NewWatermillPublisher(pub, cfg.Topic, logger), nil
}

func NewWatermillPublisher(pub message.Publisher, topic string, logger *slog.Logger) *WatermillPublisher {
	return &WatermillPublisher{publisher: pub, topic: topic, logger: logger}
}

func (p *WatermillPublisher) Publish(ctx context.Context, eventType string, data any) error {
	event := NewEvent(eventType, data)
	event.RequestID = requestID(ctx)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", eventType, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", eventType)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", eventType, err)
	}
	p.logger.DebugContext(ctx, "Event published", "type", eventType, "id", event.ID)
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}

// PublishSafe publishes and only logs a failure; events never fail requests.
func PublishSafe(ctx context.Context, pub EventPublisher, logger *slog.Logger, eventType string, data any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, eventType, data); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "type", eventType, "error", err)
	}
}
