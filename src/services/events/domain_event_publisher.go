package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"productbom/src/domain/entities"
	"productbom/src/infra/kafka"

	"github.com/google/uuid"
)

const (
	TypeProductCreated           = "product.created"
	TypeProductUpdated           = "product.updated"
	TypeProductDeleted           = "product.deleted"
	TypeCompositionAssociated    = "composition.associated"
	TypeCompositionDisassociated = "composition.disassociated"
)

// DomainEvent é a notificação publicada após uma operação do ciclo de vida.
// Eventos ficam fora do envelope de consistência dos dois stores: falha de
// publicação é logada, nunca vira erro da operação.
type DomainEvent struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	ProductID  uuid.UUID       `json:"product_id"`
	Data       json.RawMessage `json:"data,omitempty"`
}

func newEvent(eventType string, productID uuid.UUID, data interface{}) DomainEvent {
	payload, _ := json.Marshal(data)
	return DomainEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		ProductID:  productID,
		Data:       payload,
	}
}

func NewProductCreated(product entities.Product) DomainEvent {
	return newEvent(TypeProductCreated, product.ID, product)
}

func NewProductUpdated(product entities.Product) DomainEvent {
	return newEvent(TypeProductUpdated, product.ID, product)
}

func NewProductDeleted(productID uuid.UUID, cascade bool) DomainEvent {
	return newEvent(TypeProductDeleted, productID, map[string]interface{}{"cascade": cascade})
}

func NewCompositionAssociated(edge entities.CompositionEdge) DomainEvent {
	return newEvent(TypeCompositionAssociated, edge.ParentID, edge)
}

func NewCompositionDisassociated(parentID, childID uuid.UUID) DomainEvent {
	return newEvent(TypeCompositionDisassociated, parentID, map[string]interface{}{
		"parent_id": parentID,
		"child_id":  childID,
	})
}

type DomainEventPublisher struct {
	logger      *slog.Logger
	kafkaClient *kafka.KafkaClient
	topic       string
}

func NewDomainEventPublisher(
	logger *slog.Logger,
	kafkaClient *kafka.KafkaClient,
	topic string,
) *DomainEventPublisher {
	return &DomainEventPublisher{
		logger:      logger,
		kafkaClient: kafkaClient,
		topic:       topic,
	}
}

func (p *DomainEventPublisher) Publish(ctx context.Context, event DomainEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal domain event %s: %w", event.EventID, err)
	}

	msg := kafka.Message{
		// Particiona por produto para preservar ordem por entidade.
		Key:   event.ProductID.String(),
		Value: eventBytes,
		Headers: map[string]string{
			"event_type":     event.EventType,
			"source_service": "productbom-api",
			"schema_version": "v1",
			"event_id":       event.EventID,
		},
	}

	if err := p.kafkaClient.Producer([]kafka.Message{msg}, p.topic); err != nil {
		p.logger.Error("Failed to publish domain event",
			"error", err,
			"topic", p.topic,
			"event_id", event.EventID,
			"event_type", event.EventType)
		return fmt.Errorf("failed to publish domain event to topic %s: %w", p.topic, err)
	}

	p.logger.Debug("Published domain event",
		"topic", p.topic,
		"event_id", event.EventID,
		"event_type", event.EventType)

	return nil
}
