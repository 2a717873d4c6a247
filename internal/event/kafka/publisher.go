package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"furnistock/internal/domain"
	"furnistock/internal/pkg/logger"
)

// EventTypeStockAdjusted é o tipo gravado no header e no payload de cada mensagem.
const EventTypeStockAdjusted = "inventory.stock.adjusted"

// MessageWriter é o subconjunto de *kafka.Writer usado pelo publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// StockEventPublisher publica eventos de ajuste de estoque num tópico Kafka.
type StockEventPublisher struct {
	writer MessageWriter
	topic  string
	logger logger.Logger
}

// NewStockEventPublisher cria o publisher com um *kafka.Writer para os brokers informados.
// A chave da mensagem é o id da linha, então eventos da mesma linha ficam na mesma partição.
func NewStockEventPublisher(brokers []string, topic string, log logger.Logger) *StockEventPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	return NewStockEventPublisherWithWriter(writer, topic, log)
}

// NewStockEventPublisherWithWriter permite injetar outro MessageWriter (testes).
func NewStockEventPublisherWithWriter(writer MessageWriter, topic string, log logger.Logger) *StockEventPublisher {
	return &StockEventPublisher{writer: writer, topic: topic, logger: log}
}

type stockAdjustedPayload struct {
	EventID      string `json:"event_id"`
	EventType    string `json:"event_type"`
	EventVersion int    `json:"event_version"`
	domain.StockAdjustedEvent
}

// PublishStockAdjusted serializa o evento em JSON e grava uma mensagem no tópico.
func (p *StockEventPublisher) PublishStockAdjusted(ctx context.Context, event domain.StockAdjustedEvent) error {
	payload := stockAdjustedPayload{
		EventID:            uuid.New().String(),
		EventType:          EventTypeStockAdjusted,
		EventVersion:       1,
		StockAdjustedEvent: event,
	}

	value, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("Falha ao serializar evento de ajuste de estoque.", err)
		return err
	}

	message := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ItemID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeStockAdjusted)},
		},
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		p.logger.Error("Falha ao publicar evento de ajuste de estoque.", err)
		return err
	}

	p.logger.Debug("Evento de ajuste de estoque publicado.", map[string]interface{}{
		"topic":    p.topic,
		"event_id": payload.EventID,
		"item_id":  event.ItemID,
	})
	return nil
}

// Close fecha o writer, descarregando mensagens pendentes.
func (p *StockEventPublisher) Close() error {
	return p.writer.Close()
}
