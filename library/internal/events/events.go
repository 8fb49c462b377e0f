package events

import (
	"context"
	"strconv"
	"time"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/pkg/circuit_breaker"
	"github.com/Astemirdum/library-catalog/pkg/jsonx"
	"github.com/Astemirdum/library-catalog/pkg/kafka"
	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Type string

const (
	BookBorrowed Type = "book.borrowed"
	BookReturned Type = "book.returned"
)

type Event struct {
	ID          uuid.UUID  `json:"id"`
	Type        Type       `json:"type"`
	BorrowingID int64      `json:"borrowing_id"`
	BookID      *int64     `json:"book_id"`
	MemberID    *int64     `json:"member_id"`
	DueDate     model.Date `json:"due_date"`
	ReturnDate  *time.Time `json:"return_date,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

func NewEvent(t Type, b model.Borrowing, at time.Time) Event {
	return Event{
		ID:          uuid.New(),
		Type:        t,
		BorrowingID: b.ID,
		BookID:      b.BookID,
		MemberID:    b.MemberID,
		DueDate:     b.DueDate,
		ReturnDate:  b.ReturnDate,
		OccurredAt:  at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	cb       circuit_breaker.CircuitBreaker
	log      *zap.Logger
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string, log *zap.Logger) Publisher {
	if topic == "" {
		topic = kafka.BorrowingsTopic
	}
	return &kafkaPublisher{
		producer: producer,
		topic:    topic,
		cb:       circuit_breaker.New(10, 30*time.Second, 0.5, 3),
		log:      log.Named("events"),
	}
}

// Publish sends the event keyed by borrowing id so that events of one
// borrowing stay ordered within a partition.
func (p *kafkaPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := jsonx.Marshal(e)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(e.BorrowingID, 10)),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(e.Type)},
			{Key: []byte("event-id"), Value: []byte(e.ID.String())},
		},
	}
	return p.cb.Call(func() error {
		partition, offset, err := p.producer.SendMessage(msg)
		if err != nil {
			return err
		}
		p.log.Debug("event published",
			zap.String("type", string(e.Type)),
			zap.Int32("partition", partition),
			zap.Int64("offset", offset))
		return nil
	})
}

// New returns a Kafka publisher when brokers are configured and Nop otherwise.
// The returned close func releases the producer.
func New(cfg kafka.Config, log *zap.Logger) (Publisher, func() error, error) {
	if !cfg.Enabled() {
		return Nop{}, func() error { return nil }, nil
	}
	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, nil, err
	}
	return NewKafkaPublisher(producer, cfg.Topic, log), producer.Close, nil
}
