package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Astemirdum/library-catalog/library/internal/events"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/pkg/circuit_breaker"
	"github.com/Astemirdum/library-catalog/pkg/jsonx"
	"github.com/Astemirdum/library-catalog/pkg/kafka"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func borrowing() model.Borrowing {
	bookID, memberID := int64(7), int64(1)
	return model.Borrowing{
		ID:         42,
		BookID:     &bookID,
		MemberID:   &memberID,
		BorrowDate: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		DueDate:    model.DateOf(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)),
		Status:     model.StatusBorrowed,
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	t.Parallel()
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "borrowings-test" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "42" {
			return errors.New("unexpected key " + string(key))
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var e events.Event
		if err := jsonx.Unmarshal(value, &e); err != nil {
			return err
		}
		if e.Type != events.BookBorrowed || e.DueDate.String() != "2024-03-15" {
			return errors.New("unexpected payload " + string(value))
		}
		return nil
	})

	p := events.NewKafkaPublisher(producer, "borrowings-test", zap.NewNop())
	err := p.Publish(context.Background(), events.NewEvent(events.BookBorrowed, borrowing(), time.Now()))
	require.NoError(t, err)
	require.NoError(t, producer.Close())
}

func TestKafkaPublisher_OpensCircuit(t *testing.T) {
	t.Parallel()
	producer := mocks.NewSyncProducer(t, nil)
	for i := 0; i < 5; i++ {
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	}

	p := events.NewKafkaPublisher(producer, "", zap.NewNop())
	e := events.NewEvent(events.BookReturned, borrowing(), time.Now())

	var lastErr error
	for i := 0; i < 6; i++ {
		lastErr = p.Publish(context.Background(), e)
	}
	require.ErrorIs(t, lastErr, circuit_breaker.ErrOpenCB)
	require.NoError(t, producer.Close())
}

func TestNew_WithoutBrokers(t *testing.T) {
	t.Parallel()
	p, closeFn, err := events.New(kafka.Config{}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, events.Nop{}, p)
	require.NoError(t, p.Publish(context.Background(), events.Event{}))
	require.NoError(t, closeFn())
}
