package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Consumer delivers booking events from a topic to a handler. The booking
// topic also carries flight-level events; those have no booking id and are
// filtered out before the handler sees them.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume blocks reading messages and passing decoded booking events to the
// handler. Malformed payloads and flight-level events are skipped; a handler
// error or a failed read stops the loop.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, BookingEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, ok := decodeBookingEvent(msg.Value)
		if !ok {
			continue
		}
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func decodeBookingEvent(data []byte) (BookingEvent, bool) {
	var event BookingEvent
	if err := json.Unmarshal(data, &event); err != nil {
		log.Printf("decode booking event: %v", err)
		return BookingEvent{}, false
	}
	if event.BookingID == 0 {
		return BookingEvent{}, false
	}
	return event, true
}
