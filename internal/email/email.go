package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/skybooking/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("notify booking %s (%s): flight %d on %s, %d seats, status %s\n",
		event.Reference, event.Type, event.FlightID, event.TravelDate, event.Seats, event.Status)
	return nil
}
