package twilio

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/oneballot/api/internal/core/ports"
)

type sender struct {
	client *twilio.RestClient
	from   string
}

func NewSender(accountSID, authToken, from string) ports.SMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &sender{client: client, from: from}
}

// Send delivers one message. The Twilio client has no context support,
// so the call runs in its own goroutine and the deadline is enforced
// here.
func (s *sender) Send(ctx context.Context, phone, message string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(s.from)
	params.SetBody(message)

	done := make(chan error, 1)
	go func() {
		_, err := s.client.Api.CreateMessage(params)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("twilio create message: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
