package services

import (
	"context"
	"fmt"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioTransport sends reminders through Twilio's WhatsApp channel. There
// is no QR pairing; the account credentials are the session.
type TwilioTransport struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioTransport() *TwilioTransport {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &TwilioTransport{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from: os.Getenv("TWILIO_WHATSAPP_NUMBER"),
	}
}

func (t *TwilioTransport) Connect(ctx context.Context) error {
	if os.Getenv("TWILIO_ACCOUNT_SID") == "" || t.from == "" {
		return fmt.Errorf("twilio credentials not configured")
	}
	return nil
}

func (t *TwilioTransport) Status(ctx context.Context) TransportStatus {
	return TransportStatus{
		Connected: os.Getenv("TWILIO_ACCOUNT_SID") != "" && t.from != "",
	}
}

func (t *TwilioTransport) PairingCode(ctx context.Context) (string, error) {
	return "", fmt.Errorf("twilio channel has no pairing code")
}

func (t *TwilioTransport) Send(ctx context.Context, destination, body string) SendResult {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(destination)
	params.SetFrom("whatsapp:" + t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return SendResult{Detail: err.Error()}
	}
	if resp.Sid == nil {
		return SendResult{Detail: "twilio returned no message SID"}
	}
	return SendResult{OK: true}
}

// FormatDestination produces Twilio's whatsapp:+<digits> addressing.
func (t *TwilioTransport) FormatDestination(digits string) string {
	return "whatsapp:+" + digits
}

var _ Transport = (*TwilioTransport)(nil)
