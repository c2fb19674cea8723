package services

import (
	"context"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/poofware/device-auth-service/internal/utils"
)

// twilioSender delivers codes through the Twilio Messages API.
type twilioSender struct {
	client    *twilio.RestClient
	fromPhone string
}

func NewTwilioSender(accountSID, authToken, fromPhone string) SMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &twilioSender{client: client, fromPhone: fromPhone}
}

func (t *twilioSender) Send(ctx context.Context, toPhone, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(toPhone)
	params.SetFrom(t.fromPhone)
	params.SetBody(body)

	_, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return err
	}
	utils.Logger.Debugf("OTP SMS dispatched to %s", toPhone)
	return nil
}

// logSender is used by dev profiles where no Twilio account is
// configured. Codes land in the log instead of a phone.
type logSender struct{}

func NewLogSender() SMSSender {
	return &logSender{}
}

func (l *logSender) Send(_ context.Context, toPhone, body string) error {
	utils.Logger.Warnf("SMS delivery disabled; would send to %s: %s", toPhone, body)
	return nil
}
