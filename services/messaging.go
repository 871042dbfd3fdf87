package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"barberbook-backend/config"
	"barberbook-backend/utils"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// OutboundMessage is a text to a customer or shop owner phone.
type OutboundMessage struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Dispatcher delivers outbound messages to a gateway.
type Dispatcher interface {
	Send(ctx context.Context, msg OutboundMessage) error
	Channel() string
}

// VatanSMSDispatcher posts to the VatanSMS bulk WhatsApp/SMS API.
type VatanSMSDispatcher struct {
	URL    string
	Token  string
	RegID  string
	Client *http.Client
}

type vatanMessage struct {
	RegID   string `json:"reg_id"`
	Target  string `json:"target"`
	Message string `json:"message"`
}

type vatanPayload struct {
	Messages []vatanMessage `json:"messages"`
}

func NewVatanSMSDispatcher(url, token, regID string) *VatanSMSDispatcher {
	return &VatanSMSDispatcher{
		URL:    url,
		Token:  token,
		RegID:  regID,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *VatanSMSDispatcher) Channel() string { return "vatan" }

func (d *VatanSMSDispatcher) Send(ctx context.Context, msg OutboundMessage) error {
	body, err := json.Marshal(vatanPayload{Messages: []vatanMessage{{
		RegID:   d.RegID,
		Target:  utils.InternationalPhone(msg.Phone),
		Message: msg.Message,
	}}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.Token)

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("vatansms: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("vatansms: status %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}
	log.Printf("VatanSMS response: %s", bytes.TrimSpace(respBody))
	return nil
}

// TwilioDispatcher sends SMS, or WhatsApp when a WhatsApp sender is set.
type TwilioDispatcher struct {
	client   *twilio.RestClient
	from     string
	whatsApp string
}

func NewTwilioDispatcher(accountSid, authToken, from, whatsApp string) *TwilioDispatcher {
	return &TwilioDispatcher{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from:     from,
		whatsApp: whatsApp,
	}
}

func (d *TwilioDispatcher) Channel() string {
	if d.whatsApp != "" {
		return "whatsapp"
	}
	return "sms"
}

func (d *TwilioDispatcher) Send(ctx context.Context, msg OutboundMessage) error {
	to := "+" + utils.InternationalPhone(msg.Phone)

	params := &twilioApi.CreateMessageParams{}
	params.SetBody(msg.Message)
	if d.whatsApp != "" {
		params.SetTo("whatsapp:" + to)
		params.SetFrom("whatsapp:" + d.whatsApp)
	} else {
		params.SetTo(to)
		params.SetFrom(d.from)
	}

	resp, err := d.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio: %w", err)
	}
	if resp.Sid != nil {
		log.Printf("Message sent to %s, SID: %s", to, *resp.Sid)
	}
	return nil
}

// LogDispatcher only logs; used when no gateway is configured.
type LogDispatcher struct{}

func (LogDispatcher) Channel() string { return "log" }

func (LogDispatcher) Send(ctx context.Context, msg OutboundMessage) error {
	log.Printf("[SMS] to=%s message=%q", utils.InternationalPhone(msg.Phone), msg.Message)
	return nil
}

// NewDispatcher picks a gateway from SMS_PROVIDER.
func NewDispatcher(cfg config.AppConfig) Dispatcher {
	switch cfg.SMSProvider {
	case "vatan":
		return NewVatanSMSDispatcher(cfg.VatanURL, cfg.VatanToken, cfg.VatanRegID)
	case "twilio":
		return NewTwilioDispatcher(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, cfg.TwilioWhatsApp)
	default:
		return LogDispatcher{}
	}
}
