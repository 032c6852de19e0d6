package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/config"
)

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

// WhatsAppSender delivers messages through the Twilio WhatsApp API
type WhatsAppSender struct {
	cfg        config.TwilioConfig
	baseURL    string
	httpClient *http.Client
}

// NewWhatsAppSender creates a Twilio-backed WhatsApp sender
func NewWhatsAppSender(cfg config.TwilioConfig) *WhatsAppSender {
	return &WhatsAppSender{
		cfg:        cfg,
		baseURL:    twilioBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Channel returns the channel name
func (s *WhatsAppSender) Channel() string { return "whatsapp" }

// twilioMessage is the relevant subset of Twilio's message resource
type twilioMessage struct {
	SID          string  `json:"sid"`
	Status       string  `json:"status"`
	ErrorCode    *int    `json:"error_code"`
	ErrorMessage *string `json:"error_message"`
	// Error-response fields
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// whatsappAddr normalizes a number to Twilio's whatsapp: addressing
func whatsappAddr(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}

// Send posts the message to every recipient. A failure for one recipient
// does not stop the others; the first failure is what gets reported.
func (s *WhatsAppSender) Send(ctx context.Context, message string, recipients []string) SendResult {
	if len(recipients) == 0 {
		recipients = s.cfg.ToNumbers
	}
	if len(recipients) == 0 {
		return SendResult{Success: false, ErrorKind: ErrKindInvalidRecipient, Detail: "no recipients configured"}
	}

	result := SendResult{Success: true}
	for _, to := range recipients {
		r := s.sendOne(ctx, message, to)
		if r.Success {
			if result.ProviderMessageID == "" {
				result.ProviderMessageID = r.ProviderMessageID
			}
			continue
		}
		if result.Success {
			result = r
		}
	}
	return result
}

func (s *WhatsAppSender) sendOne(ctx context.Context, message, to string) SendResult {
	form := url.Values{}
	form.Set("From", whatsappAddr(s.cfg.FromNumber))
	form.Set("To", whatsappAddr(to))
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.baseURL, s.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return SendResult{Success: false, ErrorKind: ErrKindProvider, Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return SendResult{Success: false, ErrorKind: ErrKindNetwork, Detail: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return SendResult{Success: false, ErrorKind: ErrKindNetwork, Detail: err.Error()}
	}

	var msg twilioMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return SendResult{
			Success:   false,
			ErrorKind: ErrKindProvider,
			Detail:    fmt.Sprintf("unexpected Twilio response (HTTP %d)", resp.StatusCode),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := msg.Message
		if detail == "" {
			detail = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		if msg.Code != 0 {
			detail = fmt.Sprintf("%s (code %d)", detail, msg.Code)
		}
		return SendResult{Success: false, ErrorKind: ErrKindProvider, Detail: detail}
	}

	if msg.ErrorCode != nil {
		detail := fmt.Sprintf("provider error %d", *msg.ErrorCode)
		if msg.ErrorMessage != nil {
			detail = *msg.ErrorMessage
		}
		return SendResult{Success: false, ErrorKind: ErrKindProvider, Detail: detail}
	}

	return SendResult{Success: true, ProviderMessageID: msg.SID}
}
