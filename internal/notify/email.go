package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/config"
)

const web3formsEndpoint = "https://api.web3forms.com/submit"

// EmailSender delivers messages through the Web3Forms API
type EmailSender struct {
	cfg        config.EmailConfig
	endpoint   string
	httpClient *http.Client
}

// NewEmailSender creates a Web3Forms-backed email sender
func NewEmailSender(cfg config.EmailConfig) *EmailSender {
	return &EmailSender{
		cfg:        cfg,
		endpoint:   web3formsEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Channel returns the channel name
func (s *EmailSender) Channel() string { return "email" }

type web3formsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Send submits the message. Web3Forms delivers to the inbox tied to the
// access key; the configured To address and any extra recipients ride along
// as CC so they receive a copy too.
func (s *EmailSender) Send(ctx context.Context, message string, recipients []string) SendResult {
	if len(recipients) == 0 && s.cfg.To != "" {
		recipients = []string{s.cfg.To}
	}

	payload := map[string]string{
		"access_key": s.cfg.AccessKey,
		"from_name":  "Beach Market Alerts",
		"email":      s.cfg.From,
		"subject":    "Beach Market notification",
		"message":    message,
	}
	if len(recipients) > 0 {
		payload["ccemail"] = strings.Join(recipients, ",")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return SendResult{Success: false, ErrorKind: ErrKindProvider, Detail: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.endpoint, bytes.NewReader(body))
	if err != nil {
		return SendResult{Success: false, ErrorKind: ErrKindProvider, Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return SendResult{Success: false, ErrorKind: ErrKindNetwork, Detail: err.Error()}
	}
	defer resp.Body.Close()

	var out web3formsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return SendResult{Success: false, ErrorKind: ErrKindProvider, Detail: "unexpected provider response"}
	}
	if !out.Success {
		return SendResult{Success: false, ErrorKind: ErrKindProvider, Detail: out.Message}
	}
	return SendResult{Success: true}
}
