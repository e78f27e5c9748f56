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
)

// MockEmailProvider logs instead of sending; used in development and tests
type MockEmailProvider struct{}

func NewMockEmailProvider() EmailProvider {
	return &MockEmailProvider{}
}

func (p *MockEmailProvider) SendEmail(ctx context.Context, to, subject, html string) error {
	log.Printf("Email sent to %s [%s] (%d bytes)", to, subject, len(html))
	return nil
}

// ResendEmailProvider delivers through the Resend HTTP API
type ResendEmailProvider struct {
	apiKey    string
	fromEmail string
	client    *http.Client
}

func NewResendEmailProvider(apiKey, fromEmail string, timeout time.Duration) EmailProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ResendEmailProvider{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		client:    &http.Client{Timeout: timeout},
	}
}

type resendSendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (p *ResendEmailProvider) SendEmail(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(resendSendRequest{
		From:    p.fromEmail,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.resend.com/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("send request rejected with status %d: %s", resp.StatusCode, string(body))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
