package sms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPSender 透過簡訊閘道的 REST API 發送驗證碼
type HTTPSender struct {
	endpoint string
	apiKey   string
	sender   string
	client   *http.Client
}

func NewHTTPSender(endpoint, apiKey, sender string) *HTTPSender {
	return &HTTPSender{
		endpoint: endpoint,
		apiKey:   apiKey,
		sender:   sender,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSender) SendOTP(ctx context.Context, phone, code string) error {
	form := url.Values{}
	form.Set("to", phone)
	form.Set("from", s.sender)
	form.Set("text", fmt.Sprintf("Your verification code is %s", code))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
