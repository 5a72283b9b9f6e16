package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPSender posts messages to a WhatsApp/SMS gateway.
type HTTPSender struct {
	gatewayURL string
	apiKey     string
	client     *http.Client
}

func NewHTTPSender(gatewayURL, apiKey string, timeout time.Duration) *HTTPSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSender{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: timeout},
	}
}

type sendReq struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Channel string `json:"channel"`
}

type sendResp struct {
	MessageID string `json:"message_id"`
}

func (s *HTTPSender) Send(ctx context.Context, phone, message, channel string) (string, error) {
	body, _ := json.Marshal(sendReq{Phone: phone, Message: message, Channel: channel})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("gateway status %d", resp.StatusCode)
	}
	var out sendResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.MessageID, nil
}
