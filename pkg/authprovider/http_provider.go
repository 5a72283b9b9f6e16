package authprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPProvider talks to a hosted auth service's admin API. Every call carries
// an explicit timeout; a hung provider surfaces as ErrTimeout instead of
// hanging the request.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type updatePasswordReq struct {
	ProfileID uint   `json:"profile_id"`
	Password  string `json:"password"`
}

type signInReq struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type signInResp struct {
	ProfileID uint `json:"profile_id"`
}

func (p *HTTPProvider) UpdatePassword(ctx context.Context, profileID uint, plaintext string) error {
	body, _ := json.Marshal(updatePasswordReq{ProfileID: profileID, Password: plaintext})
	resp, err := p.post(ctx, "/admin/users/password", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrProfileNotFound
	default:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
}

func (p *HTTPProvider) SignIn(ctx context.Context, phone, plaintext string) (uint, error) {
	body, _ := json.Marshal(signInReq{Phone: phone, Password: plaintext})
	resp, err := p.post(ctx, "/auth/sign-in", body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		var out signInResp
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return out.ProfileID, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return 0, ErrInvalidCredentials
	default:
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
}

func (p *HTTPProvider) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	resp, err := p.client.Do(req)
	if err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, ErrTimeout
		}
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}
