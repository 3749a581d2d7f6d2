package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"graphauth/pkg/identity"
	"graphauth/pkg/logging"
)

// slowDownIncrement is added to the polling interval when the provider
// answers slow_down, per RFC 8628.
const slowDownIncrement = 5 * time.Second

// ErrDeviceCodeExpired is returned when the device code's validity
// window elapses before the user completes sign-in.
var ErrDeviceCodeExpired = errors.New("device code expired before authorization completed")

// DeviceCodeResponse is the provider's answer to a device authorization
// request: the code to poll with and the instructions for the user.
type DeviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
	Message         string `json:"message"`
}

// RequestDeviceCode starts a device code flow by asking the device
// authorization endpoint for a new device code.
func RequestDeviceCode(ctx context.Context, cfg AppConfig, scopes []string) (*DeviceCodeResponse, error) {
	endpoints, err := cfg.Endpoints()
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("client_id", cfg.ClientID.String())
	if len(scopes) > 0 {
		form.Set("scope", strings.Join(scopes, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoints.DeviceCodeEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build device code request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	client := cfg.httpClient
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("device code request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("device code request failed: status=%d", resp.StatusCode)
	}

	var dc DeviceCodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&dc); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &dc, nil
}

// PollDeviceCode polls the token endpoint with the device code
// credential until the user completes sign-in, the device code expires,
// or the context is cancelled. authorization_pending keeps polling at
// the credential's interval; slow_down widens the interval by five
// seconds as the provider requests.
func PollDeviceCode(ctx context.Context, cred *Credential) (*identity.Token, error) {
	if cred.Kind() != KindDeviceCode {
		return nil, fmt.Errorf("device code polling requires a device code credential, got %s", cred.Kind())
	}

	interval := cred.DeviceCodeInterval()
	expiresAt := cred.DeviceCodeExpiresAt()

	for {
		if !expiresAt.IsZero() && time.Now().After(expiresAt) {
			return nil, ErrDeviceCodeExpired
		}

		token, err := cred.AcquireToken(ctx)
		if err == nil {
			return token, nil
		}

		var execErr *AuthExecutionError
		if !errors.As(err, &execErr) {
			return nil, err
		}

		switch execErr.OAuthError {
		case "authorization_pending":
			// keep polling
		case "slow_down":
			interval += slowDownIncrement
			logging.Debug("DeviceCode", "Provider requested slow_down, interval now %s", interval)
		case "expired_token":
			return nil, ErrDeviceCodeExpired
		default:
			return nil, err
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
