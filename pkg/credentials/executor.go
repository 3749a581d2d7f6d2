package credentials

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"graphauth/pkg/identity"
	"graphauth/pkg/logging"
)

// DefaultHTTPTimeout is the timeout applied to token requests when no
// custom HTTP client is configured.
const DefaultHTTPTimeout = 30 * time.Second

// AuthorizationRequest is the fully assembled, ephemeral token request:
// target URI, form body, optional Basic auth, and extra headers. It is
// built fresh per request and never cached.
type AuthorizationRequest struct {
	URI      *url.URL
	Form     map[string]string
	Headers  http.Header
	BasicID  string
	BasicKey string
	HasBasic bool
}

// URI resolves the token endpoint for the credential's authority and
// cloud instance, with any extra query parameters appended. Calling it
// twice on the same credential yields byte-identical URLs.
func (c *Credential) URI() (*url.URL, error) {
	endpoints, err := c.cfg.Endpoints()
	if err != nil {
		return nil, err
	}

	parsed, err := url.Parse(endpoints.TokenEndpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid token endpoint: %w", err)
	}

	if len(c.cfg.ExtraQueryParameters) > 0 {
		query := parsed.Query()
		for key, value := range c.cfg.ExtraQueryParameters {
			query.Set(key, value)
		}
		parsed.RawQuery = query.Encode()
	}
	return parsed, nil
}

// RequestParts assembles the complete authorization request from the
// credential: endpoint URI, validated form body, Basic auth, and extra
// headers. Both execution modes build their HTTP request from this one
// value, so they produce observably identical requests.
func (c *Credential) RequestParts() (*AuthorizationRequest, error) {
	uri, err := c.URI()
	if err != nil {
		return nil, err
	}
	if uri.Scheme != "https" {
		return nil, ErrHTTPSRequired
	}

	form, err := c.FormBody()
	if err != nil {
		return nil, err
	}

	headers := make(http.Header)
	headers.Set("Content-Type", "application/x-www-form-urlencoded")
	headers.Set("Accept", "application/json")
	headers.Set("client-request-id", c.cfg.CorrelationID.String())
	for name, values := range c.cfg.ExtraHeaderParameters {
		for _, value := range values {
			headers.Add(name, value)
		}
	}

	request := &AuthorizationRequest{
		URI:     uri,
		Form:    form,
		Headers: headers,
	}
	if id, secret, ok := c.BasicAuth(); ok {
		request.BasicID = id
		request.BasicKey = secret
		request.HasBasic = true
	}
	return request, nil
}

// newHTTPClient builds the minimal HTTP client used for a single token
// request: TLS 1.2 minimum, default timeout. A fresh client per call
// keeps concurrent acquisitions free of shared mutable state.
func (c *Credential) newHTTPClient() *http.Client {
	if c.cfg.httpClient != nil {
		return c.cfg.httpClient
	}
	return &http.Client{
		Timeout: DefaultHTTPTimeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
		},
	}
}

// Execute issues the token request and returns the raw HTTP response
// for the caller to decode. No retry is performed; retry policy belongs
// to the caller.
func (c *Credential) Execute(ctx context.Context) (*http.Response, error) {
	request, err := c.RequestParts()
	if err != nil {
		return nil, err
	}

	body := url.Values{}
	for key, value := range request.Form {
		body.Set(key, value)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, request.URI.String(), strings.NewReader(body.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	httpReq.Header = request.Headers.Clone()
	if request.HasBasic {
		httpReq.SetBasicAuth(request.BasicID, request.BasicKey)
	}

	logging.Debug("Executor", "Sending token request grant=%s endpoint=%s", c.kind, request.URI.Host)

	resp, err := c.newHTTPClient().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	return resp, nil
}

// ExecuteResult carries the outcome of a non-blocking execution.
type ExecuteResult struct {
	Response *http.Response
	Err      error
}

// ExecuteAsync issues the token request without blocking the caller.
// The returned channel delivers exactly one result. The request sent is
// identical to the one Execute sends; both are assembled from the same
// RequestParts.
func (c *Credential) ExecuteAsync(ctx context.Context) <-chan ExecuteResult {
	results := make(chan ExecuteResult, 1)
	go func() {
		resp, err := c.Execute(ctx)
		results <- ExecuteResult{Response: resp, Err: err}
	}()
	return results
}

// AcquireToken executes the token request and decodes the response into
// a Token, capturing the issue time. Provider rejections surface as
// *AuthExecutionError, malformed success bodies as *DecodeError.
func (c *Credential) AcquireToken(ctx context.Context) (*identity.Token, error) {
	resp, err := c.Execute(ctx)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeTokenResponse(resp)
}

func decodeTokenResponse(resp *http.Response) (*identity.Token, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		execErr := &AuthExecutionError{StatusCode: resp.StatusCode, Body: body}
		var oauthErr struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		if json.Unmarshal(body, &oauthErr) == nil {
			execErr.OAuthError = oauthErr.Error
			execErr.ErrorDescription = oauthErr.ErrorDescription
		}
		logging.Debug("Executor", "Token request rejected status=%d error=%s", resp.StatusCode, execErr.OAuthError)
		return nil, execErr
	}

	var token identity.Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &DecodeError{Err: err}
	}
	token.IssuedAt = time.Now()

	logging.Debug("Executor", "Token acquired type=%s expires_in=%d", token.TokenType, token.ExpiresIn)
	return &token, nil
}
