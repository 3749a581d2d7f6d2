package credentials

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestDeviceCode(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tenant-id/oauth2/v2.0/devicecode", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, testClientID, r.PostForm.Get("client_id"))
		assert.Equal(t, "User.Read", r.PostForm.Get("scope"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"device_code": "dev-123",
			"user_code": "ABCD-1234",
			"verification_uri": "https://microsoft.com/devicelogin",
			"expires_in": 900,
			"interval": 5,
			"message": "Go to https://microsoft.com/devicelogin and enter ABCD-1234"
		}`))
	}))
	defer server.Close()

	dc, err := RequestDeviceCode(context.Background(), serverAppConfig(t, server), []string{"User.Read"})
	require.NoError(t, err)
	assert.Equal(t, "dev-123", dc.DeviceCode)
	assert.Equal(t, "ABCD-1234", dc.UserCode)
	assert.Equal(t, 5, dc.Interval)
}

func TestPollDeviceCode_PendingThenSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"authorization_pending"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	}))
	defer server.Close()

	cred := NewDeviceCode(serverAppConfig(t, server), "dev-123",
		time.Millisecond, time.Now().Add(time.Minute), "User.Read")

	token, err := PollDeviceCode(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, "tok", token.AccessToken)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPollDeviceCode_TerminalError(t *testing.T) {
	server, _ := newTokenServer(t, http.StatusBadRequest, `{"error":"access_denied"}`)
	cred := NewDeviceCode(serverAppConfig(t, server), "dev-123",
		time.Millisecond, time.Now().Add(time.Minute))

	_, err := PollDeviceCode(context.Background(), cred)
	var execErr *AuthExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "access_denied", execErr.OAuthError)
}

func TestPollDeviceCode_Expired(t *testing.T) {
	server, recorded := newTokenServer(t, http.StatusBadRequest, `{"error":"authorization_pending"}`)
	cred := NewDeviceCode(serverAppConfig(t, server), "dev-123",
		time.Millisecond, time.Now().Add(-time.Second))

	_, err := PollDeviceCode(context.Background(), cred)
	assert.ErrorIs(t, err, ErrDeviceCodeExpired)
	assert.Empty(t, *recorded, "an already-expired device code must not be sent to the provider")
}

func TestPollDeviceCode_ContextCancellation(t *testing.T) {
	server, _ := newTokenServer(t, http.StatusBadRequest, `{"error":"authorization_pending"}`)
	cred := NewDeviceCode(serverAppConfig(t, server), "dev-123",
		time.Hour, time.Now().Add(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := PollDeviceCode(ctx, cred)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPollDeviceCode_WrongKind(t *testing.T) {
	cred := NewClientSecret(testAppConfig(t), "secret")
	_, err := PollDeviceCode(context.Background(), cred)
	require.Error(t, err)
}

func TestPollDeviceCode_SlowDown(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"slow_down"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	}))
	defer server.Close()

	cred := NewDeviceCode(serverAppConfig(t, server), "dev-123",
		time.Millisecond, time.Now().Add(time.Minute))

	start := time.Now()
	token, err := PollDeviceCode(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, "tok", token.AccessToken)
	assert.GreaterOrEqual(t, time.Since(start), slowDownIncrement,
		"slow_down must widen the polling interval")
}
