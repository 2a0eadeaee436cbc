package antispam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"vantage/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newVerifier(t *testing.T, oracleURL string) *CaptchaVerifier {
	t.Helper()
	cfg := &config.Config{
		Environment:        "production",
		RecaptchaSecret:    "test-secret",
		RecaptchaVerifyURL: oracleURL,
	}
	return NewCaptchaVerifier(cfg, zerolog.Nop())
}

func oracleStub(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifyBypassedOutsideProduction(t *testing.T) {
	cfg := &config.Config{Environment: "development", RecaptchaSecret: "set"}
	v := NewCaptchaVerifier(cfg, zerolog.Nop())

	assert.False(t, v.Enabled())
	assert.True(t, v.Verify(context.Background(), "anything", "1.2.3.4"))
}

func TestVerifyBypassedWithoutSecret(t *testing.T) {
	cfg := &config.Config{Environment: "production"}
	v := NewCaptchaVerifier(cfg, zerolog.Nop())

	assert.False(t, v.Enabled())
	assert.True(t, v.Verify(context.Background(), "anything", ""))
}

func TestVerifySuccess(t *testing.T) {
	srv := oracleStub(t, `{"success":true,"score":0.9}`)
	v := newVerifier(t, srv.URL)

	assert.True(t, v.Enabled())
	assert.True(t, v.Verify(context.Background(), "token", "1.2.3.4"))
}

func TestVerifyOracleRejects(t *testing.T) {
	srv := oracleStub(t, `{"success":false,"error-codes":["invalid-input-response"]}`)
	v := newVerifier(t, srv.URL)

	assert.False(t, v.Verify(context.Background(), "bad-token", "1.2.3.4"))
}

func TestVerifyLowScoreRejects(t *testing.T) {
	srv := oracleStub(t, `{"success":true,"score":0.2}`)
	v := newVerifier(t, srv.URL)

	assert.False(t, v.Verify(context.Background(), "token", "1.2.3.4"))
}

func TestVerifySuccessWithoutScore(t *testing.T) {
	srv := oracleStub(t, `{"success":true}`)
	v := newVerifier(t, srv.URL)

	assert.True(t, v.Verify(context.Background(), "token", "1.2.3.4"))
}

func TestVerifyFailsOpenOnTransportError(t *testing.T) {
	srv := oracleStub(t, `{"success":true}`)
	srv.Close()
	v := newVerifier(t, srv.URL)

	assert.True(t, v.Verify(context.Background(), "token", "1.2.3.4"))
}

func TestVerifyFailsOpenOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	v := newVerifier(t, srv.URL)

	assert.True(t, v.Verify(context.Background(), "token", "1.2.3.4"))
}

func TestVerifyFailsOpenOnGarbageBody(t *testing.T) {
	srv := oracleStub(t, `not-json`)
	v := newVerifier(t, srv.URL)

	assert.True(t, v.Verify(context.Background(), "token", "1.2.3.4"))
}
