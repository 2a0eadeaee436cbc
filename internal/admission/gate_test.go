package admission

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"vantage/internal/antispam"
	"vantage/internal/config"
	"vantage/internal/ratelimit"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0"

func cleanRequest() Request {
	return Request{
		RemoteAddr: "203.0.113.7",
		UserAgent:  browserUA,
		Accept:     "text/html",
		Referer:    "https://example.com",
	}
}

type gateFixture struct {
	store   *ratelimit.InMemoryCounterStore
	limiter *ratelimit.Limiter
	gate    *Gate
}

func newGateFixture(t *testing.T, captchaCfg *config.Config) *gateFixture {
	t.Helper()
	if captchaCfg == nil {
		captchaCfg = &config.Config{Environment: "development"}
	}

	store := ratelimit.NewInMemoryCounterStore()
	limiter := ratelimit.NewLimiter(store, &config.Config{
		RateLimitMax:    10,
		RateLimitWindow: time.Minute,
	}, zerolog.Nop())

	gate := NewGate(
		limiter,
		antispam.NewClassifier(),
		antispam.NewCaptchaVerifier(captchaCfg, zerolog.Nop()),
		zerolog.Nop(),
	)
	return &gateFixture{store: store, limiter: limiter, gate: gate}
}

func TestClientKeyStability(t *testing.T) {
	key1 := ClientKey("1.2.3.4", browserUA, "")
	key2 := ClientKey("1.2.3.4", browserUA, "")
	assert.Equal(t, key1, key2)

	// Rotating any single signal changes the key.
	assert.NotEqual(t, key1, ClientKey("1.2.3.5", browserUA, ""))
	assert.NotEqual(t, key1, ClientKey("1.2.3.4", "other-agent", ""))
	assert.NotEqual(t, key1, ClientKey("1.2.3.4", browserUA, "10.0.0.1"))
}

func TestCheckAdmitsFreshClient(t *testing.T) {
	f := newGateFixture(t, nil)

	decision, err := f.gate.Check(context.Background(), cleanRequest())
	require.NoError(t, err)

	assert.Equal(t, Admitted, decision.Status)
	require.NotNil(t, decision.RateLimit)
	assert.Equal(t, 1, decision.RateLimit.Count)
	assert.True(t, decision.RateLimit.Allowed)
}

func TestCheckRateLimitEscalatesToCaptcha(t *testing.T) {
	f := newGateFixture(t, nil)
	ctx := context.Background()

	for i := range 10 {
		decision, err := f.gate.Check(ctx, cleanRequest())
		require.NoError(t, err)
		assert.Equal(t, Admitted, decision.Status, "request %d", i+1)
	}

	// Request 11 without a token is refused pending captcha.
	decision, err := f.gate.Check(ctx, cleanRequest())
	require.NoError(t, err)
	assert.Equal(t, CaptchaRequired, decision.Status)
	assert.Equal(t, 11, decision.RateLimit.Count)

	// Same request with a token: verifier is bypassed in development,
	// so the request is admitted, and the counter keeps rising rather
	// than resetting.
	req := cleanRequest()
	req.CaptchaToken = "solved"
	decision, err = f.gate.Check(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, Admitted, decision.Status)
	assert.Equal(t, 12, decision.RateLimit.Count)
	assert.False(t, decision.RateLimit.Allowed)
}

func TestCheckSpamRequiresCaptchaUnderLimit(t *testing.T) {
	f := newGateFixture(t, nil)

	req := Request{
		RemoteAddr: "203.0.113.7",
		UserAgent:  "scraper-bot/1.0",
		Accept:     "*/*",
	}
	decision, err := f.gate.Check(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, CaptchaRequired, decision.Status)
	assert.True(t, decision.Spam.RequiresCaptcha)
	assert.True(t, decision.Spam.IsSpam)
	// The rate-limit slot was still consumed.
	assert.Equal(t, 1, decision.RateLimit.Count)
}

func TestCheckCaptchaFailureRejects(t *testing.T) {
	oracle := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	t.Cleanup(oracle.Close)

	f := newGateFixture(t, &config.Config{
		Environment:        "production",
		RecaptchaSecret:    "secret",
		RecaptchaVerifyURL: oracle.URL,
	})

	req := Request{
		RemoteAddr:   "203.0.113.7",
		UserAgent:    "scraper-bot/1.0",
		Accept:       "*/*",
		CaptchaToken: "bogus",
	}
	decision, err := f.gate.Check(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, CaptchaFailed, decision.Status)
}

func TestCheckUnhealthyStoreFailsClosed(t *testing.T) {
	f := newGateFixture(t, nil)
	f.store.SetDown(true)

	decision, err := f.gate.Check(context.Background(), cleanRequest())
	require.NoError(t, err)

	assert.Equal(t, ServiceUnavailable, decision.Status)
	// Nothing was classified or recorded.
	assert.Nil(t, decision.RateLimit)
	assert.Zero(t, decision.Spam.Score)
}
