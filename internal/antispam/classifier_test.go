package antispam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

func TestClassifyCleanRequest(t *testing.T) {
	c := NewClassifier()

	result := c.Classify(RequestMeta{
		UserAgent: browserUA,
		Accept:    "text/html,application/xhtml+xml",
		Referer:   "https://example.com/search",
	})

	assert.Equal(t, 0, result.Score)
	assert.Empty(t, result.Reasons)
	assert.False(t, result.RequiresCaptcha)
	assert.False(t, result.IsSpam)
}

func TestClassifySuspiciousUserAgent(t *testing.T) {
	c := NewClassifier()

	for _, ua := range []string{
		"my-scraper/1.0",
		"Googlebot/2.1 (+http://www.google.com/bot.html)",
		"python-script automation",
		"web-crawler",
	} {
		result := c.Classify(RequestMeta{
			UserAgent: ua,
			Accept:    "text/html",
			Referer:   "https://example.com",
		})
		assert.Equal(t, 30, result.Score, "ua %q", ua)
		assert.Contains(t, result.Reasons, "Suspicious user agent")
		assert.True(t, result.RequiresCaptcha, "ua %q", ua)
		assert.False(t, result.IsSpam)
	}
}

func TestClassifyAdditiveHeuristics(t *testing.T) {
	c := NewClassifier()

	// Bot UA + wildcard accept + no referer: 30 + 10 + 15 = 55.
	result := c.Classify(RequestMeta{
		UserAgent: "curl-bot/7.0",
		Accept:    "*/*",
	})

	assert.Equal(t, 55, result.Score)
	assert.Equal(t, []string{"Suspicious user agent", "Generic accept header", "Missing referer header"}, result.Reasons)
	assert.True(t, result.RequiresCaptcha)
	assert.True(t, result.IsSpam)
}

func TestClassifyBelowCaptchaThreshold(t *testing.T) {
	c := NewClassifier()

	// Missing referer alone (15) plus generic accept (10) sits exactly
	// at the captcha threshold of 25.
	result := c.Classify(RequestMeta{
		UserAgent: browserUA,
		Accept:    "*/*",
	})
	assert.Equal(t, 25, result.Score)
	assert.True(t, result.RequiresCaptcha)

	result = c.Classify(RequestMeta{
		UserAgent: browserUA,
		Accept:    "text/html",
	})
	assert.Equal(t, 15, result.Score)
	assert.False(t, result.RequiresCaptcha)
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier()
	meta := RequestMeta{UserAgent: "spider", Accept: "*/*"}

	first := c.Classify(meta)
	for range 5 {
		assert.Equal(t, first, c.Classify(meta))
	}
}
