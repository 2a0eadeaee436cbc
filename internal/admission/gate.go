package admission

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"vantage/internal/antispam"
	"vantage/internal/domain"
	"vantage/internal/ratelimit"

	"github.com/rs/zerolog"
)

// Status is the gate's decision for one request.
type Status int

const (
	// Admitted lets the request proceed to profile work.
	Admitted Status = iota
	// ServiceUnavailable means the counting substrate is down; nothing
	// downstream may run (fail-closed).
	ServiceUnavailable
	// CaptchaRequired means the request was rate-limited or flagged and
	// carried no verification token.
	CaptchaRequired
	// CaptchaFailed means a supplied token did not verify.
	CaptchaFailed
)

// Request carries the metadata the gate inspects. The token, when
// present, is only consulted after the request has been flagged.
type Request struct {
	RemoteAddr   string
	UserAgent    string
	Accept       string
	Referer      string
	ForwardedFor string
	CaptchaToken string
}

// Decision is returned for every request; Spam and RateLimit are
// populated on all paths that reach them so handlers can log counters.
type Decision struct {
	Status    Status
	ClientKey string
	Spam      domain.SpamAssessment
	RateLimit *ratelimit.Result
}

// Gate runs the full pre-request admission procedure: substrate health,
// spam classification, atomic rate-limit accounting, and captcha
// escalation.
type Gate struct {
	limiter    *ratelimit.Limiter
	classifier *antispam.Classifier
	captcha    *antispam.CaptchaVerifier
	logger     zerolog.Logger
}

func NewGate(limiter *ratelimit.Limiter, classifier *antispam.Classifier, captcha *antispam.CaptchaVerifier, logger zerolog.Logger) *Gate {
	return &Gate{
		limiter:    limiter,
		classifier: classifier,
		captcha:    captcha,
		logger:     logger,
	}
}

// ClientKey derives a stable rate-limit key from the client's network
// address, user agent, and forwarded-for header, so rotating any single
// signal does not mint a fresh quota. Never treated as authentication.
func ClientKey(remoteAddr, userAgent, forwardedFor string) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s", remoteAddr, userAgent, forwardedFor))
	return hex.EncodeToString(sum[:])[:32]
}

func (g *Gate) Check(ctx context.Context, req Request) (*Decision, error) {
	decision := &Decision{
		ClientKey: ClientKey(req.RemoteAddr, req.UserAgent, req.ForwardedFor),
	}

	// Fail-closed: when the counting substrate cannot be trusted,
	// refuse before any quota-bearing downstream call.
	if !g.limiter.Healthy(ctx) {
		g.logger.Error().Str("client_key", decision.ClientKey).Msg("counter store unhealthy, rejecting request")
		decision.Status = ServiceUnavailable
		return decision, nil
	}

	decision.Spam = g.classifier.Classify(antispam.RequestMeta{
		UserAgent: req.UserAgent,
		Accept:    req.Accept,
		Referer:   req.Referer,
	})

	// Always record, even for flagged traffic, so accounting stays
	// accurate regardless of the final outcome.
	rl, err := g.limiter.CheckAndRecord(ctx, decision.ClientKey)
	if err != nil {
		decision.Status = ServiceUnavailable
		return decision, err
	}
	decision.RateLimit = rl

	g.logger.Info().
		Str("client_key", decision.ClientKey).
		Int("count", rl.Count).
		Int("total", rl.Total).
		Bool("allowed", rl.Allowed).
		Int("spam_score", decision.Spam.Score).
		Bool("requires_captcha", decision.Spam.RequiresCaptcha).
		Msg("admission check")

	if !rl.Allowed || decision.Spam.RequiresCaptcha {
		if req.CaptchaToken == "" {
			decision.Status = CaptchaRequired
			return decision, nil
		}
		if !g.captcha.Verify(ctx, req.CaptchaToken, req.RemoteAddr) {
			decision.Status = CaptchaFailed
			return decision, nil
		}
		// A verified human still consumed a quota slot; the counter is
		// deliberately not reset, otherwise verification becomes a
		// bypass exploit.
		g.logger.Info().Str("client_key", decision.ClientKey).Msg("captcha verified, admitting rate-limited request")
	}

	decision.Status = Admitted
	return decision, nil
}
