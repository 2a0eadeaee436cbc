package antispam

import (
	"regexp"
	"vantage/internal/domain"

	"github.com/mssola/useragent"
)

const (
	weightSuspiciousUA  = 30
	weightGenericAccept = 10
	weightMissingRefer  = 15

	captchaThreshold = 25
	blockThreshold   = 50
)

var suspiciousUAPattern = regexp.MustCompile(`(?i)(bot|crawler|spider|scraper|automation|script)`)

// RequestMeta is the slice of request metadata the classifier looks at.
type RequestMeta struct {
	UserAgent string
	Accept    string
	Referer   string
}

// Classifier scores request metadata against fixed, additive
// heuristics. Stateless and deterministic: identical input always
// yields the identical assessment.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

func (c *Classifier) Classify(meta RequestMeta) domain.SpamAssessment {
	var (
		score   int
		reasons []string
	)

	if meta.UserAgent != "" && isSuspiciousUserAgent(meta.UserAgent) {
		reasons = append(reasons, "Suspicious user agent")
		score += weightSuspiciousUA
	}

	if meta.Accept == "*/*" {
		reasons = append(reasons, "Generic accept header")
		score += weightGenericAccept
	}

	if meta.Referer == "" {
		reasons = append(reasons, "Missing referer header")
		score += weightMissingRefer
	}

	return domain.SpamAssessment{
		Score:           score,
		Reasons:         reasons,
		RequiresCaptcha: score >= captchaThreshold,
		IsSpam:          score >= blockThreshold,
	}
}

func isSuspiciousUserAgent(ua string) bool {
	if suspiciousUAPattern.MatchString(ua) {
		return true
	}
	return useragent.New(ua).Bot()
}
