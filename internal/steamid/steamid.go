package steamid

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrUnresolvable = errors.New("could not resolve steam identity")

var (
	steamID64Pattern  = regexp.MustCompile(`^7656119\d{10}$`)
	profileURLPattern = regexp.MustCompile(`steamcommunity\.com/profiles/(\d+)`)
	vanityURLPattern  = regexp.MustCompile(`steamcommunity\.com/id/([^/?]+)`)
)

// VanityResolver turns a custom community URL name into a SteamID64.
// Backed by the Steam Web API in production, faked in tests.
type VanityResolver interface {
	ResolveVanityURL(ctx context.Context, vanity string) (string, error)
}

// Resolver normalizes any user-supplied handle (SteamID64, profile URL,
// vanity URL, or bare vanity name) into a canonical SteamID64.
// Resolution is idempotent: the same input yields the same identity or
// a deterministic failure.
type Resolver struct {
	vanity VanityResolver
}

func NewResolver(vanity VanityResolver) *Resolver {
	return &Resolver{vanity: vanity}
}

func (r *Resolver) Resolve(ctx context.Context, input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty input", ErrUnresolvable)
	}

	if steamID64Pattern.MatchString(trimmed) {
		return trimmed, nil
	}

	if m := profileURLPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1], nil
	}

	vanity := trimmed
	if m := vanityURLPattern.FindStringSubmatch(trimmed); m != nil {
		vanity = m[1]
	}

	id, err := r.vanity.ResolveVanityURL(ctx, vanity)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrUnresolvable, vanity, err)
	}
	return id, nil
}

// IsValid reports whether s is a well-formed SteamID64.
func IsValid(s string) bool {
	return steamID64Pattern.MatchString(s)
}
