package steamid

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVanity struct {
	ids   map[string]string
	calls []string
}

func (s *stubVanity) ResolveVanityURL(ctx context.Context, vanity string) (string, error) {
	s.calls = append(s.calls, vanity)
	if id, ok := s.ids[vanity]; ok {
		return id, nil
	}
	return "", errors.New("no match")
}

func TestResolveSteamID64Passthrough(t *testing.T) {
	vanity := &stubVanity{}
	r := NewResolver(vanity)

	id, err := r.Resolve(context.Background(), "76561198012345678")
	require.NoError(t, err)
	assert.Equal(t, "76561198012345678", id)
	assert.Empty(t, vanity.calls, "a literal id must not hit the vanity api")
}

func TestResolveTrimsWhitespace(t *testing.T) {
	r := NewResolver(&stubVanity{})

	id, err := r.Resolve(context.Background(), "  76561198012345678\n")
	require.NoError(t, err)
	assert.Equal(t, "76561198012345678", id)
}

func TestResolveProfileURL(t *testing.T) {
	vanity := &stubVanity{}
	r := NewResolver(vanity)

	for _, input := range []string{
		"https://steamcommunity.com/profiles/76561198012345678",
		"http://steamcommunity.com/profiles/76561198012345678/",
		"steamcommunity.com/profiles/76561198012345678?l=english",
	} {
		id, err := r.Resolve(context.Background(), input)
		require.NoError(t, err, input)
		assert.Equal(t, "76561198012345678", id, input)
	}
	assert.Empty(t, vanity.calls)
}

func TestResolveVanityURL(t *testing.T) {
	vanity := &stubVanity{ids: map[string]string{"gabelogannewell": "76561197960287930"}}
	r := NewResolver(vanity)

	id, err := r.Resolve(context.Background(), "https://steamcommunity.com/id/gabelogannewell/")
	require.NoError(t, err)
	assert.Equal(t, "76561197960287930", id)
	assert.Equal(t, []string{"gabelogannewell"}, vanity.calls)
}

func TestResolveBareVanityName(t *testing.T) {
	vanity := &stubVanity{ids: map[string]string{"gabelogannewell": "76561197960287930"}}
	r := NewResolver(vanity)

	id, err := r.Resolve(context.Background(), "gabelogannewell")
	require.NoError(t, err)
	assert.Equal(t, "76561197960287930", id)
}

func TestResolveEmptyInput(t *testing.T) {
	r := NewResolver(&stubVanity{})

	_, err := r.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrUnresolvable)
}

func TestResolveUnknownVanity(t *testing.T) {
	r := NewResolver(&stubVanity{})

	_, err := r.Resolve(context.Background(), "nobody-here")
	assert.ErrorIs(t, err, ErrUnresolvable)
	assert.Contains(t, err.Error(), "nobody-here")
}

func TestResolveIsDeterministic(t *testing.T) {
	vanity := &stubVanity{ids: map[string]string{"gabe": "76561197960287930"}}
	r := NewResolver(vanity)

	first, err := r.Resolve(context.Background(), "gabe")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "gabe")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("76561198012345678"))
	assert.False(t, IsValid("7656119801234567"))   // too short
	assert.False(t, IsValid("765611980123456789")) // too long
	assert.False(t, IsValid("me"))
	assert.False(t, IsValid(""))
}
