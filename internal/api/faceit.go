package api

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"vantage/internal/config"
	"vantage/internal/domain"

	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"
)

// FaceitClient is one of the two optional competitive-stat providers.
type FaceitClient struct {
	apiKey  string
	baseURL string
	client  *fasthttp.Client
}

func NewFaceitClient(cfg *config.Config) *FaceitClient {
	return &FaceitClient{
		apiKey:  cfg.FaceitAPIKey,
		baseURL: "https://open.faceit.com/data/v4",
		client:  newHTTPClient(),
	}
}

type faceitPlayerResponse struct {
	PlayerID    string `json:"player_id"`
	Nickname    string `json:"nickname"`
	ActivatedAt string `json:"activated_at"`
	Games       struct {
		CS2 struct {
			FaceitElo  int `json:"faceit_elo"`
			SkillLevel int `json:"skill_level"`
		} `json:"cs2"`
	} `json:"games"`
}

type faceitStatsResponse struct {
	Lifetime map[string]any `json:"lifetime"`
}

type faceitBansResponse struct {
	Items []struct {
		Reason   string     `json:"reason"`
		Type     string     `json:"type"`
		StartsAt time.Time  `json:"starts_at"`
		EndsAt   *time.Time `json:"ends_at"`
	} `json:"items"`
}

// GetStats resolves the Faceit player for a SteamID64 and combines
// lifetime stats with any active bans. The player lookup is required;
// stats and bans degrade to zero values when unavailable.
func (c *FaceitClient) GetStats(ctx context.Context, steamID64 string) (*domain.FaceitStats, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("faceit API key not configured")
	}

	url := fmt.Sprintf("%s/players?game=cs2&game_player_id=%s", c.baseURL, steamID64)
	player, err := doRequest[faceitPlayerResponse](ctx, c.client, url, c.auth())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch faceit player: %w", err)
	}

	result := &domain.FaceitStats{
		FaceitID: player.PlayerID,
		Nickname: player.Nickname,
		Elo:      player.Games.CS2.FaceitElo,
		Level:    player.Games.CS2.SkillLevel,
	}
	if activated, err := time.Parse(time.RFC3339, player.ActivatedAt); err == nil {
		result.AccountAgeDays = int(time.Since(activated).Hours() / 24)
	}

	var (
		stats *faceitStatsResponse
		bans  *faceitBansResponse
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := doRequest[faceitStatsResponse](gCtx, c.client, fmt.Sprintf("%s/players/%s/stats/cs2", c.baseURL, player.PlayerID), c.auth())
		if err == nil {
			stats = s
		}
		return nil
	})
	g.Go(func() error {
		b, err := doRequest[faceitBansResponse](gCtx, c.client, fmt.Sprintf("%s/players/%s/bans", c.baseURL, player.PlayerID), c.auth())
		if err == nil {
			bans = b
		}
		return nil
	})
	_ = g.Wait()

	if stats != nil {
		result.Matches = lifetimeInt(stats.Lifetime, "Matches")
		result.AvgKD = lifetimeFloat(stats.Lifetime, "Average K/D Ratio")
		result.WinRate = lifetimeFloat(stats.Lifetime, "Win Rate %")
	}
	if bans != nil {
		now := time.Now()
		for _, ban := range bans.Items {
			if ban.EndsAt != nil && ban.EndsAt.Before(now) {
				continue
			}
			result.ActiveBans = append(result.ActiveBans, domain.FaceitBan{
				Reason:   ban.Reason,
				StartsAt: ban.StartsAt,
			})
		}
		result.HasBan = len(result.ActiveBans) > 0
	}

	return result, nil
}

func (c *FaceitClient) auth() header {
	return header{name: "Authorization", value: "Bearer " + c.apiKey}
}

// Faceit lifetime stats arrive as strings.
func lifetimeInt(lifetime map[string]any, key string) int {
	if s, ok := lifetime[key].(string); ok {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return 0
}

func lifetimeFloat(lifetime map[string]any, key string) float64 {
	if s, ok := lifetime[key].(string); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return 0
}
