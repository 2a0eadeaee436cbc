package api

import (
	"context"
	"fmt"
	"vantage/internal/config"
	"vantage/internal/domain"

	"github.com/valyala/fasthttp"
)

// LeetifyClient is the second optional competitive-stat provider and
// the source of the recent-teammates list.
type LeetifyClient struct {
	apiKey  string
	baseURL string
	client  *fasthttp.Client
}

func NewLeetifyClient(cfg *config.Config) *LeetifyClient {
	return &LeetifyClient{
		apiKey:  cfg.LeetifyAPIKey,
		baseURL: "https://api.leetify.com/api",
		client:  newHTTPClient(),
	}
}

type leetifyProfileResponse struct {
	Ratings struct {
		Aim         float64 `json:"aim"`
		Positioning float64 `json:"positioning"`
		Utility     float64 `json:"utility"`
		Clutch      float64 `json:"clutch"`
		Opening     float64 `json:"opening"`
		Leetify     float64 `json:"leetify"`
	} `json:"ratings"`
	Games           []struct{} `json:"games"`
	RecentTeammates []struct {
		SteamID64     string  `json:"steam64_id"`
		MatchesPlayed int     `json:"matches_played"`
		WinRate       float64 `json:"win_rate"`
	} `json:"recentTeammates"`
}

func (c *LeetifyClient) GetStats(ctx context.Context, steamID64 string) (*domain.LeetifyStats, error) {
	url := fmt.Sprintf("%s/profile/%s", c.baseURL, steamID64)
	var headers []header
	if c.apiKey != "" {
		headers = append(headers, header{name: "Authorization", value: "Bearer " + c.apiKey})
	}

	profile, err := doRequest[leetifyProfileResponse](ctx, c.client, url, headers...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leetify profile: %w", err)
	}

	stats := &domain.LeetifyStats{
		Rating: domain.LeetifyRating{
			Aim:         profile.Ratings.Aim,
			Positioning: profile.Ratings.Positioning,
			Utility:     profile.Ratings.Utility,
			Clutch:      profile.Ratings.Clutch,
			Opening:     profile.Ratings.Opening,
		},
		Ranks:      domain.LeetifyRanks{Leetify: profile.Ratings.Leetify},
		MatchCount: len(profile.Games),
	}
	for _, t := range profile.RecentTeammates {
		stats.RecentTeammates = append(stats.RecentTeammates, domain.Teammate{
			SteamID64:     t.SteamID64,
			MatchesPlayed: t.MatchesPlayed,
			WinRate:       t.WinRate,
		})
	}

	return stats, nil
}
