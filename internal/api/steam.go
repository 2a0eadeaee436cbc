package api

import (
	"context"
	"fmt"
	"time"
	"vantage/internal/config"
	"vantage/internal/domain"

	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"
)

const cs2AppID = 730

// SteamClient talks to the Steam Web API. It is the mandatory account
// provider and also backs the three per-mode stat providers, which all
// read from the same per-game stats endpoint.
type SteamClient struct {
	apiKey  string
	baseURL string
	client  *fasthttp.Client
}

func NewSteamClient(cfg *config.Config) *SteamClient {
	return &SteamClient{
		apiKey:  cfg.SteamAPIKey,
		baseURL: "https://api.steampowered.com",
		client:  newHTTPClient(),
	}
}

type playerSummariesResponse struct {
	Response struct {
		Players []struct {
			SteamID                  string `json:"steamid"`
			PersonaName              string `json:"personaname"`
			AvatarFull               string `json:"avatarfull"`
			ProfileURL               string `json:"profileurl"`
			TimeCreated              int64  `json:"timecreated"`
			CommunityVisibilityState int    `json:"communityvisibilitystate"`
		} `json:"players"`
	} `json:"response"`
}

type playerBansResponse struct {
	Players []struct {
		SteamID          string `json:"SteamId"`
		VACBanned        bool   `json:"VACBanned"`
		NumberOfVACBans  int    `json:"NumberOfVACBans"`
		NumberOfGameBans int    `json:"NumberOfGameBans"`
		DaysSinceLastBan int    `json:"DaysSinceLastBan"`
	} `json:"players"`
}

type steamLevelResponse struct {
	Response struct {
		PlayerLevel int `json:"player_level"`
	} `json:"response"`
}

type resolveVanityResponse struct {
	Response struct {
		Success int    `json:"success"`
		SteamID string `json:"steamid"`
	} `json:"response"`
}

type userStatsResponse struct {
	PlayerStats struct {
		Stats []struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		} `json:"stats"`
	} `json:"playerstats"`
}

// GetProfile fetches the account section. Summaries and bans are
// required; the community level is best-effort and defaults to zero.
func (c *SteamClient) GetProfile(ctx context.Context, steamID64 string) (*domain.SteamAccount, error) {
	var (
		summaries *playerSummariesResponse
		bans      *playerBansResponse
		level     int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		url := fmt.Sprintf("%s/ISteamUser/GetPlayerSummaries/v2/?key=%s&steamids=%s", c.baseURL, c.apiKey, steamID64)
		summaries, err = doRequest[playerSummariesResponse](gCtx, c.client, url)
		return err
	})
	g.Go(func() error {
		var err error
		url := fmt.Sprintf("%s/ISteamUser/GetPlayerBans/v1/?key=%s&steamids=%s", c.baseURL, c.apiKey, steamID64)
		bans, err = doRequest[playerBansResponse](gCtx, c.client, url)
		return err
	})
	g.Go(func() error {
		url := fmt.Sprintf("%s/IPlayerService/GetSteamLevel/v1/?key=%s&steamid=%s", c.baseURL, c.apiKey, steamID64)
		resp, err := doRequest[steamLevelResponse](gCtx, c.client, url)
		if err != nil {
			return nil
		}
		level = resp.Response.PlayerLevel
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch steam profile: %w", err)
	}

	if len(summaries.Response.Players) == 0 {
		return nil, fmt.Errorf("steam profile not found: %s", steamID64)
	}
	player := summaries.Response.Players[0]

	account := &domain.SteamAccount{
		SteamID64:  steamID64,
		Username:   player.PersonaName,
		Avatar:     player.AvatarFull,
		ProfileURL: player.ProfileURL,
		Level:      level,
		IsPrivate:  player.CommunityVisibilityState != 3,
	}
	if player.TimeCreated > 0 {
		account.AccountCreated = time.Unix(player.TimeCreated, 0).UTC()
		account.YearsOfService = time.Since(account.AccountCreated).Hours() / (24 * 365)
	}
	if len(bans.Players) > 0 {
		ban := bans.Players[0]
		account.VACBanned = ban.VACBanned
		account.GameBanned = ban.NumberOfGameBans > 0
		account.DaysSinceLastBan = ban.DaysSinceLastBan
	}

	return account, nil
}

// ResolveVanityURL maps a custom community URL name to a SteamID64.
func (c *SteamClient) ResolveVanityURL(ctx context.Context, vanity string) (string, error) {
	url := fmt.Sprintf("%s/ISteamUser/ResolveVanityURL/v1/?key=%s&vanityurl=%s", c.baseURL, c.apiKey, vanity)
	resp, err := doRequest[resolveVanityResponse](ctx, c.client, url)
	if err != nil {
		return "", err
	}
	if resp.Response.Success != 1 || resp.Response.SteamID == "" {
		return "", fmt.Errorf("vanity URL not found: %s", vanity)
	}
	return resp.Response.SteamID, nil
}

func (c *SteamClient) getGameStats(ctx context.Context, steamID64 string) (map[string]int, error) {
	url := fmt.Sprintf("%s/ISteamUserStats/GetUserStatsForGame/v2/?appid=%d&key=%s&steamid=%s", c.baseURL, cs2AppID, c.apiKey, steamID64)
	resp, err := doRequest[userStatsResponse](ctx, c.client, url)
	if err != nil {
		return nil, err
	}
	stats := make(map[string]int, len(resp.PlayerStats.Stats))
	for _, s := range resp.PlayerStats.Stats {
		stats[s.Name] = s.Value
	}
	return stats, nil
}

// Premier ratings are not exposed by the Web API, so matches are
// estimated from rounds played (~24 rounds per match).
func (c *SteamClient) GetPremierStats(ctx context.Context, steamID64 string) (*domain.PremierStats, error) {
	stats, err := c.getGameStats(ctx, steamID64)
	if err != nil {
		return nil, err
	}

	wins := stats["total_matches_won"]
	if wins == 0 {
		wins = stats["total_wins"]
	}
	matches, winRate := estimateMatches(stats)

	return &domain.PremierStats{
		Rating:        0,
		Wins:          wins,
		MatchesPlayed: matches,
		WinRate:       winRate,
		RankName:      "Unknown (Private/Not Available)",
	}, nil
}

func (c *SteamClient) GetCompetitiveStats(ctx context.Context, steamID64 string) (*domain.CompetitiveStats, error) {
	stats, err := c.getGameStats(ctx, steamID64)
	if err != nil {
		return nil, err
	}

	matches, winRate := estimateMatches(stats)

	return &domain.CompetitiveStats{
		Wins:          stats["total_matches_won"],
		MatchesPlayed: matches,
		WinRate:       winRate,
		RankName:      "Unknown (Private/Not Available)",
	}, nil
}

func (c *SteamClient) GetWingmanStats(ctx context.Context, steamID64 string) (*domain.WingmanStats, error) {
	stats, err := c.getGameStats(ctx, steamID64)
	if err != nil {
		return nil, err
	}

	return &domain.WingmanStats{
		Wins:     stats["total_wins_wingman"],
		RankName: "Unknown (Private/Not Available)",
	}, nil
}

func estimateMatches(stats map[string]int) (matches int, winRate float64) {
	matches = stats["total_rounds_played"] / 24
	if matches > 0 {
		winRate = float64(stats["total_matches_won"]) / float64(matches) * 100
	}
	return matches, winRate
}
