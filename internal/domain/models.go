package domain

import (
	"time"
)

// UserProfile is the aggregate returned to the presentation layer.
// Every section except Steam is optional: a nil pointer means
// "not yet fetched", not "known absent".
type UserProfile struct {
	Steam       *SteamAccount     `json:"steam"`
	Faceit      *FaceitStats      `json:"faceit,omitempty"`
	Leetify     *LeetifyStats     `json:"leetify,omitempty"`
	Premier     *PremierStats     `json:"premier,omitempty"`
	Competitive *CompetitiveStats `json:"competitive,omitempty"`
	Wingman     *WingmanStats     `json:"wingman,omitempty"`
	Risk        *RiskAssessment   `json:"risk,omitempty"`
}

type SteamAccount struct {
	SteamID64        string    `json:"steamId64"`
	Username         string    `json:"username"`
	Avatar           string    `json:"avatar"`
	ProfileURL       string    `json:"profileUrl"`
	AccountCreated   time.Time `json:"accountCreated"`
	Level            int       `json:"level"`
	YearsOfService   float64   `json:"yearsOfService"`
	IsPrivate        bool      `json:"isPrivate"`
	VACBanned        bool      `json:"vacBanned"`
	GameBanned       bool      `json:"gameBanned"`
	DaysSinceLastBan int       `json:"daysSinceLastBan"`
}

type FaceitStats struct {
	FaceitID       string      `json:"faceitId"`
	Nickname       string      `json:"nickname"`
	Elo            int         `json:"elo"`
	Level          int         `json:"level"`
	Matches        int         `json:"matches"`
	AvgKD          float64     `json:"avgKD"`
	WinRate        float64     `json:"winRate"`
	AccountAgeDays int         `json:"accountAge"`
	HasBan         bool        `json:"hasBan"`
	ActiveBans     []FaceitBan `json:"activeBans,omitempty"`
}

type FaceitBan struct {
	Reason   string    `json:"reason"`
	StartsAt time.Time `json:"startsAt"`
}

type LeetifyStats struct {
	Rating          LeetifyRating `json:"rating"`
	Ranks           LeetifyRanks  `json:"ranks"`
	MatchCount      int           `json:"matchCount"`
	RecentTeammates []Teammate    `json:"recent_teammates,omitempty"`
}

type LeetifyRating struct {
	Aim         float64 `json:"aim"`
	Positioning float64 `json:"positioning"`
	Utility     float64 `json:"utility"`
	Clutch      float64 `json:"clutch"`
	Opening     float64 `json:"opening"`
}

type LeetifyRanks struct {
	Leetify float64 `json:"leetify"`
}

// Teammate starts as a bare identity from the Leetify feed; Name and
// Avatar are filled in by a best-effort enrichment pass.
type Teammate struct {
	SteamID64     string  `json:"steam64_id"`
	Name          string  `json:"name,omitempty"`
	Avatar        string  `json:"avatar,omitempty"`
	MatchesPlayed int     `json:"matchesPlayed"`
	WinRate       float64 `json:"winRate"`
}

type PremierStats struct {
	Rating        int     `json:"rating"`
	Wins          int     `json:"wins"`
	MatchesPlayed int     `json:"matchesPlayed"`
	WinRate       float64 `json:"winRate"`
	RankName      string  `json:"rankName"`
}

type CompetitiveStats struct {
	Wins          int     `json:"wins"`
	MatchesPlayed int     `json:"matchesPlayed"`
	WinRate       float64 `json:"winRate"`
	RankName      string  `json:"rankName"`
}

type WingmanStats struct {
	Wins     int    `json:"wins"`
	RankName string `json:"rankName"`
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type RiskAssessment struct {
	TotalScore   int        `json:"totalScore"`
	Level        RiskLevel  `json:"level"`
	Flags        []RiskFlag `json:"flags"`
	CalculatedAt time.Time  `json:"calculatedAt"`
}

type RiskFlag struct {
	Flag   string `json:"flag"`
	Weight int    `json:"weight"`
	Reason string `json:"reason"`
}

// SpamAssessment is per-request and never persisted.
type SpamAssessment struct {
	Score           int      `json:"score"`
	Reasons         []string `json:"reasons"`
	RequiresCaptcha bool     `json:"requiresCaptcha"`
	IsSpam          bool     `json:"isSpam"`
}
