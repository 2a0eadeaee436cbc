package risk

import (
	"fmt"
	"strings"
	"time"
	"vantage/internal/domain"
)

const (
	weightNewAccount       = 30
	weightHiddenProfile    = 10
	weightVACBanned        = 40
	weightGameBanned       = 25
	weightFaceitBanned     = 35
	weightInconsistentStat = 25
	weightHighKDLowMatches = 20
	weightNewFaceitSkilled = 20
)

// Input is the merged profile data the scorer evaluates. Steam is the
// anchor section and always present; the rest are optional.
type Input struct {
	Steam   *domain.SteamAccount
	Faceit  *domain.FaceitStats
	Leetify *domain.LeetifyStats
}

// Calculate derives a weighted abuse-risk assessment. Rules are
// evaluated in fixed order, each contributing at most one flag; the
// total is the clamped sum of triggered weights. No I/O, deterministic
// for identical input.
func Calculate(in Input) domain.RiskAssessment {
	return calculateAt(in, time.Now())
}

func calculateAt(in Input, now time.Time) domain.RiskAssessment {
	var flags []domain.RiskFlag
	totalScore := 0

	addFlag := func(flag string, weight int, reason string) {
		flags = append(flags, domain.RiskFlag{Flag: flag, Weight: weight, Reason: reason})
		totalScore += weight
	}

	if in.Steam != nil {
		if !in.Steam.AccountCreated.IsZero() {
			ageYears := now.Sub(in.Steam.AccountCreated).Hours() / (24 * 365)
			if ageYears < 1 {
				addFlag("NEW_ACCOUNT", weightNewAccount,
					fmt.Sprintf("Account created less than 1 year ago (%.1f years)", ageYears))
			}
		}

		if in.Steam.IsPrivate {
			addFlag("HIDDEN_PROFILE", weightHiddenProfile, "Profile is set to private")
		}

		// VAC takes precedence and suppresses the game-ban flag.
		if in.Steam.VACBanned {
			addFlag("VAC_BANNED", weightVACBanned,
				banReason("VAC ban detected", in.Steam.DaysSinceLastBan))
		} else if in.Steam.GameBanned {
			addFlag("GAME_BANNED", weightGameBanned,
				banReason("Game ban detected", in.Steam.DaysSinceLastBan))
		}
	}

	if in.Faceit != nil && in.Faceit.HasBan && len(in.Faceit.ActiveBans) > 0 {
		reasons := make([]string, len(in.Faceit.ActiveBans))
		for i, ban := range in.Faceit.ActiveBans {
			reasons[i] = ban.Reason
		}
		addFlag("FACEIT_BANNED", weightFaceitBanned,
			fmt.Sprintf("Active Faceit ban(s): %s", strings.Join(reasons, ", ")))
	}

	// High aim with low positioning suggests possible aim assistance.
	if in.Leetify != nil {
		aim := in.Leetify.Rating.Aim
		positioning := in.Leetify.Rating.Positioning
		if aim > 90 && positioning < 30 {
			addFlag("INCONSISTENT_STATS", weightInconsistentStat,
				fmt.Sprintf("Leetify: High aim (%.0f) but low positioning (%.0f)", aim, positioning))
		}
	}

	if in.Faceit != nil {
		if in.Faceit.AvgKD > 1.5 && in.Faceit.Matches < 50 {
			addFlag("HIGH_KD_LOW_MATCHES", weightHighKDLowMatches,
				fmt.Sprintf("High K/D (%.2f) with only %d matches", in.Faceit.AvgKD, in.Faceit.Matches))
		}

		if in.Faceit.AccountAgeDays < 30 && in.Faceit.Level >= 8 {
			addFlag("NEW_FACEIT_HIGH_SKILL", weightNewFaceitSkilled,
				fmt.Sprintf("New Faceit account (%d days) with high level (%d)", in.Faceit.AccountAgeDays, in.Faceit.Level))
		}
	}

	if totalScore > 100 {
		totalScore = 100
	}

	return domain.RiskAssessment{
		TotalScore:   totalScore,
		Level:        levelFor(totalScore),
		Flags:        flags,
		CalculatedAt: now,
	}
}

func levelFor(score int) domain.RiskLevel {
	switch {
	case score >= 70:
		return domain.RiskCritical
	case score >= 50:
		return domain.RiskHigh
	case score >= 30:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

func banReason(prefix string, daysSince int) string {
	if daysSince > 0 {
		return fmt.Sprintf("%s (%d days ago)", prefix, daysSince)
	}
	return prefix
}
