package game

import (
	"errors"
	"fmt"
	"math"
)

const (
	StarterCompetitorUsers = 2_000.0

	ManualPostUsers = 8.0
	PitchUserFloor  = 10.0
	PitchShare      = 0.05

	BaseRevenuePerUser = 0.2
	PrestigeStep       = 0.5

	IPOFundFloor  = 50_000.0
	IPOUsersFloor = 5_000.0

	CompetitorBaseGrowth     = 15.0
	CompetitorStageGrowth    = 10.0
	CompetitorPrestigeGrowth = 5.0
	CompetitorKeepRatio      = 0.6
	CompetitorIPOBoost       = 5_000.0
)

var (
	ErrInsufficientUsers     = errors.New("insufficient users")
	ErrNotUnlocked           = errors.New("unit not unlocked")
	ErrInsufficientFund      = errors.New("insufficient fund")
	ErrIPORequirementsNotMet = errors.New("ipo requirements not met")
	ErrCorruptSnapshot       = errors.New("corrupt snapshot")
	ErrUnknownUnit           = errors.New("unknown unit")
)

// ErrorKind returns the stable name of a command failure, or "" for nil and
// errors outside the game taxonomy.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientUsers):
		return "InsufficientUsers"
	case errors.Is(err, ErrNotUnlocked):
		return "NotUnlocked"
	case errors.Is(err, ErrInsufficientFund):
		return "InsufficientFund"
	case errors.Is(err, ErrIPORequirementsNotMet):
		return "IPORequirementsNotMet"
	case errors.Is(err, ErrCorruptSnapshot):
		return "CorruptSnapshot"
	case errors.Is(err, ErrUnknownUnit):
		return "UnknownUnit"
	default:
		return ""
	}
}

func PrestigeBonus(prestigeLevel int) float64 {
	return 1 + float64(prestigeLevel)*PrestigeStep
}

// GrowthBonus multiplies every production and manual-action yield.
func GrowthBonus(stageIndex, prestigeLevel int) float64 {
	return StageAt(stageIndex).Bonus * PrestigeBonus(prestigeLevel)
}

func RevenuePerUser(prestigeLevel int) float64 {
	return BaseRevenuePerUser * PrestigeBonus(prestigeLevel)
}

func UnitCost(u Unit, owned int) float64 {
	return math.Round(u.BaseCost * math.Pow(u.Scaling, float64(owned)))
}

func ProductionRate(owned map[string]int, stageIndex, prestigeLevel int) float64 {
	base := 0.0
	for _, u := range Units {
		base += float64(owned[u.ID]) * u.BaseRate
	}
	return base * GrowthBonus(stageIndex, prestigeLevel)
}

func CompetitorGrowth(stageIndex, prestigeLevel int) float64 {
	return CompetitorBaseGrowth + float64(stageIndex)*CompetitorStageGrowth + float64(prestigeLevel)*CompetitorPrestigeGrowth
}

// ResolveStage returns the highest stage whose MinFund is covered by fund.
func ResolveStage(fund float64) int {
	return resolveStage(Stages, fund)
}

func resolveStage(stages []FundingStage, fund float64) int {
	for i := len(stages) - 1; i >= 0; i-- {
		if fund >= stages[i].MinFund {
			return i
		}
	}
	return 0
}

// ResolveSector keeps the last sector in table order whose fund and prestige
// requirements are both met. With non-monotonic requirement pairs this can
// land below a sector met earlier in the table.
func ResolveSector(fund float64, prestigeLevel int) int {
	return resolveSector(Sectors, fund, prestigeLevel)
}

func resolveSector(sectors []Sector, fund float64, prestigeLevel int) int {
	idx := 0
	for i, s := range sectors {
		if fund >= s.RequirementFund && prestigeLevel >= s.RequirementPrestige {
			idx = i
		}
	}
	return idx
}

func CanIPO(users, fund float64) bool {
	return fund >= IPOFundFloor && users >= IPOUsersFloor
}

func MarketShare(users, competitorUsers float64) float64 {
	total := users + competitorUsers
	if total <= 0 {
		return 0
	}
	return users / total * 100
}

// FormatNumber renders n compactly: 1.23K, 4.50M, 7.00B.
func FormatNumber(n float64) string {
	switch {
	case math.IsInf(n, 0) || math.IsNaN(n):
		return "∞"
	case n >= 1e9:
		return fmt.Sprintf("%.2fB", n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("%.2fM", n/1e6)
	case n >= 1e3:
		return fmt.Sprintf("%.2fK", n/1e3)
	default:
		return fmt.Sprintf("%.0f", n)
	}
}

func clampNonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
