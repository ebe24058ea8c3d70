package game

type Role string

const (
	RoleCreator   Role = "creator"
	RoleDeveloper Role = "developer"
	RoleMiniapp   Role = "miniapp"
	RoleAI        Role = "ai"
)

type Unit struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Role       Role    `json:"role"`
	BaseCost   float64 `json:"base_cost"`
	Scaling    float64 `json:"scaling"`
	BaseRate   float64 `json:"base_rate"`
	UnlockFund float64 `json:"unlock_fund"`
}

type FundingStage struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	MinFund float64 `json:"min_fund"`
	Bonus   float64 `json:"bonus"`
}

// Sector is a narrative progress marker; it never feeds a formula.
type Sector struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Description         string  `json:"description"`
	RequirementFund     float64 `json:"requirement_fund"`
	RequirementPrestige int     `json:"requirement_prestige"`
}

var Units = []Unit{
	{ID: "creator_junior", Name: "Creator Studio", Role: RoleCreator, BaseCost: 40, Scaling: 1.12, BaseRate: 5, UnlockFund: 0},
	{ID: "dev_core", Name: "Developer Hub", Role: RoleDeveloper, BaseCost: 300, Scaling: 1.15, BaseRate: 15, UnlockFund: 200},
	{ID: "miniapp_lab", Name: "Miniapp Factory", Role: RoleMiniapp, BaseCost: 1200, Scaling: 1.17, BaseRate: 60, UnlockFund: 800},
	{ID: "ai_agent_swarm", Name: "AI Agent Lab", Role: RoleAI, BaseCost: 6000, Scaling: 1.2, BaseRate: 250, UnlockFund: 4000},
}

var Stages = []FundingStage{
	{ID: "boot", Name: "Bootstrapped", MinFund: 0, Bonus: 1},
	{ID: "seed", Name: "Seed Round", MinFund: 1_000, Bonus: 1.2},
	{ID: "seriesA", Name: "Series A", MinFund: 10_000, Bonus: 1.5},
	{ID: "seriesB", Name: "Series B", MinFund: 100_000, Bonus: 2},
	{ID: "unicorn", Name: "Unicorn", MinFund: 1_000_000, Bonus: 3},
}

var Sectors = []Sector{
	{ID: "local", Name: "Base Community", Description: "Start posting on Base. Find your first 1,000 believers.", RequirementFund: 0, RequirementPrestige: 0},
	{ID: "launchpad", Name: "Startup Launch Pad", Description: "Secure early funding and launch your first Base App.", RequirementFund: 1_000, RequirementPrestige: 0},
	{ID: "network", Name: "Base Network Expansion", Description: "Multiple apps, thousands of users, devs joining daily.", RequirementFund: 10_000, RequirementPrestige: 0},
	{ID: "empire", Name: "Business Empire", Description: "You're a category leader. Everything runs on your stack.", RequirementFund: 50_000, RequirementPrestige: 1},
	{ID: "global", Name: "Global Everything App", Description: "IPO done. You compete with legacy giants worldwide.", RequirementFund: 200_000, RequirementPrestige: 2},
	{ID: "universal", Name: "Universal Baseverse", Description: "Your app is the interface for the entire universe.", RequirementFund: 1_000_000, RequirementPrestige: 3},
}

func UnitByID(id string) (Unit, bool) {
	for _, u := range Units {
		if u.ID == id {
			return u, true
		}
	}
	return Unit{}, false
}

// StageAt clamps i into the stage table.
func StageAt(i int) FundingStage {
	if i < 0 {
		i = 0
	}
	if i >= len(Stages) {
		i = len(Stages) - 1
	}
	return Stages[i]
}
