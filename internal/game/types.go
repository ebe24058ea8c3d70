package game

type Tag string

const (
	TagPost   Tag = "POST"
	TagApp    Tag = "APP"
	TagFund   Tag = "FUND"
	TagReset  Tag = "RESET"
	TagSystem Tag = "SYSTEM"
	TagWarn   Tag = "WARN"
)

// LogSink receives one line per command outcome and per stage milestone.
type LogSink interface {
	Append(tag Tag, message string)
}

type discardSink struct{}

func (discardSink) Append(Tag, string) {}

// State is the mutable economy. Only Engine mutates it.
type State struct {
	Users           float64
	Fund            float64
	Units           map[string]int
	StageIndex      int
	PrestigeLevel   int
	CompetitorUsers float64
}

func NewState() State {
	return State{
		Units:           emptyOwned(),
		CompetitorUsers: StarterCompetitorUsers,
	}
}

func (s State) Clone() State {
	out := s
	out.Units = make(map[string]int, len(s.Units))
	for id, n := range s.Units {
		out.Units[id] = n
	}
	return out
}

func emptyOwned() map[string]int {
	owned := make(map[string]int, len(Units))
	for _, u := range Units {
		owned[u.ID] = 0
	}
	return owned
}

type Outcome struct {
	Tag          Tag     `json:"tag"`
	Message      string  `json:"message"`
	UsersDelta   float64 `json:"users_delta"`
	FundDelta    float64 `json:"fund_delta"`
	StageChanged bool    `json:"stage_changed"`
}

type TickReport struct {
	UsersGained      float64 `json:"users_gained"`
	FundGained       float64 `json:"fund_gained"`
	CompetitorGained float64 `json:"competitor_gained"`
	StageChanged     bool    `json:"stage_changed"`
}

type UnitStatus string

const (
	UnitAffordable   UnitStatus = "ok"
	UnitUnaffordable UnitStatus = "unaffordable"
	UnitLocked       UnitStatus = "locked"
)

type UnitView struct {
	Unit
	Owned  int        `json:"owned"`
	Cost   float64    `json:"cost"`
	Status UnitStatus `json:"status"`
}

type SectorStatus string

const (
	SectorCompleted SectorStatus = "completed"
	SectorActive    SectorStatus = "active"
	SectorLocked    SectorStatus = "locked"
)

type SectorView struct {
	Sector
	Status SectorStatus `json:"status"`
}

type View struct {
	Users           float64      `json:"users"`
	Fund            float64      `json:"fund"`
	CompetitorUsers float64      `json:"competitor_users"`
	StageIndex      int          `json:"stage_index"`
	Stage           FundingStage `json:"stage"`
	PrestigeLevel   int          `json:"prestige_level"`
	GrowthBonus     float64      `json:"growth_bonus"`
	RevenuePerUser  float64      `json:"revenue_per_user"`
	UsersPerSec     float64      `json:"users_per_sec"`
	MarketShare     float64      `json:"market_share"`
	CanIPO          bool         `json:"can_ipo"`
	SectorIndex     int          `json:"sector_index"`
	Units           []UnitView   `json:"units"`
	Sectors         []SectorView `json:"sectors"`
}

func NewView(s State) View {
	v := View{
		Users:           s.Users,
		Fund:            s.Fund,
		CompetitorUsers: s.CompetitorUsers,
		StageIndex:      s.StageIndex,
		Stage:           StageAt(s.StageIndex),
		PrestigeLevel:   s.PrestigeLevel,
		GrowthBonus:     GrowthBonus(s.StageIndex, s.PrestigeLevel),
		RevenuePerUser:  RevenuePerUser(s.PrestigeLevel),
		UsersPerSec:     ProductionRate(s.Units, s.StageIndex, s.PrestigeLevel),
		MarketShare:     MarketShare(s.Users, s.CompetitorUsers),
		CanIPO:          CanIPO(s.Users, s.Fund),
		SectorIndex:     ResolveSector(s.Fund, s.PrestigeLevel),
	}
	for _, u := range Units {
		owned := s.Units[u.ID]
		cost := UnitCost(u, owned)
		status := UnitLocked
		if s.Fund >= u.UnlockFund {
			status = UnitUnaffordable
			if s.Fund >= cost {
				status = UnitAffordable
			}
		}
		v.Units = append(v.Units, UnitView{Unit: u, Owned: owned, Cost: cost, Status: status})
	}
	for i, sec := range Sectors {
		status := SectorLocked
		switch {
		case i < v.SectorIndex:
			status = SectorCompleted
		case i == v.SectorIndex:
			status = SectorActive
		}
		v.Sectors = append(v.Sectors, SectorView{Sector: sec, Status: status})
	}
	return v
}
