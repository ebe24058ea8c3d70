package game

import "fmt"

// Engine owns a State and applies ticks and player commands to it. It is not
// safe for concurrent use; hosts serialise access.
type Engine struct {
	st   State
	sink LogSink
}

func NewEngine(st State, sink LogSink) *Engine {
	if sink == nil {
		sink = discardSink{}
	}
	if st.Units == nil {
		st.Units = emptyOwned()
	}
	return &Engine{st: st.Clone(), sink: sink}
}

func (e *Engine) State() State {
	return e.st.Clone()
}

func (e *Engine) View() View {
	return NewView(e.st)
}

func (e *Engine) Snapshot() Snapshot {
	return e.st.Snapshot()
}

func (e *Engine) growthBonus() float64 {
	return GrowthBonus(e.st.StageIndex, e.st.PrestigeLevel)
}

func (e *Engine) revenuePerUser() float64 {
	return RevenuePerUser(e.st.PrestigeLevel)
}

func (e *Engine) Tick() TickReport {
	var rep TickReport
	rate := ProductionRate(e.st.Units, e.st.StageIndex, e.st.PrestigeLevel)
	if rate > 0 {
		rep.UsersGained = rate
		rep.FundGained = rate * e.revenuePerUser()
		e.st.Users += rep.UsersGained
		e.st.Fund += rep.FundGained
	}
	rep.CompetitorGained = CompetitorGrowth(e.st.StageIndex, e.st.PrestigeLevel)
	e.st.CompetitorUsers += rep.CompetitorGained
	rep.StageChanged = e.resolveStage()
	return rep
}

func (e *Engine) ManualPost() (Outcome, error) {
	gained := ManualPostUsers * e.growthBonus()
	fund := gained * e.revenuePerUser()
	e.st.Users += gained
	e.st.Fund += fund

	out := Outcome{
		Tag:        TagPost,
		Message:    fmt.Sprintf("Baseposting hits. +%.0f users (total: %.0f).", gained, e.st.Users),
		UsersDelta: gained,
		FundDelta:  fund,
	}
	e.sink.Append(out.Tag, out.Message)
	out.StageChanged = e.resolveStage()
	return out, nil
}

func (e *Engine) PitchInvestors() (Outcome, error) {
	if e.st.Users < PitchUserFloor {
		return e.fail(ErrInsufficientUsers, "Investors want to see at least %.0f users before listening to your pitch.", PitchUserFloor)
	}
	raised := e.st.Users * PitchShare * e.growthBonus() * e.revenuePerUser()
	e.st.Fund += raised

	out := Outcome{
		Tag:       TagFund,
		Message:   fmt.Sprintf("You pitch investors with %s users. Raised ~%s Fund.", FormatNumber(e.st.Users), FormatNumber(raised)),
		FundDelta: raised,
	}
	e.sink.Append(out.Tag, out.Message)
	out.StageChanged = e.resolveStage()
	return out, nil
}

func (e *Engine) PurchaseUnit(id string) (Outcome, error) {
	u, ok := UnitByID(id)
	if !ok {
		return e.fail(ErrUnknownUnit, "No Base App unit named %q.", id)
	}
	if e.st.Fund < u.UnlockFund {
		return e.fail(ErrNotUnlocked, "%s unlocks at %s Fund. Keep building.", u.Name, FormatNumber(u.UnlockFund))
	}
	owned := e.st.Units[u.ID]
	cost := UnitCost(u, owned)
	if e.st.Fund < cost {
		return e.fail(ErrInsufficientFund, "Not enough Fund to expand %s. Need %s Fund.", u.Name, FormatNumber(cost))
	}

	before := e.st.Fund
	e.st.Fund = clampNonNegative(e.st.Fund - cost)
	e.st.Units[u.ID] = owned + 1

	out := Outcome{
		Tag:       TagApp,
		Message:   fmt.Sprintf("%s hired/launched. +%g users/sec (total units: %d).", u.Name, u.BaseRate, owned+1),
		FundDelta: e.st.Fund - before,
	}
	e.sink.Append(out.Tag, out.Message)
	out.StageChanged = e.resolveStage()
	return out, nil
}

// Prestige performs the IPO reset: progress is wiped, the prestige level rises
// by one and the competitor is rescaled rather than reset.
func (e *Engine) Prestige() (Outcome, error) {
	if !CanIPO(e.st.Users, e.st.Fund) {
		return e.fail(ErrIPORequirementsNotMet, "IPO requires at least %s users and %s Fund. Keep building.",
			FormatNumber(IPOUsersFloor), FormatNumber(IPOFundFloor))
	}

	out := Outcome{
		Tag:          TagReset,
		UsersDelta:   -e.st.Users,
		FundDelta:    -e.st.Fund,
		StageChanged: e.st.StageIndex != 0,
	}
	e.st.PrestigeLevel++
	e.st.Users = 0
	e.st.Fund = 0
	e.st.Units = emptyOwned()
	e.st.StageIndex = 0
	e.st.CompetitorUsers = e.st.CompetitorUsers*CompetitorKeepRatio + CompetitorIPOBoost

	out.Message = fmt.Sprintf("IPO complete. Founder prestige increased to level %d. All apps reset, but your Base App grows faster forever.", e.st.PrestigeLevel)
	e.sink.Append(out.Tag, out.Message)
	return out, nil
}

func (e *Engine) fail(err error, format string, args ...any) (Outcome, error) {
	out := Outcome{Tag: TagWarn, Message: fmt.Sprintf(format, args...)}
	e.sink.Append(out.Tag, out.Message)
	return out, err
}

// resolveStage re-derives the stage from fund. Only a rise is announced.
func (e *Engine) resolveStage() bool {
	next := ResolveStage(e.st.Fund)
	if next == e.st.StageIndex {
		return false
	}
	rose := next > e.st.StageIndex
	e.st.StageIndex = next
	if rose {
		stage := Stages[next]
		e.sink.Append(TagFund, fmt.Sprintf("Funding milestone reached → %s (bonus x%.2f).", stage.Name, stage.Bonus))
	}
	return true
}
