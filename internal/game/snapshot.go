package game

import (
	"encoding/json"
	"fmt"
)

type Snapshot struct {
	Users           float64     `json:"users"`
	Fund            float64     `json:"fund"`
	Units           []UnitCount `json:"units"`
	StageIndex      int         `json:"stageIndex"`
	PrestigeLevel   int         `json:"prestigeLevel"`
	CompetitorUsers float64     `json:"competitorUsers"`
}

type UnitCount struct {
	ID         string `json:"id"`
	OwnedCount int    `json:"ownedCount"`
}

// Snapshot lists units in catalog order so encodings are stable.
func (s State) Snapshot() Snapshot {
	out := Snapshot{
		Users:           s.Users,
		Fund:            s.Fund,
		StageIndex:      s.StageIndex,
		PrestigeLevel:   s.PrestigeLevel,
		CompetitorUsers: s.CompetitorUsers,
		Units:           make([]UnitCount, 0, len(Units)),
	}
	for _, u := range Units {
		out.Units = append(out.Units, UnitCount{ID: u.ID, OwnedCount: s.Units[u.ID]})
	}
	return out
}

// State rebuilds an economy from a snapshot. Unknown unit ids are dropped,
// negative or NaN numbers clamp to zero, and the stage index is recomputed
// from fund.
func (snap Snapshot) State() State {
	st := NewState()
	st.Users = clampNonNegative(snap.Users)
	st.Fund = clampNonNegative(snap.Fund)
	st.CompetitorUsers = clampNonNegative(snap.CompetitorUsers)
	if snap.PrestigeLevel > 0 {
		st.PrestigeLevel = snap.PrestigeLevel
	}
	for _, uc := range snap.Units {
		if _, ok := st.Units[uc.ID]; !ok || uc.OwnedCount < 0 {
			continue
		}
		st.Units[uc.ID] = uc.OwnedCount
	}
	st.StageIndex = ResolveStage(st.Fund)
	return st
}

func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// DecodeSnapshot parses raw over a fresh-state snapshot, so absent fields keep
// their initial values. Units decode into an empty slice; each entry stands
// on its own fields.
func DecodeSnapshot(raw []byte) (Snapshot, error) {
	snap := NewState().Snapshot()
	catalog := snap.Units
	snap.Units = nil
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if snap.Units == nil {
		snap.Units = catalog
	}
	return snap, nil
}
