package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func scorerFor(t *testing.T, reqs []Requirement, busy []BusySlot, reliability map[time.Weekday]float64) (*Scorer, *State) {
	t.Helper()
	layout := newTestLayout(t)
	state := NewState(layout, reqs, busy)
	return NewScorer(layout, reliability, state), state
}

func plain(subjectID string, periods int) Requirement {
	req := requirement(subjectID, "", periods)
	req.Preferences.SpreadEvenly = false
	return req
}

func TestScoreBaseAndHeavySubject(t *testing.T) {
	light, heavy := plain("light", 2), plain("heavy", 4)
	scorer, _ := scorerFor(t, []Requirement{light, heavy}, nil, map[time.Weekday]float64{time.Friday: 0.8})
	mon := SlotCoordinate{Day: time.Monday, Slot: 1}
	fri := SlotCoordinate{Day: time.Friday, Slot: 1}

	assert.InDelta(t, 100, scorer.Score(&light, mon, LevelStrict), 1e-9)
	assert.InDelta(t, 250, scorer.Score(&heavy, mon, LevelStrict), 1e-9)
	assert.InDelta(t, 200, scorer.Score(&heavy, fri, LevelStrict), 1e-9)
}

func TestScoreFixedSlotSentinel(t *testing.T) {
	req := plain("fixed", 2)
	req.Preferences.FixedSlots = []SlotCoordinate{{Day: time.Tuesday, Slot: 2}}
	scorer, _ := scorerFor(t, []Requirement{req}, nil, nil)

	assert.Equal(t, FixedSlotScore, scorer.Score(&req, SlotCoordinate{Day: time.Tuesday, Slot: 2}, LevelEmergency))
}

func TestScorePreferencesFollowLevel(t *testing.T) {
	req := plain("pref", 2)
	req.Preferences.PreferredDays = map[time.Weekday]bool{time.Monday: true}
	req.Preferences.PreferredSlots = []models.SlotPreferenceValue{{Slot: 1}, {Symbol: models.SlotSymbolFirst}, {Symbol: models.SlotSymbolMorning}}
	scorer, _ := scorerFor(t, []Requirement{req}, nil, nil)
	c := SlotCoordinate{Day: time.Monday, Slot: 1}

	assert.InDelta(t, 100+50+40+30+20, scorer.Score(&req, c, LevelStrict), 1e-9)
	assert.InDelta(t, 100, scorer.Score(&req, c, LevelRelaxPreferences), 1e-9)
	assert.InDelta(t, 240, scorer.Score(&req, c, LevelRelaxAvoid), 1e-9)
	assert.InDelta(t, 100, scorer.Score(&req, c, LevelEmergency), 1e-9)
}

func TestScoreAvoidPenalties(t *testing.T) {
	req := plain("avoid", 2)
	req.Preferences.AvoidDays = map[time.Weekday]bool{time.Monday: true}
	req.Preferences.AvoidSlots = map[int]bool{6: true}
	scorer, _ := scorerFor(t, []Requirement{req}, nil, nil)
	c := SlotCoordinate{Day: time.Monday, Slot: 6}

	assert.InDelta(t, 100-200-150, scorer.Score(&req, c, LevelStrict), 1e-9)
	assert.InDelta(t, 100-200-150, scorer.Score(&req, c, LevelRelaxPreferences), 1e-9)
	assert.InDelta(t, 100-200-150, scorer.Score(&req, c, LevelRelaxAvoid), 1e-9)
	assert.InDelta(t, 100, scorer.Score(&req, c, LevelRelaxMaxPerDay), 1e-9)
	assert.InDelta(t, 100, scorer.Score(&req, c, LevelEmergency), 1e-9)
}

func TestScoreSpreadAndConsecutive(t *testing.T) {
	req := plain("block", 3)
	req.Preferences.SpreadEvenly = true
	req.Preferences.PreferConsecutive = true
	scorer, state := scorerFor(t, []Requirement{req}, nil, nil)
	state.place(&req, SlotCoordinate{Day: time.Monday, Slot: 1})

	assert.InDelta(t, 100-40+60, scorer.Score(&req, SlotCoordinate{Day: time.Monday, Slot: 2}, LevelStrict), 1e-9)
	assert.InDelta(t, 100-40, scorer.Score(&req, SlotCoordinate{Day: time.Monday, Slot: 6}, LevelStrict), 1e-9)
	assert.InDelta(t, 100, scorer.Score(&req, SlotCoordinate{Day: time.Tuesday, Slot: 2}, LevelStrict), 1e-9)
}

func TestScoreTeacherLoad(t *testing.T) {
	req := requirement("phys", "t-1", 2)
	req.Preferences.SpreadEvenly = false
	other := requirement("chem", "t-1", 2)
	busy := []BusySlot{
		{TeacherID: "t-1", Coordinate: SlotCoordinate{Day: time.Tuesday, Slot: 1}},
		{TeacherID: "t-1", Coordinate: SlotCoordinate{Day: time.Tuesday, Slot: 6}},
	}
	scorer, state := scorerFor(t, []Requirement{req, other}, busy, nil)
	state.place(&other, SlotCoordinate{Day: time.Monday, Slot: 1})
	state.place(&other, SlotCoordinate{Day: time.Monday, Slot: 6})

	assert.InDelta(t, 100-30, scorer.Score(&req, SlotCoordinate{Day: time.Monday, Slot: 3}, LevelStrict), 1e-9)
	assert.InDelta(t, 100, scorer.Score(&req, SlotCoordinate{Day: time.Tuesday, Slot: 3}, LevelStrict), 1e-9)
}
