package bot

import (
	"time"
)

// state returns the live conversation of a user, expiring stale ones on the
// way. The second result is true when an expired conversation was dropped.
func (b *Bot) state(userID int64) (*wizardState, bool) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	st, ok := b.states[userID]
	if !ok {
		return nil, false
	}
	if time.Since(st.Touched) > wizardTTL {
		delete(b.states, userID)
		return nil, true
	}
	st.Touched = time.Now()
	return st, false
}

// setState starts or replaces a user's conversation.
func (b *Bot) setState(userID int64, flow flowID, step stepID) *wizardState {
	st := &wizardState{
		Flow:    flow,
		Step:    step,
		Data:    make(map[string]any),
		Touched: time.Now(),
	}
	b.statesMu.Lock()
	b.states[userID] = st
	b.statesMu.Unlock()
	return st
}

func (b *Bot) clearState(userID int64) {
	b.statesMu.Lock()
	delete(b.states, userID)
	b.statesMu.Unlock()
}

// Data accessors. Wizard data is written and read by the same flow, so a
// missing or mistyped key is a programming error; accessors fall back to
// zero values rather than panic.

func (st *wizardState) str(key string) string {
	v, _ := st.Data[key].(string)
	return v
}

func (st *wizardState) uintVal(key string) uint {
	v, _ := st.Data[key].(uint)
	return v
}

func (st *wizardState) strs(key string) []string {
	v, _ := st.Data[key].([]string)
	return v
}
