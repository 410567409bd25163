package domain

// State is the derived key/value signal map used for routing and
// cross-turn memory. Absent keys mean "unknown"; nil is never stored.
type State map[string]any

// Set stores a value. Nil values are dropped so absence stays the only
// representation of "unknown".
func (s State) Set(key string, value any) {
	if value == nil {
		delete(s, key)
		return
	}
	s[key] = value
}

// GetString returns the value for key if it is a string.
func (s State) GetString(key string) (string, bool) {
	v, ok := s[key].(string)
	return v, ok
}

// GetBool returns the value for key if it is a bool.
func (s State) GetBool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// Clone returns a shallow copy. All stored values are scalars, so a
// shallow copy is a value copy.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// PruneKeys is the allow-list applied when the turn threshold is
// reached: everything else is dropped from the state.
var PruneKeys = []string{
	StateIntent,
	StateOrderComplete,
	StatePaymentMethod,
	StateDeliveryInfo,
	StateHasItems,
}

// Prune reduces the state to the allow-listed keys, dropping absent
// values entirely. hasItems is recomputed by the caller from the order.
func (s State) Prune(hasItems bool) State {
	out := make(State)
	for _, key := range PruneKeys {
		if key == StateHasItems {
			continue
		}
		if v, ok := s[key]; ok && v != nil {
			out[key] = v
		}
	}
	out[StateHasItems] = hasItems
	return out
}
