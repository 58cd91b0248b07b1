package blueprint

// Normalize trims the actor list to min(desired, available) entries and
// enforces the positional invariants: role is overwritten by position
// (0→customer, 1→orchestrator, rest→other) regardless of the stored value, and
// every actor ends up with at least one cost and one benefit item. A negative
// desired count means "all". The function never pads with placeholder actors;
// the returned count tells callers how many actor column pairs to render.
//
// Normalize is idempotent: running it over its own output yields structurally
// identical actors.
func Normalize(actors []Actor, desired int) ([]Actor, int) {
	n := len(actors)
	if desired >= 0 && desired < n {
		n = desired
	}
	normalized := make([]Actor, n)
	copy(normalized, actors[:n])
	for i := range normalized {
		normalized[i].Type = RoleForPosition(i)
		EnsureMinCostBenefit(&normalized[i])
	}
	return normalized, n
}
