package blueprint

// CountOfType counts items in the given category. Zero over nil lists.
func CountOfType(items []CostBenefitItem, category Category) int {
	count := 0
	for _, item := range items {
		if item.Category == category {
			count++
		}
	}
	return count
}

// IndicesOfType returns the absolute positions of items matching the category,
// in list order. Callers address "the i-th item of category C" through this
// sub-sequence, which is what lets the grid show one column per category while
// the backing list stays a single flat, mixed-category slice.
func IndicesOfType(items []CostBenefitItem, category Category) []int {
	indices := make([]int, 0, len(items))
	for i, item := range items {
		if item.Category == category {
			indices = append(indices, i)
		}
	}
	return indices
}

// EnsureMinCostBenefit pads the actor's cost and benefit lists so each has at
// least one item, inserting a blank financial item where needed. Runs after
// every cost/benefit mutation and during normalization.
func EnsureMinCostBenefit(actor *Actor) {
	if actor == nil {
		return
	}
	if len(actor.Costs) == 0 {
		actor.Costs = []CostBenefitItem{{Category: CategoryFinancial}}
	}
	if len(actor.Benefits) == 0 {
		actor.Benefits = []CostBenefitItem{{Category: CategoryFinancial}}
	}
}

// SlotCount sizes a fixed editing view over a variable-length field. Editable
// views always expose one trailing empty slot for creating a new entry;
// read-only views show exactly the existing items, padded only to minimum.
func SlotCount(count, minimum int, editable bool) int {
	slots := count
	if editable {
		slots++
	}
	if slots < minimum {
		slots = minimum
	}
	return slots
}
