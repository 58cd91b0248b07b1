package blueprint

// Grid is the fixed-shape, position-stable projection of a document that a
// spreadsheet-style client renders directly. Cell text uses the same formats
// the slot mutators parse, so a cell read back and written unchanged is a
// no-op edit.
type Grid struct {
	ActorCount int         `json:"actorCount"`
	Columns    int         `json:"columns"` // 2 sub-columns per actor
	Actors     []GridActor `json:"actors"`
	Processes  []string    `json:"processes"`
	NetworkVP  string      `json:"networkValueProposition"`
}

type GridActor struct {
	ID       string                `json:"id"`
	Role     Role                  `json:"role"`
	Name     string                `json:"name"`
	VP       string                `json:"valueProposition"`
	Costs    map[Category][]string `json:"costs"`
	Benefits map[Category][]string `json:"benefits"`
	KPIs     []string              `json:"kpis"`
	Services []string              `json:"services"`
}

// BuildGrid projects the document into grid cells. When editable, every
// variable-length field carries one trailing empty slot.
func BuildGrid(doc *Blueprint, editable bool) Grid {
	if doc == nil {
		return Grid{}
	}
	actors, n := Normalize(doc.Actors, -1)
	grid := Grid{
		ActorCount: n,
		Columns:    2 * n,
		Actors:     make([]GridActor, 0, n),
		NetworkVP:  doc.NetworkValueProposition.Statement,
	}
	for _, actor := range actors {
		ga := GridActor{
			ID:       actor.ID,
			Role:     actor.Type,
			Name:     actor.Name,
			VP:       actor.ActorValueProposition.Statement,
			Costs:    map[Category][]string{},
			Benefits: map[Category][]string{},
		}
		for _, category := range Categories {
			ga.Costs[category] = categorySlots(actor.Costs, category, editable)
			ga.Benefits[category] = categorySlots(actor.Benefits, category, editable)
		}
		for slot := 0; slot < SlotCount(len(actor.KPIs), 0, editable); slot++ {
			ga.KPIs = append(ga.KPIs, KPISlotText(actor.KPIs, slot))
		}
		for slot := 0; slot < SlotCount(len(actor.Services), 0, editable); slot++ {
			text := ""
			if slot < len(actor.Services) {
				text = ServiceCellText(actor.Services[slot])
			}
			ga.Services = append(ga.Services, text)
		}
		grid.Actors = append(grid.Actors, ga)
	}
	for slot := 0; slot < SlotCount(len(doc.CoCreationProcesses), 0, editable); slot++ {
		text := ""
		if slot < len(doc.CoCreationProcesses) {
			text = ProcessCellText(doc.CoCreationProcesses[slot], actors)
		}
		grid.Processes = append(grid.Processes, text)
	}
	return grid
}

func categorySlots(items []CostBenefitItem, category Category, editable bool) []string {
	count := CountOfType(items, category)
	slots := make([]string, 0, count+1)
	for slot := 0; slot < SlotCount(count, 0, editable); slot++ {
		slots = append(slots, CostBenefitSlotText(items, category, slot))
	}
	return slots
}
