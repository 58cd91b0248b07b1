package blueprint

import (
	"regexp"
	"sort"
	"strings"
)

// Mutators implement the slot-based edit protocol. Each one mutates the given
// document in place and is a silent no-op on missing entities or out-of-range
// slots; callers that need copy-on-write semantics clone first (the editor
// package does). Empty trimmed text on an existing slot is the delete signal;
// on a slot past the end it is ignored.

// ListKind selects an actor's cost or benefit list.
type ListKind string

const (
	ListCosts    ListKind = "costs"
	ListBenefits ListKind = "benefits"
)

// missingRank is the sort key for KPIs without a rank.
const missingRank = 999

var trailingParens = regexp.MustCompile(`^(.*?)\s*\(([^)]*)\)\s*$`)

// splitCell splits "Name (a, b, c)" into the name and the comma-separated
// tokens of the trailing parenthesized group. Without parentheses the whole
// text is the name and the token list is nil. Empty tokens are dropped.
func splitCell(text string) (string, []string) {
	trimmed := strings.TrimSpace(text)
	match := trailingParens.FindStringSubmatch(trimmed)
	if match == nil {
		return trimmed, nil
	}
	name := strings.TrimSpace(match[1])
	var tokens []string
	for _, raw := range strings.Split(match[2], ",") {
		token := strings.TrimSpace(raw)
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return name, tokens
}

// SetCostBenefitSlot writes cell text into the slot-addressed sub-sequence of
// one category within an actor's cost or benefit list. The text is the raw
// description; the category is fixed per row and never re-derived.
func SetCostBenefitSlot(doc *Blueprint, actorID string, kind ListKind, category Category, slot int, text string) {
	actor := doc.ActorByID(actorID)
	if actor == nil || slot < 0 {
		return
	}
	list := actor.Costs
	if kind == ListBenefits {
		list = actor.Benefits
	}
	trimmed := strings.TrimSpace(text)
	indices := IndicesOfType(list, category)
	switch {
	case slot < len(indices):
		at := indices[slot]
		if trimmed == "" {
			list = append(list[:at], list[at+1:]...)
		} else {
			list[at].Description = trimmed
		}
	case trimmed != "":
		list = append(list, CostBenefitItem{Category: category, Description: trimmed})
	}
	if kind == ListBenefits {
		actor.Benefits = list
	} else {
		actor.Costs = list
	}
	EnsureMinCostBenefit(actor)
}

// CostBenefitSlotText reads a slot back as cell text; empty for vacant slots.
func CostBenefitSlotText(list []CostBenefitItem, category Category, slot int) string {
	indices := IndicesOfType(list, category)
	if slot < 0 || slot >= len(indices) {
		return ""
	}
	return list[indices[slot]].Description
}

// kpisByRank returns the KPI list's indices ordered by ascending rank, with
// missing ranks (≤0) sorting last. The sort is stable so equal ranks keep
// list order.
func kpisByRank(kpis []KPI) []int {
	order := make([]int, len(kpis))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return effectiveRank(kpis[order[a]]) < effectiveRank(kpis[order[b]])
	})
	return order
}

func effectiveRank(k KPI) int {
	if k.Rank <= 0 {
		return missingRank
	}
	return k.Rank
}

// SetKPISlot writes a KPI name into the rank-sorted slot view. Slot identity
// for update and delete is the (rank, name) pair of the item at that sorted
// position, re-located by a linear scan against the backing list; if no item
// matches that exact pair at write time the write is dropped. Appends past the
// end get rank = current max + 1; existing ranks are never reassigned.
func SetKPISlot(doc *Blueprint, actorID string, slot int, text string) {
	actor := doc.ActorByID(actorID)
	if actor == nil || slot < 0 {
		return
	}
	trimmed := strings.TrimSpace(text)
	order := kpisByRank(actor.KPIs)
	if slot >= len(order) {
		if trimmed == "" {
			return
		}
		maxRank := 0
		for _, k := range actor.KPIs {
			if k.Rank > maxRank {
				maxRank = k.Rank
			}
		}
		actor.KPIs = append(actor.KPIs, KPI{Name: trimmed, Rank: maxRank + 1})
		return
	}
	target := actor.KPIs[order[slot]]
	for i, k := range actor.KPIs {
		if k.Rank != target.Rank || k.Name != target.Name {
			continue
		}
		if trimmed == "" {
			actor.KPIs = append(actor.KPIs[:i], actor.KPIs[i+1:]...)
		} else {
			actor.KPIs[i].Name = trimmed
		}
		return
	}
}

// KPISlotText reads the rank-sorted KPI slot back as cell text.
func KPISlotText(kpis []KPI, slot int) string {
	order := kpisByRank(kpis)
	if slot < 0 || slot >= len(order) {
		return ""
	}
	return kpis[order[slot]].Name
}

// ParseServiceCell parses "Name" or "Name (op1, op2)" into a service. A blank
// parsed name is the delete signal regardless of any operations text.
func ParseServiceCell(text string) (Service, bool) {
	name, tokens := splitCell(text)
	if name == "" {
		return Service{}, false
	}
	service := Service{Name: name}
	for _, token := range tokens {
		service.Operations = append(service.Operations, Operation{Name: token})
	}
	return service, true
}

// ServiceCellText formats a service back into its cell representation.
func ServiceCellText(s Service) string {
	if len(s.Operations) == 0 {
		return s.Name
	}
	names := make([]string, len(s.Operations))
	for i, op := range s.Operations {
		names[i] = op.Name
	}
	return s.Name + " (" + strings.Join(names, ", ") + ")"
}

// SetServiceSlot writes service cell text into an actor's service list. Slots
// address the raw list directly.
func SetServiceSlot(doc *Blueprint, actorID string, slot int, text string) {
	actor := doc.ActorByID(actorID)
	if actor == nil || slot < 0 {
		return
	}
	service, ok := ParseServiceCell(text)
	switch {
	case slot < len(actor.Services):
		if !ok {
			actor.Services = append(actor.Services[:slot], actor.Services[slot+1:]...)
		} else {
			actor.Services[slot] = service
		}
	case ok:
		actor.Services = append(actor.Services, service)
	}
}

// ParseProcessCell parses "Name (Participant1, Participant2)" into a process
// name and resolved participant actor ids. Tokens match case-insensitively
// against actor id or display name; unresolvable tokens are dropped and
// duplicate resolutions collapsed.
func ParseProcessCell(text string, actors []Actor) (string, []string) {
	name, tokens := splitCell(text)
	var participants []string
	seen := map[string]bool{}
	for _, token := range tokens {
		id := resolveActorToken(token, actors)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		participants = append(participants, id)
	}
	return name, participants
}

func resolveActorToken(token string, actors []Actor) string {
	for _, actor := range actors {
		if strings.EqualFold(actor.ID, token) || strings.EqualFold(actor.Name, token) {
			return actor.ID
		}
	}
	return ""
}

// ProcessCellText formats a process for the grid, naming participants by
// display name with the id as fallback.
func ProcessCellText(p CoCreationProcess, actors []Actor) string {
	if len(p.ParticipantActorIDs) == 0 {
		return p.Name
	}
	names := make([]string, 0, len(p.ParticipantActorIDs))
	for _, id := range p.ParticipantActorIDs {
		label := id
		for _, actor := range actors {
			if actor.ID == id && actor.Name != "" {
				label = actor.Name
				break
			}
		}
		names = append(names, label)
	}
	return p.Name + " (" + strings.Join(names, ", ") + ")"
}

// SetProcessSlot writes process cell text into the document's process list.
func SetProcessSlot(doc *Blueprint, slot int, text string) {
	if doc == nil || slot < 0 {
		return
	}
	name, participants := ParseProcessCell(text, doc.Actors)
	switch {
	case slot < len(doc.CoCreationProcesses):
		if name == "" {
			doc.CoCreationProcesses = append(doc.CoCreationProcesses[:slot], doc.CoCreationProcesses[slot+1:]...)
		} else {
			doc.CoCreationProcesses[slot].Name = name
			doc.CoCreationProcesses[slot].ParticipantActorIDs = participants
		}
	case name != "":
		doc.CoCreationProcesses = append(doc.CoCreationProcesses, CoCreationProcess{
			ID:                  NextProcessID(doc.CoCreationProcesses),
			Name:                name,
			ParticipantActorIDs: participants,
		})
	}
}

// AddActor appends a templated other-role actor and joins it to every existing
// process. No-op at capacity.
func AddActor(doc *Blueprint) {
	if doc == nil || len(doc.Actors) >= MaxActors {
		return
	}
	id := NextActorID(doc.Actors)
	actor := newActor(id, RoleOther, "Actor "+id)
	doc.Actors = append(doc.Actors, actor)
	for i := range doc.CoCreationProcesses {
		doc.CoCreationProcesses[i].ParticipantActorIDs = append(doc.CoCreationProcesses[i].ParticipantActorIDs, id)
	}
}

// RemoveActor removes the actor and strips its id from every process's
// participant list. The customer and orchestrator positions are structurally
// protected; removal is also refused at the two-actor floor or for unknown ids.
func RemoveActor(doc *Blueprint, actorID string) {
	if doc == nil || len(doc.Actors) <= MinActors {
		return
	}
	pos := doc.ActorPosition(actorID)
	if pos <= 1 {
		return
	}
	doc.Actors = append(doc.Actors[:pos], doc.Actors[pos+1:]...)
	for i := range doc.CoCreationProcesses {
		participants := doc.CoCreationProcesses[i].ParticipantActorIDs
		kept := participants[:0]
		for _, id := range participants {
			if id != actorID {
				kept = append(kept, id)
			}
		}
		doc.CoCreationProcesses[i].ParticipantActorIDs = kept
	}
}

// AddProcess appends a blank process.
func AddProcess(doc *Blueprint) {
	if doc == nil {
		return
	}
	doc.CoCreationProcesses = append(doc.CoCreationProcesses, CoCreationProcess{
		ID: NextProcessID(doc.CoCreationProcesses),
	})
}

// AddKPISlot appends a blank KPI with the next rank.
func AddKPISlot(doc *Blueprint, actorID string) {
	actor := doc.ActorByID(actorID)
	if actor == nil {
		return
	}
	maxRank := 0
	for _, k := range actor.KPIs {
		if k.Rank > maxRank {
			maxRank = k.Rank
		}
	}
	actor.KPIs = append(actor.KPIs, KPI{Rank: maxRank + 1})
}

// AddServiceSlot appends a blank service.
func AddServiceSlot(doc *Blueprint, actorID string) {
	actor := doc.ActorByID(actorID)
	if actor == nil {
		return
	}
	actor.Services = append(actor.Services, Service{})
}

// AddCostBenefitSlot appends a blank item of the row's category.
func AddCostBenefitSlot(doc *Blueprint, actorID string, kind ListKind, category Category) {
	actor := doc.ActorByID(actorID)
	if actor == nil {
		return
	}
	if kind == ListBenefits {
		actor.Benefits = append(actor.Benefits, CostBenefitItem{Category: category})
	} else {
		actor.Costs = append(actor.Costs, CostBenefitItem{Category: category})
	}
}

// SetActorName assigns the display name directly. Unlike slot writes, an empty
// string is a valid value, not a delete signal.
func SetActorName(doc *Blueprint, actorID, name string) {
	actor := doc.ActorByID(actorID)
	if actor == nil {
		return
	}
	actor.Name = name
}

// SetActorVP assigns the actor's value-proposition statement directly.
func SetActorVP(doc *Blueprint, actorID, statement string) {
	actor := doc.ActorByID(actorID)
	if actor == nil {
		return
	}
	actor.ActorValueProposition.Statement = statement
}

// SetNetworkVP assigns the network-level value statement directly.
func SetNetworkVP(doc *Blueprint, statement string) {
	if doc == nil {
		return
	}
	doc.NetworkValueProposition.Statement = statement
}

// SetMetaName assigns the document name directly.
func SetMetaName(doc *Blueprint, name string) {
	if doc == nil {
		return
	}
	doc.Meta.Name = name
}
