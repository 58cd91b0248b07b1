package blueprint

import (
	"fmt"
	"regexp"
	"strconv"
)

var actorIDPattern = regexp.MustCompile(`^A(\d+)$`)
var processIDPattern = regexp.MustCompile(`^P(\d+)$`)

// NewTemplate returns a fresh starter document: a customer and an orchestrator
// with placeholder content. The template passes validation with zero errors so
// it is a legal committed state.
func NewTemplate() *Blueprint {
	return &Blueprint{
		NetworkValueProposition: ValueProposition{},
		Actors: []Actor{
			newActor("A1", RoleCustomer, "Customer"),
			newActor("A2", RoleOrchestrator, "Orchestrator"),
		},
		CoCreationProcesses: []CoCreationProcess{},
	}
}

func newActor(id string, role Role, name string) Actor {
	return Actor{
		ID:       id,
		Type:     role,
		Name:     name,
		Costs:    []CostBenefitItem{{Category: CategoryFinancial}},
		Benefits: []CostBenefitItem{{Category: CategoryFinancial}},
	}
}

// NextActorID allocates the next templated actor id: A{n} where n is one past
// the highest numeric suffix among existing A<digits> ids.
func NextActorID(actors []Actor) string {
	highest := 0
	for _, actor := range actors {
		match := actorIDPattern.FindStringSubmatch(actor.ID)
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("A%d", highest+1)
}

// NextProcessID allocates P{n} ids the same way NextActorID allocates A{n}.
func NextProcessID(processes []CoCreationProcess) string {
	highest := 0
	for _, process := range processes {
		match := processIDPattern.FindStringSubmatch(process.ID)
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("P%d", highest+1)
}
