// Package blueprint holds the value-network blueprint document model and the
// pure editing operations over it: normalization into a fixed-shape grid view,
// slot-based mutators, and structural validation. Nothing in this package
// touches I/O; every operation is a plain function over document values.
package blueprint

import (
	"bytes"
	"encoding/json"
)

// Role is an actor's position-derived role in the network.
type Role string

const (
	RoleCustomer     Role = "customer"
	RoleOrchestrator Role = "orchestrator"
	RoleOther        Role = "other"
)

// Category classifies a cost or benefit item.
type Category string

const (
	CategoryFinancial         Category = "financial"
	CategoryEnvironmental     Category = "environmental"
	CategorySocial            Category = "social"
	CategoryOtherNonFinancial Category = "otherNonFinancial"
)

// Categories lists all cost/benefit categories in grid row order.
var Categories = []Category{
	CategoryFinancial,
	CategoryEnvironmental,
	CategorySocial,
	CategoryOtherNonFinancial,
}

const (
	// MinActors is the structural floor: customer plus orchestrator.
	MinActors = 2
	// MaxActors caps the network size.
	MaxActors = 10
)

type Meta struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type ValueProposition struct {
	Statement string `json:"statement"`
}

type CostBenefitItem struct {
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// KPI has an integer rank used for sort order. A rank of zero or less is
// treated as absent and sorts last.
type KPI struct {
	Name string `json:"name"`
	Rank int    `json:"rank,omitempty"`
}

type Operation struct {
	Name string `json:"name"`
}

type Service struct {
	Name       string      `json:"name"`
	Operations []Operation `json:"operations,omitempty"`
}

type Actor struct {
	ID                    string            `json:"id"`
	Type                  Role              `json:"type"`
	Name                  string            `json:"name"`
	ActorValueProposition ValueProposition  `json:"actorValueProposition"`
	Costs                 []CostBenefitItem `json:"costs"`
	Benefits              []CostBenefitItem `json:"benefits"`
	KPIs                  []KPI             `json:"kpis,omitempty"`
	Services              []Service         `json:"services,omitempty"`
}

type CoCreationProcess struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	ParticipantActorIDs []string `json:"participantActorIds,omitempty"`
}

// Blueprint is the root document. Actor order is semantically meaningful:
// position 0 is the customer, position 1 the orchestrator.
type Blueprint struct {
	Meta                    Meta                `json:"meta"`
	NetworkValueProposition ValueProposition    `json:"networkValueProposition"`
	Actors                  []Actor             `json:"actors"`
	CoCreationProcesses     []CoCreationProcess `json:"coCreationProcesses,omitempty"`
}

// Clone returns a deep copy via a JSON round trip. Documents top out at ten
// actors, so the copy cost is negligible next to the aliasing bugs it avoids.
func (b *Blueprint) Clone() *Blueprint {
	if b == nil {
		return nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		copied := *b
		return &copied
	}
	var out Blueprint
	if err := json.Unmarshal(data, &out); err != nil {
		copied := *b
		return &copied
	}
	return &out
}

// Equal reports deep value equality between two documents. Comparison goes
// through the canonical JSON encoding so a nil list and an empty list compare
// equal, while list order stays significant.
func Equal(a, b *Blueprint) bool {
	if a == nil || b == nil {
		return a == b
	}
	left, errA := json.Marshal(a)
	right, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(left, right)
}

// RoleForPosition derives an actor's role from its list position.
func RoleForPosition(pos int) Role {
	switch pos {
	case 0:
		return RoleCustomer
	case 1:
		return RoleOrchestrator
	default:
		return RoleOther
	}
}

// ActorByID returns a pointer into the document's actor list, or nil.
func (b *Blueprint) ActorByID(id string) *Actor {
	if b == nil {
		return nil
	}
	for i := range b.Actors {
		if b.Actors[i].ID == id {
			return &b.Actors[i]
		}
	}
	return nil
}

// ActorPosition returns the index of the actor with the given id, or -1.
func (b *Blueprint) ActorPosition(id string) int {
	if b == nil {
		return -1
	}
	for i := range b.Actors {
		if b.Actors[i].ID == id {
			return i
		}
	}
	return -1
}
