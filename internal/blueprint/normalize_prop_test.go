package blueprint

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genActor() gopter.Gen {
	return gopter.CombineGens(
		gen.AlphaString(),
		gen.AlphaString(),
		gen.OneConstOf(RoleCustomer, RoleOrchestrator, RoleOther),
		gen.IntRange(0, 3),
		gen.IntRange(0, 3),
	).Map(func(values []interface{}) Actor {
		actor := Actor{
			ID:   values[0].(string),
			Name: values[1].(string),
			Type: values[2].(Role),
		}
		for i := 0; i < values[3].(int); i++ {
			actor.Costs = append(actor.Costs, CostBenefitItem{Category: Categories[i%len(Categories)], Description: "c"})
		}
		for i := 0; i < values[4].(int); i++ {
			actor.Benefits = append(actor.Benefits, CostBenefitItem{Category: Categories[i%len(Categories)], Description: "b"})
		}
		return actor
	})
}

// TestNormalizeProperties verifies the normalization invariants over arbitrary
// actor lists: position determines role, cost/benefit lists are never empty,
// the function never pads, and running it twice changes nothing.
func TestNormalizeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("roles follow position", prop.ForAll(
		func(actors []Actor, desired int) bool {
			normalized, _ := Normalize(actors, desired)
			for i, actor := range normalized {
				if actor.Type != RoleForPosition(i) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genActor()),
		gen.IntRange(-1, 12),
	))

	properties.Property("cost and benefit lists are never empty", prop.ForAll(
		func(actors []Actor) bool {
			normalized, _ := Normalize(actors, -1)
			for _, actor := range normalized {
				if len(actor.Costs) == 0 || len(actor.Benefits) == 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genActor()),
	))

	properties.Property("count is min of desired and available, never padded", prop.ForAll(
		func(actors []Actor, desired int) bool {
			normalized, n := Normalize(actors, desired)
			if len(normalized) != n {
				return false
			}
			want := len(actors)
			if desired >= 0 && desired < want {
				want = desired
			}
			return n == want
		},
		gen.SliceOf(genActor()),
		gen.IntRange(-1, 12),
	))

	properties.Property("idempotent", prop.ForAll(
		func(actors []Actor) bool {
			once, _ := Normalize(actors, -1)
			twice, _ := Normalize(once, -1)
			return reflect.DeepEqual(once, twice)
		},
		gen.SliceOf(genActor()),
	))

	properties.TestingRun(t)
}

// TestSlotCountProperties pins the editing-view sizing rules.
func TestSlotCountProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("editable views always have room past the last item", prop.ForAll(
		func(count, minimum int) bool {
			return SlotCount(count, minimum, true) > count
		},
		gen.IntRange(0, 50),
		gen.IntRange(0, 50),
	))

	properties.Property("never below minimum or count", prop.ForAll(
		func(count, minimum int, editable bool) bool {
			slots := SlotCount(count, minimum, editable)
			return slots >= minimum && slots >= count
		},
		gen.IntRange(0, 50),
		gen.IntRange(0, 50),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
