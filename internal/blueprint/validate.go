package blueprint

import (
	"fmt"
	"strings"
)

// Severity grades a validation issue. Errors block saving; warnings never do.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one structural problem found in a document. Issues are returned as
// data so a client can render them continuously; validation never fails.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func errorIssue(format string, args ...any) Issue {
	return Issue{Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}

func warningIssue(format string, args ...any) Issue {
	return Issue{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

// HasErrors reports whether any issue is error-severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks a document against the completeness and uniqueness rules and
// returns the full issue list. An absent or empty actor list, or fewer than two
// actors, short-circuits the remaining checks.
func Validate(doc *Blueprint) []Issue {
	if doc == nil || len(doc.Actors) == 0 {
		return []Issue{errorIssue("blueprint has no actors")}
	}
	if len(doc.Actors) < MinActors {
		return []Issue{errorIssue("blueprint needs at least %d actors, has %d", MinActors, len(doc.Actors))}
	}

	var issues []Issue

	customers := 0
	orchestrators := 0
	seenIDs := map[string]bool{}
	duplicates := map[string]bool{}
	for _, actor := range doc.Actors {
		switch actor.Type {
		case RoleCustomer:
			customers++
		case RoleOrchestrator:
			orchestrators++
		}
		if seenIDs[actor.ID] {
			duplicates[actor.ID] = true
		}
		seenIDs[actor.ID] = true
	}
	if customers != 1 {
		issues = append(issues, errorIssue("exactly one customer actor required, found %d", customers))
	}
	if orchestrators != 1 {
		issues = append(issues, errorIssue("exactly one orchestrator actor required, found %d", orchestrators))
	}
	for id := range duplicates {
		issues = append(issues, errorIssue("duplicate actor id %q", id))
	}
	if doc.Actors[0].Type != RoleCustomer {
		issues = append(issues, warningIssue("first actor should be the customer"))
	}
	if doc.Actors[1].Type != RoleOrchestrator {
		issues = append(issues, warningIssue("second actor should be the orchestrator"))
	}

	for _, actor := range doc.Actors {
		label := actor.Name
		if strings.TrimSpace(label) == "" {
			label = actor.ID
			issues = append(issues, warningIssue("actor %s has no name", actor.ID))
		}
		if strings.TrimSpace(actor.ActorValueProposition.Statement) == "" {
			issues = append(issues, warningIssue("actor %s has no value proposition", label))
		}
		issues = append(issues, checkCostBenefit(label, "cost", actor.Costs)...)
		issues = append(issues, checkCostBenefit(label, "benefit", actor.Benefits)...)
		if !hasAnyService(actor.Services) {
			issues = append(issues, warningIssue("actor %s has no services", label))
		}
	}

	if strings.TrimSpace(doc.NetworkValueProposition.Statement) == "" {
		issues = append(issues, warningIssue("network value proposition is empty"))
	}
	if len(doc.CoCreationProcesses) == 0 {
		issues = append(issues, warningIssue("blueprint has no co-creation processes"))
	}
	for _, process := range doc.CoCreationProcesses {
		if strings.TrimSpace(process.Name) == "" {
			issues = append(issues, warningIssue("process %s has no name", process.ID))
		}
		for _, id := range process.ParticipantActorIDs {
			if !seenIDs[id] {
				issues = append(issues, warningIssue("process %s references unknown actor %q", process.ID, id))
			}
		}
	}

	return issues
}

// checkCostBenefit flags a missing list as an error and a present-but-blank
// list as a warning; normalization usually repairs the former before a
// document gets this far.
func checkCostBenefit(actorLabel, kind string, items []CostBenefitItem) []Issue {
	if items == nil {
		return []Issue{errorIssue("actor %s has no %s list", actorLabel, kind)}
	}
	for _, item := range items {
		if strings.TrimSpace(item.Description) != "" {
			return nil
		}
	}
	return []Issue{warningIssue("actor %s has no %s descriptions", actorLabel, kind)}
}

func hasAnyService(services []Service) bool {
	for _, service := range services {
		if strings.TrimSpace(service.Name) != "" {
			return true
		}
		for _, op := range service.Operations {
			if strings.TrimSpace(op.Name) != "" {
				return true
			}
		}
	}
	return false
}
