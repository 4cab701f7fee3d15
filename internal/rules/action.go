// Package rules encodes the legal state transitions and action guards for each
// stateful entity. Everything here is a pure function over entity state; an
// undeclared status has no successors.
package rules

import "bistroboard/internal/domain"

var actionTransitions = map[domain.ActionStatus]map[domain.ActionStatus]bool{
	domain.ActionPlanned: {
		domain.ActionDone:      true,
		domain.ActionDiscarded: true,
	},
}

// CanTransitionAction reports whether an action may move from current to target.
func CanTransitionAction(current, target domain.ActionStatus) bool {
	return actionTransitions[current][target]
}

func CanMarkDone(a domain.Action) bool {
	return CanTransitionAction(a.Status, domain.ActionDone)
}

func CanDiscard(a domain.Action) bool {
	return CanTransitionAction(a.Status, domain.ActionDiscarded)
}

func ActionTerminal(s domain.ActionStatus) bool {
	return len(actionTransitions[s]) == 0
}
