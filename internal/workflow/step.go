// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workflow implements the three phase state machines of the review
// pipeline and the cross-phase resume controller. Machines mutate a state
// snapshot in place; persisting the snapshot is the caller's concern.
package workflow

import "errors"

// ErrValidation marks a blocking precondition failure. The operation made no
// backend call and left the state unchanged. Callers match with errors.Is.
var ErrValidation = errors.New("validation failed")

// ErrLocked is returned by question mutations after confirmation. The lock
// is one-way; no operation clears it.
var ErrLocked = errors.New("questions are confirmed and locked")

// Step is one stage in a phase's progress sequence.
type Step struct {
	Name string
}

// VisibleSteps filters the nominal step sequence through omit and returns
// the visible steps together with an index map from nominal position to
// visible position. Omitted steps map to -1. Progress displays and step
// gating both consume the visible sequence, so counts and indexes always
// reflect what is shown.
func VisibleSteps(steps []Step, omit func(Step) bool) ([]Step, []int) {
	visible := make([]Step, 0, len(steps))
	indexMap := make([]int, len(steps))
	for i, step := range steps {
		if omit != nil && omit(step) {
			indexMap[i] = -1
			continue
		}
		indexMap[i] = len(visible)
		visible = append(visible, step)
	}
	return visible, indexMap
}
