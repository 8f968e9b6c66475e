// Package approval is the step engine shared by every entity that carries an
// ordered approval checklist.
//
// Steps move pending -> completed or pending -> skipped and never back.
// ApproveFirstPending completes the first pending step in declaration order;
// it does not require earlier steps to be completed, so a skipped step ahead
// of it is simply passed over. Only completed steps satisfy AllCompleted: a
// skipped step keeps the parent from reaching its approved state.
package approval

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	StepPending   = "pending"
	StepCompleted = "completed"
	StepSkipped   = "skipped"
)

var (
	ErrNoSteps        = errors.New("at least one approval step is required")
	ErrEmptyStepName  = errors.New("approval step name is required")
	ErrDuplicateStep  = errors.New("duplicate approval step name")
	ErrStepNotFound   = errors.New("approval step not found")
	ErrStepNotPending = errors.New("approval step is not pending")
)

type Step struct {
	StepName    string     `json:"step_name"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ApprovedBy  string     `json:"approved_by,omitempty"`
	Comments    string     `json:"comments,omitempty"`
}

type Steps []Step

// NewSteps builds a pending checklist. Names are trimmed and must be unique.
func NewSteps(names ...string) (Steps, error) {
	if len(names) == 0 {
		return nil, ErrNoSteps
	}

	seen := make(map[string]struct{}, len(names))
	steps := make(Steps, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, ErrEmptyStepName
		}
		key := strings.ToLower(n)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateStep, n)
		}
		seen[key] = struct{}{}
		steps = append(steps, Step{StepName: n, Status: StepPending})
	}
	return steps, nil
}

// FirstPending returns the index of the first pending step, or -1.
func (s Steps) FirstPending() int {
	for i := range s {
		if s[i].Status == StepPending {
			return i
		}
	}
	return -1
}

// ApproveFirstPending completes the first pending step. When there is none it
// changes nothing and reports ok=false.
func (s Steps) ApproveFirstPending(actorID, comments string, now time.Time) (name string, ok bool) {
	i := s.FirstPending()
	if i < 0 {
		return "", false
	}
	at := now
	s[i].Status = StepCompleted
	s[i].CompletedAt = &at
	s[i].ApprovedBy = actorID
	s[i].Comments = comments
	return s[i].StepName, true
}

// Skip moves the named pending step to skipped.
func (s Steps) Skip(stepName, actorID, comments string, now time.Time) error {
	for i := range s {
		if !strings.EqualFold(s[i].StepName, stepName) {
			continue
		}
		if s[i].Status != StepPending {
			return fmt.Errorf("%w: %q is %s", ErrStepNotPending, s[i].StepName, s[i].Status)
		}
		at := now
		s[i].Status = StepSkipped
		s[i].CompletedAt = &at
		s[i].ApprovedBy = actorID
		s[i].Comments = comments
		return nil
	}
	return fmt.Errorf("%w: %q", ErrStepNotFound, stepName)
}

// AllCompleted is the gate for the parent's approved state.
func (s Steps) AllCompleted() bool {
	if len(s) == 0 {
		return false
	}
	for _, st := range s {
		if st.Status != StepCompleted {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so callers can compare before and after.
func (s Steps) Clone() Steps {
	if s == nil {
		return nil
	}
	out := make(Steps, len(s))
	for i, st := range s {
		out[i] = st
		if st.CompletedAt != nil {
			at := *st.CompletedAt
			out[i].CompletedAt = &at
		}
	}
	return out
}

// Progress is the number of completed steps over the total.
func (s Steps) Progress() (completed, total int) {
	for _, st := range s {
		if st.Status == StepCompleted {
			completed++
		}
	}
	return completed, len(s)
}

// Advance is the result of one approve call against a checklist.
type Advance struct {
	StepName string
	Advanced bool
	// Finished is true only on the call that completed the last pending step.
	Finished bool
}

func (s Steps) Advance(actorID, comments string, now time.Time) Advance {
	name, ok := s.ApproveFirstPending(actorID, comments, now)
	return Advance{
		StepName: name,
		Advanced: ok,
		Finished: ok && s.AllCompleted(),
	}
}
