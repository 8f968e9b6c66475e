package permission

import (
	"errors"
	"fmt"
	"slices"
)

type Grant struct {
	Module  Module   `json:"module" yaml:"module"`
	Actions []Action `json:"actions" yaml:"actions"`
	Level   Level    `json:"level" yaml:"level"`
}

func (g Grant) Allows(action Action) bool {
	return slices.Contains(g.Actions, action)
}

type Grants []Grant

// Find returns the grant for module. Modules are matched exactly.
func (gs Grants) Find(module Module) (Grant, bool) {
	for _, g := range gs {
		if g.Module == module {
			return g, true
		}
	}
	return Grant{}, false
}

var (
	ErrUnknownModule   = errors.New("unknown module")
	ErrUnknownAction   = errors.New("unknown action")
	ErrUnknownLevel    = errors.New("unknown level")
	ErrDuplicateModule = errors.New("module granted more than once")
)

func (gs Grants) Validate() error {
	seen := make(map[Module]struct{}, len(gs))
	for _, g := range gs {
		if !g.Module.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownModule, g.Module)
		}
		if _, dup := seen[g.Module]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateModule, g.Module)
		}
		seen[g.Module] = struct{}{}

		if !g.Level.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownLevel, g.Level)
		}
		for _, a := range g.Actions {
			if !a.Valid() {
				return fmt.Errorf("%w: %q", ErrUnknownAction, a)
			}
		}
	}
	return nil
}

// HasPermission is the access predicate. It fails closed: a missing grant,
// a none grant, or an unknown required level all deny.
func HasPermission(grants Grants, module Module, action Action, required Level) bool {
	g, ok := grants.Find(module)
	if !ok {
		return false
	}
	if g.Level == LevelNone {
		return false
	}
	return g.Allows(action) && g.Level.Covers(required)
}
