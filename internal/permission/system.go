package permission

import (
	"fmt"
	"strings"
)

// DefaultSystemLevel applies to system-role permission strings that omit a level.
const DefaultSystemLevel = LevelCompany

// ParseSystemPermission parses "module:action" or "module:action:level".
func ParseSystemPermission(s string) (Module, Action, Level, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", "", "", fmt.Errorf("malformed permission %q", s)
	}

	m, a := Module(parts[0]), Action(parts[1])
	lvl := DefaultSystemLevel
	if len(parts) == 3 {
		lvl = Level(parts[2])
	}

	if !m.Valid() {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownModule, m)
	}
	if !a.Valid() {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	if !lvl.Valid() {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownLevel, lvl)
	}
	return m, a, lvl, nil
}

// GrantsFromStrings folds system-role permission strings into one grant per
// module. When strings for the same module disagree on level, the widest wins,
// except that none anywhere blocks the module.
func GrantsFromStrings(perms []string) (Grants, error) {
	byModule := make(map[Module]*Grant)
	order := make([]Module, 0, len(perms))

	for _, p := range perms {
		m, a, lvl, err := ParseSystemPermission(p)
		if err != nil {
			return nil, err
		}

		g, ok := byModule[m]
		if !ok {
			g = &Grant{Module: m, Level: lvl}
			byModule[m] = g
			order = append(order, m)
		}
		if !g.Allows(a) {
			g.Actions = append(g.Actions, a)
		}
		switch {
		case g.Level == LevelNone || lvl == LevelNone:
			g.Level = LevelNone
		case levelRank[lvl] > levelRank[g.Level]:
			g.Level = lvl
		}
	}

	out := make(Grants, 0, len(order))
	for _, m := range order {
		out = append(out, *byModule[m])
	}
	return out, nil
}
