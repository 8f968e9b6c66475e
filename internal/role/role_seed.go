package role

import (
	_ "embed"
	"fmt"

	"go-diligince/internal/permission"

	"gopkg.in/yaml.v3"
)

//go:embed system_roles.yaml
var systemRolesYAML []byte

// LoadSystemRoles parses the embedded seed and rejects malformed permission strings.
func LoadSystemRoles() ([]SystemRole, error) {
	return ParseSystemRoles(systemRolesYAML)
}

func ParseSystemRoles(data []byte) ([]SystemRole, error) {
	var roles []SystemRole
	if err := yaml.Unmarshal(data, &roles); err != nil {
		return nil, fmt.Errorf("parse system roles: %w", err)
	}

	seen := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		if r.Name == "" {
			return nil, fmt.Errorf("system role without name")
		}
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("duplicate system role %q", r.Name)
		}
		seen[r.Name] = struct{}{}

		if _, err := permission.GrantsFromStrings(r.Permissions); err != nil {
			return nil, fmt.Errorf("system role %q: %w", r.Name, err)
		}
	}
	return roles, nil
}
