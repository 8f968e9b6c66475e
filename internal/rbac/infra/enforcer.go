package infra

import (
	"fmt"

	"go-diligince/internal/permission"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// ModelText is a domain-scoped RBAC model with a level column. Policies are
// loaded per request, so the model carries no adapter.
const ModelText = `[request_definition]
r = sub, dom, obj, act, lvl

[policy_definition]
p = sub, dom, obj, act, lvl

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub, r.dom) && r.dom == p.dom && r.obj == p.obj && r.act == p.act && levelCovers(p.lvl, r.lvl)
`

func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(ModelText)
	if err != nil {
		return nil, fmt.Errorf("load rbac model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	e.AddFunction("levelCovers", levelCovers)

	return e, nil
}

func levelCovers(args ...interface{}) (interface{}, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("levelCovers expects 2 arguments, got %d", len(args))
	}
	granted, _ := args[0].(string)
	required, _ := args[1].(string)
	return permission.Level(granted).Covers(permission.Level(required)), nil
}
