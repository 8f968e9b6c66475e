package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go-diligince/internal/domain"
	"go-diligince/internal/permission"
	"go-diligince/internal/shared/metrics"

	"github.com/casbin/casbin/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	GrantCacheKeyPrefix = "rbac:grants:"
	systemRoleCacheSize = 64
)

func GrantCacheKey(companyID, roleID string) string {
	return GrantCacheKeyPrefix + companyID + ":" + roleID
}

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(ctx context.Context, check domain.PermissionCheck) (bool, error)
	ResolveGrants(ctx context.Context, companyID, systemRole, customRoleID string) (permission.Grants, error)
	InvalidateCustomRole(ctx context.Context, companyID, roleID string)
}

type service struct {
	repo        Repository
	enforcer    *casbin.Enforcer
	mu          sync.Mutex
	rdb         *redis.Client
	cacheTTL    time.Duration
	sf          singleflight.Group
	systemRoles *expirable.LRU[string, permission.Grants]
	logger      *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, rdb *redis.Client, cacheTTL time.Duration, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &service{
		repo:        repo,
		enforcer:    enforcer,
		rdb:         rdb,
		cacheTTL:    cacheTTL,
		systemRoles: expirable.NewLRU[string, permission.Grants](systemRoleCacheSize, nil, cacheTTL),
		logger:      l,
	}
}

func (s *service) Enforce(ctx context.Context, check domain.PermissionCheck) (bool, error) {
	grants, err := s.ResolveGrants(ctx, check.CompanyID, check.SystemRole, check.CustomRoleID)
	if err != nil {
		s.logger.Error("rbac resolve grants failed",
			zap.String("subject_id", check.SubjectID),
			zap.String("company_id", check.CompanyID),
			zap.Error(err),
		)
		return false, err
	}

	allowed, err := s.evaluate(check, grants)
	if err != nil {
		s.logger.Error("rbac enforce failed", zap.String("subject_id", check.SubjectID), zap.Error(err))
		return false, err
	}

	result := "deny"
	if allowed {
		result = "allow"
	}
	metrics.PermissionDecisions.WithLabelValues(string(check.Module), string(check.Action), result).Inc()

	s.logger.Debug("rbac enforce result",
		zap.String("subject_id", check.SubjectID),
		zap.String("company_id", check.CompanyID),
		zap.String("module", string(check.Module)),
		zap.String("action", string(check.Action)),
		zap.String("level", string(check.Level)),
		zap.Int("grants", len(grants)),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func roleKey(check domain.PermissionCheck) string {
	if check.CustomRoleID != "" {
		return "custom:" + check.CustomRoleID
	}
	return "system:" + check.SystemRole
}

// evaluate loads the subject's grants as the only policy set and asks casbin.
func (s *service) evaluate(check domain.PermissionCheck, grants permission.Grants) (bool, error) {
	if len(grants) == 0 {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()

	role := roleKey(check)
	if _, err := s.enforcer.AddGroupingPolicy(check.SubjectID, role, check.CompanyID); err != nil {
		return false, err
	}

	for _, g := range grants {
		if g.Level == permission.LevelNone {
			continue
		}
		for _, a := range g.Actions {
			if _, err := s.enforcer.AddPolicy(role, check.CompanyID, string(g.Module), string(a), string(g.Level)); err != nil {
				return false, err
			}
		}
	}
	if err := s.enforcer.BuildRoleLinks(); err != nil {
		return false, err
	}

	return s.enforcer.Enforce(
		check.SubjectID,
		check.CompanyID,
		string(check.Module),
		string(check.Action),
		string(check.Level),
	)
}

// ResolveGrants returns nil grants without error when the role does not
// resolve, which callers must treat as deny.
func (s *service) ResolveGrants(ctx context.Context, companyID, systemRole, customRoleID string) (permission.Grants, error) {
	if customRoleID != "" {
		return s.customRoleGrants(ctx, companyID, customRoleID)
	}
	if systemRole != "" {
		return s.systemRoleGrants(ctx, systemRole)
	}
	return nil, nil
}

func (s *service) customRoleGrants(ctx context.Context, companyID, roleID string) (permission.Grants, error) {
	cacheKey := GrantCacheKey(companyID, roleID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var grants permission.Grants
			if json.Unmarshal([]byte(cached), &grants) == nil {
				return grants, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		grants, err := s.repo.FindCustomRoleGrants(ctx, companyID, roleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn("rbac custom role not resolvable",
					zap.String("company_id", companyID),
					zap.String("custom_role_id", roleID),
				)
				return permission.Grants(nil), nil
			}
			return nil, err
		}

		if s.rdb != nil {
			if data, err := json.Marshal(grants); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
					s.logger.Warn("rbac grant cache write failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return grants, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(permission.Grants), nil
}

func (s *service) systemRoleGrants(ctx context.Context, name string) (permission.Grants, error) {
	if grants, ok := s.systemRoles.Get(name); ok {
		return grants, nil
	}

	perms, err := s.repo.FindSystemRolePermissions(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("rbac system role not resolvable", zap.String("role", name))
			return nil, nil
		}
		return nil, err
	}

	grants, err := permission.GrantsFromStrings(perms)
	if err != nil {
		// malformed seed data denies
		s.logger.Error("rbac system role has malformed permissions", zap.String("role", name), zap.Error(err))
		return nil, nil
	}

	s.systemRoles.Add(name, grants)
	return grants, nil
}

func (s *service) InvalidateCustomRole(ctx context.Context, companyID, roleID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := GrantCacheKey(companyID, roleID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate rbac grant cache",
			zap.String("key", cacheKey),
			zap.Error(err),
		)
	}
}
