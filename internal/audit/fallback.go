package audit

import (
	"go.uber.org/zap"
)

// FallbackLogger receives entries that could not be persisted so they are
// still recoverable from the operational log stream.
type FallbackLogger interface {
	Record(e Entry, cause error)
}

type zapFallback struct {
	logger *zap.Logger
}

func NewZapFallback(logger ...*zap.Logger) FallbackLogger {
	l := zap.L().Named("audit.fallback")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.fallback")
	}
	return &zapFallback{logger: l}
}

func (f *zapFallback) Record(e Entry, cause error) {
	fields := []zap.Field{
		zap.String("audit_id", e.ID),
		zap.String("action", e.Action),
		zap.String("performed_by", e.PerformedBy),
		zap.String("company_id", e.CompanyID),
		zap.String("target_user_type", e.TargetUserType),
		zap.String("category", e.Category),
		zap.String("severity", e.Severity),
		zap.String("outcome", e.Outcome),
		zap.Time("created_at", e.CreatedAt),
		zap.Any("details", e.Details),
		zap.Error(cause),
	}
	if e.TargetUser != nil {
		fields = append(fields, zap.String("target_user", *e.TargetUser))
	}
	f.logger.Error("audit entry not persisted", fields...)
}
