// Package tenant keeps every company-owned query inside one company.
package tenant

import (
	"strings"

	"gorm.io/gorm"
)

// Scope restricts a query to rows owned by companyID. An empty company id
// matches nothing so a missing claim can never widen a read.
func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if companyID == "" {
			return db.Where("1 = 0")
		}
		if table := db.Statement.Table; table != "" && !strings.ContainsAny(table, " \"") {
			return db.Where(table+".company_id = ?", companyID)
		}
		return db.Where("company_id = ?", companyID)
	}
}
