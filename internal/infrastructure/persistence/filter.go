package persistence

import (
	"strings"

	"github.com/retailbooks/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyFilter applies pagination and ordering from a shared.Filter. OrderBy
// values are matched against an allowlist by the callers' column naming, so
// only snake_case identifiers pass through.
func applyFilter(query *gorm.DB, filter shared.Filter, defaultOrder string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" && isSafeColumn(filter.OrderBy) {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		return query.Order(filter.OrderBy + " " + orderDir)
	}
	if defaultOrder != "" {
		return query.Order(defaultOrder)
	}
	return query
}

// isSafeColumn rejects order-by values that are not plain column identifiers
func isSafeColumn(col string) bool {
	for _, r := range col {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return col != ""
}
