package postgres

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const (
	defaultLimit = 20
	maxLimit     = 200
)

// applyPaginationAndSort orders by a whitelisted column and pages the query.
// Unknown sort columns fall back to created_at.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, allowed []string, limit, offset int) *gorm.DB {
	column := "created_at"
	for _, a := range allowed {
		if a == sortBy {
			column = sortBy
			break
		}
	}

	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", column, direction)).Order("id ASC")

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}
