package utils

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

// ListQuery is the generic shape of a paginated listing request:
// equality/range filters, comma separated sort keys ("-" prefix for
// descending), an optional column projection and page/limit.
type ListQuery struct {
	Filters map[string]string
	Sort    string
	Fields  []string
	Page    int
	Limit   int
}

const (
	defaultPageSize = 100
	maxPageSize     = 100
)

var columnPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

var filterOperators = map[string]string{
	"gte": ">=",
	"gt":  ">",
	"lte": "<=",
	"lt":  "<",
}

// ApplyListQuery turns a ListQuery into gorm clauses on db. Column names
// are validated against a strict pattern since they end up in raw SQL.
func ApplyListQuery(db *gorm.DB, q ListQuery) (*gorm.DB, error) {
	for key, value := range q.Filters {
		column, op := splitFilterKey(key)
		if !columnPattern.MatchString(column) {
			return nil, fmt.Errorf("%w: bad filter %q", ErrInvalidListParam, key)
		}
		db = db.Where(fmt.Sprintf("%s %s ?", column, op), value)
	}

	if q.Sort != "" {
		for _, key := range strings.Split(q.Sort, ",") {
			desc := strings.HasPrefix(key, "-")
			column := strings.TrimPrefix(key, "-")
			if !columnPattern.MatchString(column) {
				return nil, fmt.Errorf("%w: bad sort key %q", ErrInvalidListParam, key)
			}
			if desc {
				db = db.Order(column + " DESC")
			} else {
				db = db.Order(column)
			}
		}
	} else {
		db = db.Order("created_at DESC")
	}

	if len(q.Fields) > 0 {
		for _, column := range q.Fields {
			if !columnPattern.MatchString(column) {
				return nil, fmt.Errorf("%w: bad field %q", ErrInvalidListParam, column)
			}
		}
		db = db.Select(q.Fields)
	}

	page := q.Page
	if page == 0 {
		page = 1
	}
	limit := q.Limit
	if limit == 0 {
		limit = defaultPageSize
	}
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if limit < 1 || limit > maxPageSize {
		return nil, ErrInvalidPageSize
	}

	return db.Offset((page - 1) * limit).Limit(limit), nil
}

// splitFilterKey parses "price_gte" into ("price", ">="); keys without a
// recognized operator suffix mean equality.
func splitFilterKey(key string) (string, string) {
	if i := strings.LastIndex(key, "_"); i > 0 {
		if op, ok := filterOperators[key[i+1:]]; ok {
			return key[:i], op
		}
	}
	return key, "="
}
