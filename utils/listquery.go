package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is the requested window of a list
type Page struct {
	Page  int
	Limit int
}

// Pagination describes a returned window of a list
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ParsePage reads page and limit from the query string.
// Missing or malformed values fall back to page 1 and DefaultPageSize; limit is capped at MaxPageSize.
func ParsePage(c *gin.Context) Page {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	if err != nil || limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Page{Page: page, Limit: limit}
}

// Offset is the number of rows skipped before this page
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Scope limits a query to this page
func (p Page) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.Limit)
}

// Paginate builds the pagination block for a page of total rows
func (p Page) Paginate(total int64) Pagination {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Filter is a query parameter recognised by a list endpoint
type Filter struct {
	Param string
	Apply func(db *gorm.DB, value string) *gorm.DB
}

// ContainsFilter matches value case-insensitively as a substring of any of the columns
func ContainsFilter(param string, columns ...string) Filter {
	return Filter{
		Param: param,
		Apply: func(db *gorm.DB, value string) *gorm.DB {
			pattern := ContainsPattern(value)
			clauses := make([]string, len(columns))
			args := make([]interface{}, len(columns))
			for i, col := range columns {
				clauses[i] = LikeClause(col)
				args[i] = pattern
			}
			return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
		},
	}
}

// SelectFilter returns the first filter whose parameter carries a non-blank value.
// Filters are listed in precedence order, so later parameters are ignored when an earlier one is sent.
func SelectFilter(c *gin.Context, filters []Filter) (Filter, string, bool) {
	for _, f := range filters {
		value := strings.TrimSpace(c.Query(f.Param))
		if value != "" {
			return f, value, true
		}
	}
	return Filter{}, "", false
}

// FilterScopes turns the winning filter, if any, into query scopes and reports its parameter name
func FilterScopes(c *gin.Context, filters []Filter) ([]func(*gorm.DB) *gorm.DB, string) {
	f, value, ok := SelectFilter(c, filters)
	if !ok {
		return nil, ""
	}
	return []func(*gorm.DB) *gorm.DB{
		func(db *gorm.DB) *gorm.DB { return f.Apply(db, value) },
	}, f.Param
}

// LikeClause is a case-insensitive LIKE predicate on column using backslash escapes
func LikeClause(column string) string {
	return "LOWER(" + column + ") LIKE LOWER(?) ESCAPE '\\'"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern wraps value in wildcards, escaping LIKE metacharacters
func ContainsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

// Ordering maps public ordering names to columns
type Ordering struct {
	Fields  map[string]string
	Default string
}

// Clause resolves an ordering parameter such as "name" or "-creation_date".
// Unknown fields resolve to the default.
func (o Ordering) Clause(raw string) string {
	desc := strings.HasPrefix(raw, "-")
	column, ok := o.Fields[strings.TrimPrefix(raw, "-")]
	if !ok {
		return o.Default
	}
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}
