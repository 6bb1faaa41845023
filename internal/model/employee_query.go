package model

import (
	"math"
	"strings"

	"employee-management-system/internal/common"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	// FilterAll disables the department or status filter.
	FilterAll = "all"
)

// sortColumns maps accepted sortBy values to column names.
var sortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"phone":      "phone",
	"jobTitle":   "job_title",
	"department": "department",
	"status":     "status",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
}

// EmployeeQuery holds the filter, sort and page parameters of a listing.
type EmployeeQuery struct {
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
	Search     string `query:"search"`
	Department string `query:"department"`
	Status     string `query:"status"`
	SortBy     string `query:"sortBy"`
	SortOrder  string `query:"sortOrder"`
}

// Normalize applies defaults and bounds and rejects unknown sort options.
func (q *EmployeeQuery) Normalize() error {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	// keep (Page-1)*Limit within int
	if maxPage := math.MaxInt / q.Limit; q.Page > maxPage {
		q.Page = maxPage
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Department = strings.TrimSpace(q.Department)
	q.Status = strings.TrimSpace(q.Status)

	if q.SortBy == "" {
		q.SortBy = "name"
	}
	if _, ok := sortColumns[q.SortBy]; !ok {
		return common.Validation("Invalid sortBy: " + q.SortBy)
	}

	q.SortOrder = strings.ToLower(q.SortOrder)
	switch q.SortOrder {
	case "":
		q.SortOrder = "asc"
	case "asc", "desc":
	default:
		return common.Validation("sortOrder must be asc or desc")
	}
	return nil
}

func (q *EmployeeQuery) SortColumn() string {
	return sortColumns[q.SortBy]
}

func (q *EmployeeQuery) Descending() bool {
	return q.SortOrder == "desc"
}

func (q *EmployeeQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// DepartmentFilter returns the department to match and whether to filter.
func (q *EmployeeQuery) DepartmentFilter() (string, bool) {
	return activeFilter(q.Department)
}

func (q *EmployeeQuery) StatusFilter() (string, bool) {
	return activeFilter(q.Status)
}

func activeFilter(v string) (string, bool) {
	if v == "" || strings.EqualFold(v, FilterAll) {
		return "", false
	}
	return v, true
}

// TotalPages returns ceil(total / limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
