package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmployeeStatus is the employment state of an Employee.
type EmployeeStatus string

const (
	StatusActive     EmployeeStatus = "Active"
	StatusOnLeave    EmployeeStatus = "On Leave"
	StatusTerminated EmployeeStatus = "Terminated"
)

var EmployeeStatuses = []EmployeeStatus{StatusActive, StatusOnLeave, StatusTerminated}

func (s EmployeeStatus) Valid() bool {
	for _, v := range EmployeeStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Employee struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string         `json:"name" gorm:"not null;index"`
	Email       string         `json:"email" gorm:"uniqueIndex;not null"`
	Phone       string         `json:"phone"`
	JobTitle    string         `json:"jobTitle" gorm:"not null"`
	Department  string         `json:"department" gorm:"not null;index"`
	Status      EmployeeStatus `json:"status" gorm:"type:varchar(16);not null;default:'Active';index"`
	OwnerUserID string         `json:"ownerUserId" gorm:"type:varchar(36);not null;index"`
	// SearchKey holds name, email and job title folded to lower case so
	// searches do not depend on the database's case folding.
	SearchKey   string         `json:"-" gorm:"not null;default:''"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = StatusActive
	}
	return nil
}

func (e *Employee) BeforeSave(tx *gorm.DB) error {
	e.Email = NormalizeEmail(e.Email)
	e.Name = strings.TrimSpace(e.Name)
	e.SearchKey = EmployeeSearchKey(e)
	return nil
}

// EmployeeSearchKey folds the searchable fields of e into one lower-case
// string. Fields are joined by newlines so a search cannot span two of them.
func EmployeeSearchKey(e *Employee) string {
	return strings.ToLower(e.Name + "\n" + e.Email + "\n" + e.JobTitle)
}

// FoldSearch folds a search term the same way as EmployeeSearchKey.
// Newlines become spaces so a term never matches across fields.
func FoldSearch(term string) string {
	return strings.ToLower(strings.ReplaceAll(term, "\n", " "))
}

// EmployeeInput is the request schema for creating an employee.
type EmployeeInput struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone"`
	JobTitle   string `json:"jobTitle" validate:"required"`
	Department string `json:"department" validate:"required"`
}

// EmployeePatch is the request schema for updating an employee. Nil fields
// are left unchanged.
type EmployeePatch struct {
	Name       *string         `json:"name"`
	Email      *string         `json:"email"`
	Phone      *string         `json:"phone"`
	JobTitle   *string         `json:"jobTitle"`
	Department *string         `json:"department"`
	Status     *EmployeeStatus `json:"status"`
}

// Apply copies the provided fields onto e.
func (p *EmployeePatch) Apply(e *Employee) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Email != nil {
		e.Email = *p.Email
	}
	if p.Phone != nil {
		e.Phone = *p.Phone
	}
	if p.JobTitle != nil {
		e.JobTitle = *p.JobTitle
	}
	if p.Department != nil {
		e.Department = *p.Department
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
}

type BulkDeleteInput struct {
	EmployeeIDs []string `json:"employeeIds" validate:"required,min=1,dive,required"`
}

type BulkStatusInput struct {
	EmployeeIDs []string       `json:"employeeIds" validate:"required,min=1,dive,required"`
	Status      EmployeeStatus `json:"status" validate:"required,employee_status"`
}

// EmployeePage is one page of a filtered employee listing.
type EmployeePage struct {
	Employees      []Employee `json:"employees"`
	TotalPages     int        `json:"totalPages"`
	CurrentPage    int        `json:"currentPage"`
	TotalEmployees int64      `json:"totalEmployees"`
	Departments    []string   `json:"departments"`
}

// EmployeeStatistics summarizes the employee collection.
type EmployeeStatistics struct {
	TotalEmployees  int64                    `json:"totalEmployees"`
	DepartmentCount int                      `json:"departmentCount"`
	ByStatus        map[EmployeeStatus]int64 `json:"byStatus"`
	ByDepartment    map[string]int64         `json:"byDepartment"`
}
