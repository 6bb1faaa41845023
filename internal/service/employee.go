package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"employee-management-system/internal/cache"
	"employee-management-system/internal/common"
	"employee-management-system/internal/logging"
	"employee-management-system/internal/model"
	"employee-management-system/internal/validation"
)

const mirrorTimeout = 30 * time.Second

var (
	errIDsRequired    = common.Wrap(common.KindValidation, "Employee IDs array is required", common.ErrInvalidInput)
	errStatusRequired = common.Wrap(common.KindValidation, "Valid status is required", common.ErrInvalidInput)
)

type EmployeeStore interface {
	Create(ctx context.Context, e *model.Employee) error
	FindByID(ctx context.Context, id string) (*model.Employee, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Employee, error)
	FindByEmail(ctx context.Context, email string) (*model.Employee, error)
	Save(ctx context.Context, e *model.Employee) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	UpdateStatusMany(ctx context.Context, ids []string, status model.EmployeeStatus) (int64, error)
	List(ctx context.Context, q *model.EmployeeQuery) ([]model.Employee, int64, error)
	Departments(ctx context.Context) ([]string, error)
	Statistics(ctx context.Context) (*model.EmployeeStatistics, error)
}

// Auditor records roster changes.
type Auditor interface {
	Record(ctx context.Context, userID, action, target, targetID string, details interface{}) error
}

type EmployeeService struct {
	employees EmployeeStore
	facets    cache.FacetCache
	audit     Auditor
	mirror    EmployeeMirror
	log       logging.Logger

	wg sync.WaitGroup
}

// NewEmployeeService wires the query engine. facets, audit and mirror may be
// nil.
func NewEmployeeService(employees EmployeeStore, facets cache.FacetCache, audit Auditor, mirror EmployeeMirror, log logging.Logger) *EmployeeService {
	if facets == nil {
		facets = cache.Noop{}
	}
	return &EmployeeService{
		employees: employees,
		facets:    facets,
		audit:     audit,
		mirror:    mirror,
		log:       log,
	}
}

// List returns one page of employees matching q together with every
// department present in the collection.
func (s *EmployeeService) List(ctx context.Context, q model.EmployeeQuery) (*model.EmployeePage, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}

	list, total, err := s.employees.List(ctx, &q)
	if err != nil {
		return nil, dependency(err)
	}
	if list == nil {
		list = []model.Employee{}
	}

	departments, err := s.departments(ctx)
	if err != nil {
		return nil, err
	}

	return &model.EmployeePage{
		Employees:      list,
		TotalPages:     model.TotalPages(total, q.Limit),
		CurrentPage:    q.Page,
		TotalEmployees: total,
		Departments:    departments,
	}, nil
}

func (s *EmployeeService) departments(ctx context.Context) ([]string, error) {
	cached, gen, ok, readErr := s.facets.Departments(ctx)
	if readErr != nil {
		s.log.Warn(ctx, "department cache read failed", "error", readErr)
	} else if ok {
		return cached, nil
	}

	departments, err := s.employees.Departments(ctx)
	if err != nil {
		return nil, dependency(err)
	}
	if departments == nil {
		departments = []string{}
	}
	// without a generation the fill could outlive a later write
	if readErr != nil {
		return departments, nil
	}
	if err := s.facets.SetDepartments(ctx, gen, departments); err != nil {
		s.log.Warn(ctx, "department cache write failed", "error", err)
	}
	return departments, nil
}

func (s *EmployeeService) Get(ctx context.Context, id string) (*model.Employee, error) {
	e, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// Create adds an employee owned by ownerID. Status starts as Active.
func (s *EmployeeService) Create(ctx context.Context, in model.EmployeeInput, ownerID string) (*model.Employee, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = model.NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.JobTitle = strings.TrimSpace(in.JobTitle)
	in.Department = strings.TrimSpace(in.Department)
	if in.Name == "" || in.Email == "" || in.JobTitle == "" || in.Department == "" {
		return nil, common.ErrMissingFields
	}
	if !validation.Email(in.Email) {
		return nil, common.ErrInvalidEmailFormat
	}
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, in.Email, ""); err != nil {
		return nil, err
	}

	e := &model.Employee{
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		JobTitle:    in.JobTitle,
		Department:  in.Department,
		Status:      model.StatusActive,
		OwnerUserID: ownerID,
	}
	if err := s.employees.Create(ctx, e); err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, dependency(err)
	}

	s.afterWrite(ctx, ownerID, model.ActionCreate, e.ID, in)
	s.mirrorUpsert(*e)
	return e, nil
}

// Update applies the provided fields of p to the employee with id.
func (s *EmployeeService) Update(ctx context.Context, id string, p model.EmployeePatch, actorID string) (*model.Employee, error) {
	if err := normalizePatch(&p); err != nil {
		return nil, err
	}

	e, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if p.Email != nil && *p.Email != e.Email {
		if err := s.ensureEmailFree(ctx, *p.Email, e.ID); err != nil {
			return nil, err
		}
	}

	p.Apply(e)
	if err := s.employees.Save(ctx, e); err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, dependency(err)
	}

	s.afterWrite(ctx, actorID, model.ActionUpdate, e.ID, p)
	s.mirrorUpsert(*e)
	return e, nil
}

func normalizePatch(p *model.EmployeePatch) error {
	required := []struct {
		name  string
		value *string
	}{
		{"name", p.Name},
		{"email", p.Email},
		{"jobTitle", p.JobTitle},
		{"department", p.Department},
	}
	for _, f := range required {
		if f.value == nil {
			continue
		}
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return common.Validation(f.name + " cannot be empty")
		}
	}

	if p.Phone != nil {
		*p.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Email != nil {
		*p.Email = model.NormalizeEmail(*p.Email)
		if !validation.Email(*p.Email) {
			return common.ErrInvalidEmailFormat
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return errStatusRequired
	}
	return nil
}

// ensureEmailFree reports common.ErrDuplicateEmail when another employee
// already uses email. The unique index still decides concurrent races.
func (s *EmployeeService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.employees.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return common.ErrDuplicateEmail
		}
		return nil
	case errors.Is(err, common.ErrNotFound):
		return nil
	default:
		return dependency(err)
	}
}

func (s *EmployeeService) Delete(ctx context.Context, id, actorID string) error {
	if err := s.employees.Delete(ctx, id); err != nil {
		return notFound(err)
	}

	s.afterWrite(ctx, actorID, model.ActionDelete, id, nil)
	s.mirrorRemove([]string{id})
	return nil
}

// BulkDelete removes every listed employee that exists and returns how many
// were removed. Unknown IDs are skipped.
func (s *EmployeeService) BulkDelete(ctx context.Context, in model.BulkDeleteInput, actorID string) (int64, error) {
	if err := validateIDs(in.EmployeeIDs); err != nil {
		return 0, err
	}

	deleted, err := s.employees.DeleteMany(ctx, in.EmployeeIDs)
	if err != nil {
		return 0, dependency(err)
	}

	s.afterWrite(ctx, actorID, model.ActionBulkDelete, "", map[string]interface{}{
		"employeeIds":  in.EmployeeIDs,
		"deletedCount": deleted,
	})
	s.mirrorRemove(in.EmployeeIDs)
	return deleted, nil
}

// BulkUpdateStatus sets status on every listed employee and returns how many
// rows actually changed.
func (s *EmployeeService) BulkUpdateStatus(ctx context.Context, in model.BulkStatusInput, actorID string) (int64, error) {
	if err := validateIDs(in.EmployeeIDs); err != nil {
		return 0, err
	}
	if !in.Status.Valid() {
		return 0, errStatusRequired
	}

	modified, err := s.employees.UpdateStatusMany(ctx, in.EmployeeIDs, in.Status)
	if err != nil {
		return 0, dependency(err)
	}

	s.afterWrite(ctx, actorID, model.ActionBulkStatus, "", map[string]interface{}{
		"employeeIds":   in.EmployeeIDs,
		"status":        in.Status,
		"modifiedCount": modified,
	})
	if modified > 0 && s.mirror != nil {
		if updated, err := s.employees.FindByIDs(ctx, in.EmployeeIDs); err != nil {
			s.log.Warn(ctx, "loading employees for mirror failed", "error", err)
		} else {
			s.mirrorUpsert(updated...)
		}
	}
	return modified, nil
}

func validateIDs(ids []string) error {
	if len(ids) == 0 {
		return errIDsRequired
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return errIDsRequired
		}
	}
	return nil
}

func (s *EmployeeService) Stats(ctx context.Context) (*model.EmployeeStatistics, error) {
	stats, err := s.employees.Statistics(ctx)
	if err != nil {
		return nil, dependency(err)
	}
	return stats, nil
}

// afterWrite drops cached facets and records the change. Neither failure
// undoes the write.
func (s *EmployeeService) afterWrite(ctx context.Context, actorID, action, targetID string, details interface{}) {
	if err := s.facets.Invalidate(ctx); err != nil {
		s.log.Warn(ctx, "department cache invalidation failed", "error", err)
	}
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, actorID, action, model.TargetEmployee, targetID, details); err != nil {
		s.log.Error(ctx, "recording operation log failed", "action", action, "target_id", targetID, "error", err)
	}
}

func (s *EmployeeService) mirrorUpsert(employees ...model.Employee) {
	s.mirrorAsync("upsert", func(ctx context.Context) error {
		return s.mirror.UpsertEmployees(ctx, employees)
	})
}

func (s *EmployeeService) mirrorRemove(ids []string) {
	s.mirrorAsync("remove", func(ctx context.Context) error {
		return s.mirror.RemoveEmployees(ctx, ids)
	})
}

// mirrorAsync runs fn in the background, detached from the request context.
func (s *EmployeeService) mirrorAsync(op string, fn func(ctx context.Context) error) {
	if s.mirror == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			s.log.Error(ctx, fmt.Sprintf("sheet mirror %s failed", op), "error", err)
		}
	}()
}

// Wait blocks until pending mirror updates finish.
func (s *EmployeeService) Wait() {
	s.wg.Wait()
}

func notFound(err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.New(common.KindNotFound, "Employee not found")
	}
	return dependency(err)
}
