package service

import (
	"context"
	"fmt"
	"testing"

	"employee-management-system/internal/common"
	"employee-management-system/internal/logging"
	"employee-management-system/internal/model"
	"employee-management-system/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownerID = "5f0c7c1e-0000-4000-8000-000000000001"

type employeeFixture struct {
	svc    *EmployeeService
	audit  *AuditLog
	mirror *fakeMirror
	facets *countingCache
}

func newEmployeeService(t *testing.T) *employeeFixture {
	t.Helper()
	db := newTestDB(t)
	f := &employeeFixture{
		audit:  NewAuditLog(db),
		mirror: &fakeMirror{},
		facets: &countingCache{},
	}
	f.svc = NewEmployeeService(store.NewEmployeeStore(db), f.facets, f.audit, f.mirror, logging.Discard())
	return f
}

func strPtr(s string) *string { return &s }

func statusPtr(s model.EmployeeStatus) *model.EmployeeStatus { return &s }

func (f *employeeFixture) create(t *testing.T, name, email, dept string) *model.Employee {
	t.Helper()
	e, err := f.svc.Create(context.Background(), model.EmployeeInput{
		Name:       name,
		Email:      email,
		JobTitle:   "Engineer",
		Department: dept,
	}, ownerID)
	require.NoError(t, err)
	return e
}

func TestEmployeeService_Create(t *testing.T) {
	f := newEmployeeService(t)
	ctx := context.Background()

	e, err := f.svc.Create(ctx, model.EmployeeInput{
		Name:       "Jane Doe",
		Email:      "Jane@Corp.com",
		Phone:      "555-0100",
		JobTitle:   "Engineer",
		Department: "R&D",
	}, ownerID)
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "jane@corp.com", e.Email)
	assert.Equal(t, model.StatusActive, e.Status)
	assert.Equal(t, ownerID, e.OwnerUserID)

	f.svc.Wait()
	assert.Equal(t, []string{e.ID}, f.mirror.upserted)
	assert.Equal(t, 1, f.facets.invalidated)

	logs, total, err := f.audit.List(ctx, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, model.ActionCreate, logs[0].Action)
	assert.Equal(t, e.ID, logs[0].TargetID)
	assert.Equal(t, ownerID, logs[0].UserID)

	tests := []struct {
		name  string
		input model.EmployeeInput
		want  error
	}{
		{
			name:  "duplicate_email",
			input: model.EmployeeInput{Name: "Other", Email: "JANE@corp.com", JobTitle: "QA", Department: "R&D"},
			want:  common.ErrDuplicateEmail,
		},
		{
			name:  "missing_department",
			input: model.EmployeeInput{Name: "Other", Email: "other@corp.com", JobTitle: "QA"},
			want:  common.ErrMissingFields,
		},
		{
			name:  "blank_name",
			input: model.EmployeeInput{Name: "   ", Email: "other@corp.com", JobTitle: "QA", Department: "R&D"},
			want:  common.ErrMissingFields,
		},
		{
			name:  "bad_email",
			input: model.EmployeeInput{Name: "Other", Email: "other-at-corp", JobTitle: "QA", Department: "R&D"},
			want:  common.ErrInvalidEmailFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.input, ownerID)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEmployeeService_Update(t *testing.T) {
	f := newEmployeeService(t)
	ctx := context.Background()
	jane := f.create(t, "Jane Doe", "jane@corp.com", "R&D")
	f.create(t, "John Smith", "john@corp.com", "Sales")

	updated, err := f.svc.Update(ctx, jane.ID, model.EmployeePatch{
		JobTitle: strPtr("Lead Engineer"),
		Status:   statusPtr(model.StatusOnLeave),
	}, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "Lead Engineer", updated.JobTitle)
	assert.Equal(t, model.StatusOnLeave, updated.Status)
	assert.Equal(t, "Jane Doe", updated.Name)
	assert.Equal(t, "jane@corp.com", updated.Email)
	assert.Equal(t, "R&D", updated.Department)

	reloaded, err := f.svc.Get(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lead Engineer", reloaded.JobTitle)

	// keeping the same email is not a conflict
	_, err = f.svc.Update(ctx, jane.ID, model.EmployeePatch{Email: strPtr("JANE@corp.com")}, ownerID)
	assert.NoError(t, err)

	tests := []struct {
		name  string
		id    string
		patch model.EmployeePatch
		kind  common.Kind
		want  error
	}{
		{
			name:  "email_taken",
			id:    jane.ID,
			patch: model.EmployeePatch{Email: strPtr("john@corp.com")},
			kind:  common.KindDuplicate,
			want:  common.ErrDuplicateEmail,
		},
		{
			name:  "blank_name",
			id:    jane.ID,
			patch: model.EmployeePatch{Name: strPtr("  ")},
			kind:  common.KindValidation,
		},
		{
			name:  "bad_status",
			id:    jane.ID,
			patch: model.EmployeePatch{Status: statusPtr("Retired")},
			kind:  common.KindValidation,
		},
		{
			name:  "bad_email",
			id:    jane.ID,
			patch: model.EmployeePatch{Email: strPtr("nope")},
			kind:  common.KindValidation,
			want:  common.ErrInvalidEmailFormat,
		},
		{
			name:  "unknown_id",
			id:    "missing",
			patch: model.EmployeePatch{Name: strPtr("Ghost")},
			kind:  common.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Update(ctx, tt.id, tt.patch, ownerID)
			require.Error(t, err)
			assert.Equal(t, tt.kind, common.KindOf(err))
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestEmployeeService_Delete(t *testing.T) {
	f := newEmployeeService(t)
	ctx := context.Background()
	jane := f.create(t, "Jane Doe", "jane@corp.com", "R&D")

	require.NoError(t, f.svc.Delete(ctx, jane.ID, ownerID))

	_, err := f.svc.Get(ctx, jane.ID)
	assert.Equal(t, common.KindNotFound, common.KindOf(err))

	err = f.svc.Delete(ctx, jane.ID, ownerID)
	assert.Equal(t, common.KindNotFound, common.KindOf(err))

	f.svc.Wait()
	assert.Equal(t, []string{jane.ID}, f.mirror.removed)
}

func TestEmployeeService_BulkDelete(t *testing.T) {
	f := newEmployeeService(t)
	ctx := context.Background()
	a := f.create(t, "A", "a@corp.com", "R&D")
	b := f.create(t, "B", "b@corp.com", "R&D")
	c := f.create(t, "C", "c@corp.com", "Sales")

	deleted, err := f.svc.BulkDelete(ctx, model.BulkDeleteInput{EmployeeIDs: []string{a.ID, b.ID, "missing"}}, ownerID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	_, err = f.svc.Get(ctx, c.ID)
	assert.NoError(t, err)

	_, err = f.svc.BulkDelete(ctx, model.BulkDeleteInput{}, ownerID)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Equal(t, "Employee IDs array is required", err.(*common.Error).Message)

	_, err = f.svc.BulkDelete(ctx, model.BulkDeleteInput{EmployeeIDs: []string{""}}, ownerID)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestEmployeeService_BulkUpdateStatus(t *testing.T) {
	f := newEmployeeService(t)
	ctx := context.Background()
	a := f.create(t, "A", "a@corp.com", "R&D")
	b := f.create(t, "B", "b@corp.com", "R&D")
	f.svc.Wait()
	f.mirror.upserted = nil

	_, err := f.svc.Update(ctx, b.ID, model.EmployeePatch{Status: statusPtr(model.StatusOnLeave)}, ownerID)
	require.NoError(t, err)

	modified, err := f.svc.BulkUpdateStatus(ctx, model.BulkStatusInput{
		EmployeeIDs: []string{a.ID, b.ID},
		Status:      model.StatusOnLeave,
	}, ownerID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, modified)

	got, err := f.svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOnLeave, got.Status)

	f.svc.Wait()
	assert.Contains(t, f.mirror.upserted, a.ID)

	_, err = f.svc.BulkUpdateStatus(ctx, model.BulkStatusInput{EmployeeIDs: []string{a.ID}, Status: "Fired"}, ownerID)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Equal(t, "Valid status is required", err.(*common.Error).Message)

	_, err = f.svc.BulkUpdateStatus(ctx, model.BulkStatusInput{Status: model.StatusActive}, ownerID)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestEmployeeService_ListUsesDepartmentCache(t *testing.T) {
	f := newEmployeeService(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		dept := "R&D"
		if i%3 == 0 {
			dept = "Sales"
		}
		f.create(t, fmt.Sprintf("Employee %02d", i), fmt.Sprintf("e%02d@corp.com", i), dept)
	}

	page, err := f.svc.List(ctx, model.EmployeeQuery{Department: "Sales"})
	require.NoError(t, err)
	assert.Len(t, page.Employees, 4)
	assert.EqualValues(t, 4, page.TotalEmployees)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, []string{"R&D", "Sales"}, page.Departments)
	assert.True(t, f.facets.hit())

	page, err = f.svc.List(ctx, model.EmployeeQuery{Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, page.Employees, 5)
	assert.EqualValues(t, 12, page.TotalEmployees)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, "Employee 05", page.Employees[0].Name)
	assert.Equal(t, []string{"R&D", "Sales"}, page.Departments)

	f.create(t, "Newcomer", "new@corp.com", "Legal")
	assert.False(t, f.facets.hit())

	page, err = f.svc.List(ctx, model.EmployeeQuery{Search: "newcomer"})
	require.NoError(t, err)
	require.Len(t, page.Employees, 1)
	assert.Equal(t, []string{"Legal", "R&D", "Sales"}, page.Departments)
}

// departmentsDuringWrite runs write once, after the distinct departments
// were read but before they reach the cache.
type departmentsDuringWrite struct {
	*store.EmployeeStore
	write func()
}

func (s *departmentsDuringWrite) Departments(ctx context.Context) ([]string, error) {
	depts, err := s.EmployeeStore.Departments(ctx)
	if s.write != nil {
		write := s.write
		s.write = nil
		write()
	}
	return depts, err
}

func TestEmployeeService_DepartmentCacheIgnoresStaleFill(t *testing.T) {
	db := newTestDB(t)
	facets := &countingCache{}
	employees := &departmentsDuringWrite{EmployeeStore: store.NewEmployeeStore(db)}
	svc := NewEmployeeService(employees, facets, NewAuditLog(db), &fakeMirror{}, logging.Discard())
	ctx := context.Background()

	_, err := svc.Create(ctx, model.EmployeeInput{Name: "Jane", Email: "jane@corp.com", JobTitle: "Engineer", Department: "R&D"}, ownerID)
	require.NoError(t, err)

	employees.write = func() {
		_, err := svc.Create(ctx, model.EmployeeInput{Name: "Lee", Email: "lee@corp.com", JobTitle: "Counsel", Department: "Legal"}, ownerID)
		require.NoError(t, err)
	}
	page, err := svc.List(ctx, model.EmployeeQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"R&D"}, page.Departments)
	assert.False(t, facets.hit())

	page, err = svc.List(ctx, model.EmployeeQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Legal", "R&D"}, page.Departments)
	assert.True(t, facets.hit())
}

func TestEmployeeService_ListEmpty(t *testing.T) {
	f := newEmployeeService(t)

	page, err := f.svc.List(context.Background(), model.EmployeeQuery{})
	require.NoError(t, err)
	assert.NotNil(t, page.Employees)
	assert.Empty(t, page.Employees)
	assert.Equal(t, 0, page.TotalPages)
	assert.Equal(t, []string{}, page.Departments)
}

func TestEmployeeService_ListRejectsUnknownSort(t *testing.T) {
	f := newEmployeeService(t)

	_, err := f.svc.List(context.Background(), model.EmployeeQuery{SortBy: "salary"})
	assert.Equal(t, common.KindValidation, common.KindOf(err))
}

func TestEmployeeService_Stats(t *testing.T) {
	f := newEmployeeService(t)
	a := f.create(t, "A", "a@corp.com", "R&D")
	f.create(t, "B", "b@corp.com", "Sales")
	_, err := f.svc.Update(context.Background(), a.ID, model.EmployeePatch{Status: statusPtr(model.StatusTerminated)}, ownerID)
	require.NoError(t, err)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalEmployees)
	assert.Equal(t, 2, stats.DepartmentCount)
	assert.EqualValues(t, 1, stats.ByStatus[model.StatusTerminated])
	assert.EqualValues(t, 1, stats.ByStatus[model.StatusActive])
}

func TestAuditLog_ListByUser(t *testing.T) {
	db := newTestDB(t)
	audit := NewAuditLog(db)
	ctx := context.Background()

	require.NoError(t, audit.Record(ctx, "u1", model.ActionCreate, model.TargetEmployee, "e1", nil))
	require.NoError(t, audit.Record(ctx, "u2", model.ActionDelete, model.TargetEmployee, "e2", nil))
	require.NoError(t, audit.Record(ctx, "u1", model.ActionUpdate, model.TargetEmployee, "e1", map[string]string{"name": "x"}))

	logs, total, err := audit.ListByUser(ctx, "u1", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, logs, 2)
	assert.Equal(t, model.ActionUpdate, logs[0].Action)
	assert.JSONEq(t, `{"name":"x"}`, logs[0].Details)

	logs, total, err = audit.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, logs, 1)
}
