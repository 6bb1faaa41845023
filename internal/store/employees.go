package store

import (
	"context"

	"employee-management-system/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmployeeStore reads and writes the employees table.
type EmployeeStore struct {
	db *gorm.DB
}

func NewEmployeeStore(db *gorm.DB) *EmployeeStore {
	return &EmployeeStore{db: db}
}

func (s *EmployeeStore) Create(ctx context.Context, e *model.Employee) error {
	return translate("create employee", s.db.WithContext(ctx).Create(e).Error)
}

func (s *EmployeeStore) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	var e model.Employee
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, translate("find employee", err)
	}
	return &e, nil
}

func (s *EmployeeStore) FindByIDs(ctx context.Context, ids []string) ([]model.Employee, error) {
	var list []model.Employee
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, translate("find employees", err)
	}
	return list, nil
}

func (s *EmployeeStore) FindByEmail(ctx context.Context, email string) (*model.Employee, error) {
	var e model.Employee
	err := s.db.WithContext(ctx).Where("email = ?", model.NormalizeEmail(email)).First(&e).Error
	if err != nil {
		return nil, translate("find employee", err)
	}
	return &e, nil
}

// Save writes every column of e.
func (s *EmployeeStore) Save(ctx context.Context, e *model.Employee) error {
	return translate("save employee", s.db.WithContext(ctx).Save(e).Error)
}

// Delete removes employee id, returning common.ErrNotFound when absent.
func (s *EmployeeStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Employee{})
	if res.Error != nil {
		return translate("delete employee", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate("delete employee", gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *EmployeeStore) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	res := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Employee{})
	return res.RowsAffected, translate("delete employees", res.Error)
}

// UpdateStatusMany sets status on ids and returns how many rows changed.
// Rows already in that status are not counted.
func (s *EmployeeStore) UpdateStatusMany(ctx context.Context, ids []string, status model.EmployeeStatus) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Employee{}).
		Where("id IN ? AND status <> ?", ids, status).
		Update("status", status)
	return res.RowsAffected, translate("update employee status", res.Error)
}

// List returns one page of employees matching q and the total match count.
// q must be normalized.
func (s *EmployeeStore) List(ctx context.Context, q *model.EmployeeQuery) ([]model.Employee, int64, error) {
	db := s.db.WithContext(ctx).Model(&model.Employee{})

	if q.Search != "" {
		pattern := "%" + escapeLike(model.FoldSearch(q.Search)) + "%"
		db = db.Where(`search_key LIKE ? ESCAPE '\'`, pattern)
	}
	if dept, ok := q.DepartmentFilter(); ok {
		db = db.Where("department = ?", dept)
	}
	if status, ok := q.StatusFilter(); ok {
		db = db.Where("status = ?", status)
	}

	// safe to branch into the count and page queries
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translate("count employees", err)
	}

	list := make([]model.Employee, 0, q.Limit)
	err := db.
		Order(clause.OrderByColumn{Column: clause.Column{Name: q.SortColumn()}, Desc: q.Descending()}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, translate("list employees", err)
	}
	return list, total, nil
}

// Departments returns the distinct departments of the whole collection.
func (s *EmployeeStore) Departments(ctx context.Context) ([]string, error) {
	var depts []string
	err := s.db.WithContext(ctx).Model(&model.Employee{}).
		Distinct("department").
		Order("department").
		Pluck("department", &depts).Error
	if err != nil {
		return nil, translate("list departments", err)
	}
	return depts, nil
}

// Statistics counts employees by status and by department.
func (s *EmployeeStore) Statistics(ctx context.Context) (*model.EmployeeStatistics, error) {
	stats := &model.EmployeeStatistics{
		ByStatus:     make(map[model.EmployeeStatus]int64),
		ByDepartment: make(map[string]int64),
	}
	db := s.db.WithContext(ctx)

	if err := db.Model(&model.Employee{}).Count(&stats.TotalEmployees).Error; err != nil {
		return nil, translate("count employees", err)
	}

	var byStatus []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&model.Employee{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, translate("count employees by status", err)
	}
	for _, st := range model.EmployeeStatuses {
		stats.ByStatus[st] = 0
	}
	for _, row := range byStatus {
		stats.ByStatus[model.EmployeeStatus(row.Status)] = row.Count
	}

	var byDept []struct {
		Department string
		Count      int64
	}
	if err := db.Model(&model.Employee{}).
		Select("department, count(*) as count").
		Group("department").
		Scan(&byDept).Error; err != nil {
		return nil, translate("count employees by department", err)
	}
	for _, row := range byDept {
		stats.ByDepartment[row.Department] = row.Count
	}
	stats.DepartmentCount = len(byDept)
	return stats, nil
}
