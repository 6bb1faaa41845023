package model

import "time"

// OperationLog records one administrative change to the employee roster.
type OperationLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);index"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	TargetID  string    `json:"targetId"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

const (
	ActionCreate     = "create"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionBulkDelete = "bulk_delete"
	ActionBulkStatus = "bulk_status"

	TargetEmployee = "employee"
)
