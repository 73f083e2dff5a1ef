package models

import "time"

// IssueUpdate is the append-only audit record written with every status
// transition. Rows are never modified or deleted.
type IssueUpdate struct {
	ID           uint        `gorm:"primaryKey" bson:"_id" json:"id"`
	IssueID      uint        `gorm:"not null;index" bson:"issue_id" json:"issue_id"`
	DepartmentID uint        `gorm:"not null" bson:"department_id" json:"department_id"`
	Status       IssueStatus `gorm:"not null" bson:"status" json:"status"`
	Comment      string      `bson:"comment" json:"comment"`
	CreatedAt    time.Time   `gorm:"not null;autoCreateTime:false" bson:"created_at" json:"created_at"`
}
