package models

import (
	"strings"
	"time"
)

// IssueStatus enum
type IssueStatus string

const (
	Pending    IssueStatus = "pending"
	InProgress IssueStatus = "in-progress"
	Resolved   IssueStatus = "resolved"
)

// Statuses lists the recognised statuses in lifecycle order.
var Statuses = []IssueStatus{Pending, InProgress, Resolved}

// ParseStatus returns the status named by s. Matching ignores case and
// surrounding whitespace; anything else is rejected.
func ParseStatus(s string) (IssueStatus, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Rank is the position of the status in the lifecycle, -1 if unknown.
func (s IssueStatus) Rank() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

// IssuePriority enum
type IssuePriority string

const (
	Low    IssuePriority = "low"
	Normal IssuePriority = "normal"
	High   IssuePriority = "high"
)

// NormalizePriority maps free-form input onto low/normal/high. "medium" is
// an alias of normal; empty or unrecognised values become normal.
func NormalizePriority(s string) IssuePriority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low
	case "high":
		return High
	default:
		return Normal
	}
}

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID          uint          `gorm:"primaryKey" bson:"_id" json:"id"`
	Category    string        `gorm:"not null;index" bson:"category" json:"category"`
	Title       string        `gorm:"not null" bson:"title" json:"title"`
	Description string        `gorm:"not null" bson:"description" json:"description"`
	Location    string        `gorm:"not null" bson:"location" json:"location"`
	ImageURL    *string       `bson:"image_url,omitempty" json:"image_url"`
	Status      IssueStatus   `gorm:"not null;default:pending;index" bson:"status" json:"status"`
	Priority    IssuePriority `gorm:"not null;default:normal" bson:"priority" json:"priority"`
	CreatedAt   time.Time     `gorm:"not null;index;autoCreateTime:false" bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;autoUpdateTime:false" bson:"updated_at" json:"updated_at"`
}

// NewIssue is the citizen-supplied part of an issue.
type NewIssue struct {
	Category    string  `json:"category" validate:"required,max=100"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"required,max=5000"`
	Location    string  `json:"location" validate:"required,max=300"`
	Priority    string  `json:"priority"`
	ImageURL    *string `json:"image_url"`
}

// IssueFilter narrows a listing. Empty fields match everything.
type IssueFilter struct {
	Category string
	Status   IssueStatus
	Limit    int
	Offset   int
}

// CountEntry is one row of a grouped count as the backends return it.
type CountEntry struct {
	Key   string
	Count int64
}

type StatusCount struct {
	Status IssueStatus `json:"status"`
	Count  int64       `json:"count"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Stats is the dashboard aggregation.
type Stats struct {
	TotalIssues  int64           `json:"totalIssues"`
	ByStatus     []StatusCount   `json:"byStatus"`
	ByCategory   []CategoryCount `json:"byCategory"`
	RecentIssues []Issue         `json:"recentIssues"`
}

func StatusCounts(rows []CountEntry) []StatusCount {
	out := make([]StatusCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, StatusCount{Status: IssueStatus(r.Key), Count: r.Count})
	}
	return out
}

func CategoryCounts(rows []CountEntry) []CategoryCount {
	out := make([]CategoryCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, CategoryCount{Category: r.Key, Count: r.Count})
	}
	return out
}
