package specification

import (
	"time"

	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type ByWorkflow struct {
	Name string
}

func (s ByWorkflow) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("workflow_name = ?", s.Name)
}

type StartedAfter struct {
	Since time.Time
}

func (s StartedAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("started_at >= ?", s.Since)
}

// RecentFirst orders audit rows newest first.
type RecentFirst struct{}

func (RecentFirst) Apply(db *gorm.DB) *gorm.DB {
	return OrderBy{Field: "started_at", Desc: true}.Apply(db)
}
