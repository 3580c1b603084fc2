package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LifecycleState string

const (
	LifecycleActive   LifecycleState = "ACTIVE"
	LifecycleArchived LifecycleState = "ARCHIVED"
	LifecycleDeleted  LifecycleState = "DELETED"
)

// Lifecycle replaces per-entity deleted/archived flags. Rows are never
// physically removed; they move out of ACTIVE instead.
type Lifecycle struct {
	State     LifecycleState `gorm:"column:lifecycle_state;type:varchar(16);not null;default:ACTIVE;index" json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func Active() Lifecycle {
	return Lifecycle{State: LifecycleActive}
}

func (l Lifecycle) IsLive() bool {
	return l.State == "" || l.State == LifecycleActive
}

// Live restricts a query to ACTIVE rows of the statement's table.
func Live(db *gorm.DB) *gorm.DB {
	return db.Where(clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: "lifecycle_state"},
		Value:  LifecycleActive,
	})
}
