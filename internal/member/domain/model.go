package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusActive         Status = "Active"
	StatusInactive       Status = "Inactive"
	StatusPendingPayment Status = "PendingPayment"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPendingPayment:
		return true
	default:
		return false
	}
}

// ParseStatus accepts canonical values plus the spaced "Pending Payment" form.
func ParseStatus(raw string) (Status, bool) {
	switch normalizeStatus(raw) {
	case "active":
		return StatusActive, true
	case "inactive":
		return StatusInactive, true
	case "pendingpayment":
		return StatusPendingPayment, true
	default:
		return "", false
	}
}

// Member is a gym member. Status is overwritten by payment and expiry events.
type Member struct {
	ID          snowflake.ID   `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name"`
	Email       *string        `json:"email,omitempty"`
	Phone       string         `json:"phone"`
	Status      Status         `json:"status"`
	JoinDate    time.Time      `json:"joinDate"`
	DueDate     *time.Time     `json:"dueDate,omitempty"`
	TrainerID   *snowflake.ID  `json:"trainerId,omitempty"`
	PlanID      *snowflake.ID  `json:"planId,omitempty"`
	WorkoutPlan datatypes.JSON `json:"-"`
	DietPlan    datatypes.JSON `json:"-"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (Member) TableName() string { return "members" }

// MemberView is a member joined with the names of its plan and trainer.
type MemberView struct {
	Member
	PlanName    *string `json:"planName,omitempty"`
	TrainerName *string `json:"trainerName,omitempty"`
}

type WorkoutPlan struct {
	Title     string   `json:"title"`
	Exercises []string `json:"exercises"`
}

type DietPlan struct {
	Title string   `json:"title"`
	Meals []string `json:"meals"`
}

type ListFilter struct {
	Status      Status
	CreatedFrom *time.Time
}

func normalizeStatus(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(raw)
}

// OverdueCursor resumes an overdue listing after the last member returned,
// in (dueDate, id) order.
type OverdueCursor struct {
	DueDate time.Time
	ID      snowflake.ID
}

// CursorAfter returns the cursor positioned after m. Members without a due
// date never appear in an overdue listing and yield nil.
func (m Member) CursorAfter() *OverdueCursor {
	if m.DueDate == nil {
		return nil
	}
	return &OverdueCursor{DueDate: *m.DueDate, ID: m.ID}
}
