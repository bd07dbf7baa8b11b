package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const StatusPresent = "Present"

// Attendance is a single gym check-in. A member checks in at most once per
// local calendar day.
type Attendance struct {
	ID          snowflake.ID `json:"id"`
	MemberID    snowflake.ID `json:"memberId"`
	MemberName  string       `json:"memberName,omitempty"`
	Status      string       `json:"status"`
	CheckedInAt time.Time    `json:"checkedInAt"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type Service interface {
	Mark(ctx context.Context, memberID string) (Attendance, error)
	ListToday(ctx context.Context) ([]Attendance, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *Attendance) error
	ExistsSince(ctx context.Context, db *gorm.DB, memberID snowflake.ID, since time.Time) (bool, error)
	ListSince(ctx context.Context, db *gorm.DB, since time.Time) ([]Attendance, error)
}

var (
	ErrInvalidMember    = errors.New("invalid_member_id")
	ErrAlreadyCheckedIn = errors.New("already_checked_in")
)

// AlreadyCheckedInError carries the member name for the user-facing message.
type AlreadyCheckedInError struct {
	Name string
}

func (e *AlreadyCheckedInError) Error() string {
	return fmt.Sprintf("%s has already checked in today.", e.Name)
}

func (e *AlreadyCheckedInError) Is(target error) bool {
	return target == ErrAlreadyCheckedIn
}
