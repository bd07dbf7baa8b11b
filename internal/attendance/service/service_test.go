package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/gymdesk/internal/attendance/domain"
	"github.com/smallbiznis/gymdesk/internal/attendance/repository"
	memberdomain "github.com/smallbiznis/gymdesk/internal/member/domain"
	"github.com/smallbiznis/gymdesk/internal/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkOncePerLocalDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	kit := testkit.New(t, time.Date(2025, time.April, 2, 7, 0, 0, 0, loc))
	ctx := context.Background()
	svc := New(Params{DB: kit.DB, Log: kit.Log, GenID: kit.Node, Clock: kit.Clock, Repo: repository.Provide(), Members: kit.Members})

	member, err := kit.Members.Create(ctx, memberdomain.CreateMemberRequest{Name: "Priya", Phone: "1"})
	require.NoError(t, err)

	record, err := svc.Mark(ctx, member.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPresent, record.Status)

	kit.Clock.Advance(10 * time.Hour)
	_, err = svc.Mark(ctx, member.ID.String())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAlreadyCheckedIn))
	assert.Equal(t, "Priya has already checked in today.", err.Error())

	today, err := svc.ListToday(ctx)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "Priya", today[0].MemberName)

	// local midnight has passed, even though UTC is still on the same date
	kit.Clock.Set(time.Date(2025, time.April, 3, 0, 30, 0, 0, loc))
	_, err = svc.Mark(ctx, member.ID.String())
	require.NoError(t, err)

	today, err = svc.ListToday(ctx)
	require.NoError(t, err)
	assert.Len(t, today, 1)
}

func TestMarkUnknownMember(t *testing.T) {
	kit := testkit.New(t, time.Now())
	svc := New(Params{DB: kit.DB, Log: kit.Log, GenID: kit.Node, Clock: kit.Clock, Repo: repository.Provide(), Members: kit.Members})

	_, err := svc.Mark(context.Background(), "123")
	assert.ErrorIs(t, err, memberdomain.ErrNotFound)
	_, err = svc.Mark(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidMember)
}
