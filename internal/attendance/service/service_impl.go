package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymdesk/internal/attendance/domain"
	"github.com/smallbiznis/gymdesk/internal/clock"
	memberdomain "github.com/smallbiznis/gymdesk/internal/member/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Members memberdomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	members memberdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("attendance.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		members: p.Members,
	}
}

// Mark records a check-in for today. The existence check and insert are not
// atomic; two simultaneous check-ins for one member may both succeed.
func (s *Service) Mark(ctx context.Context, memberID string) (domain.Attendance, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(memberID))
	if err != nil || id == 0 {
		return domain.Attendance{}, domain.ErrInvalidMember
	}
	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return domain.Attendance{}, err
	}

	now := s.clock.Now()
	exists, err := s.repo.ExistsSince(ctx, s.db, id, clock.StartOfDay(now))
	if err != nil {
		return domain.Attendance{}, err
	}
	if exists {
		return domain.Attendance{}, &domain.AlreadyCheckedInError{Name: member.Name}
	}

	record := domain.Attendance{
		ID:          s.genID.Generate(),
		MemberID:    id,
		MemberName:  member.Name,
		Status:      domain.StatusPresent,
		CheckedInAt: now.UTC(),
		CreatedAt:   now.UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, &record); err != nil {
		return domain.Attendance{}, err
	}
	s.log.Debug("attendance marked", zap.String("member_id", id.String()))
	return record, nil
}

func (s *Service) ListToday(ctx context.Context) ([]domain.Attendance, error) {
	return s.repo.ListSince(ctx, s.db, clock.StartOfDay(s.clock.Now()))
}
