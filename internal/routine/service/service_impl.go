package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	memberdomain "github.com/smallbiznis/gymdesk/internal/member/domain"
	"github.com/smallbiznis/gymdesk/internal/routine/domain"
	trainerdomain "github.com/smallbiznis/gymdesk/internal/trainer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Members  memberdomain.Service
	Trainers trainerdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	members  memberdomain.Service
	trainers trainerdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("routine.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		members:  p.Members,
		trainers: p.Trainers,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRoutineRequest) (domain.Routine, error) {
	memberID, err := snowflake.ParseString(strings.TrimSpace(req.MemberID))
	if err != nil || memberID == 0 {
		return domain.Routine{}, domain.ErrInvalidMember
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Routine{}, domain.ErrInvalidName
	}

	exercises := make([]domain.Exercise, 0, len(req.Exercises))
	for _, ex := range req.Exercises {
		ex.Day = strings.TrimSpace(ex.Day)
		ex.ExerciseName = strings.TrimSpace(ex.ExerciseName)
		ex.Notes = strings.TrimSpace(ex.Notes)
		if ex.ExerciseName == "" || ex.Sets < 0 || ex.Reps < 0 {
			return domain.Routine{}, domain.ErrInvalidExercise
		}
		exercises = append(exercises, ex)
	}

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return domain.Routine{}, err
	}

	var trainerID *snowflake.ID
	var trainerName *string
	if raw := strings.TrimSpace(req.TrainerID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.Routine{}, domain.ErrInvalidTrainer
		}
		trainer, err := s.trainers.GetByID(ctx, id)
		if err != nil {
			return domain.Routine{}, err
		}
		trainerID = &id
		trainerName = &trainer.Name
	}

	now := time.Now().UTC()
	routine := domain.Routine{
		ID:          s.genID.Generate(),
		MemberID:    memberID,
		MemberName:  member.Name,
		TrainerID:   trainerID,
		TrainerName: trainerName,
		Name:        name,
		Exercises:   exercises,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, &routine); err != nil {
		return domain.Routine{}, err
	}
	return routine, nil
}

// List returns every routine, or only the routines of memberID when set.
func (s *Service) List(ctx context.Context, memberID string) ([]domain.Routine, error) {
	var filter *snowflake.ID
	if raw := strings.TrimSpace(memberID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return nil, domain.ErrInvalidMember
		}
		filter = &id
	}
	return s.repo.List(ctx, s.db, filter)
}
