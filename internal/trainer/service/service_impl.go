package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymdesk/internal/trainer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("trainer.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTrainerRequest) (domain.Trainer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Trainer{}, domain.ErrInvalidName
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return domain.Trainer{}, domain.ErrInvalidPhone
	}
	var email *string
	if raw := strings.ToLower(strings.TrimSpace(req.Email)); raw != "" {
		if !strings.Contains(raw, "@") {
			return domain.Trainer{}, domain.ErrInvalidEmail
		}
		email = &raw
	}
	if req.Experience < 0 {
		return domain.Trainer{}, domain.ErrInvalidExperience
	}
	if req.Salary < 0 {
		return domain.Trainer{}, domain.ErrInvalidSalary
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := time.Now().UTC()
	trainer := domain.Trainer{
		ID:             s.genID.Generate(),
		Name:           name,
		Phone:          phone,
		Email:          email,
		Specialization: strings.TrimSpace(req.Specialization),
		Experience:     req.Experience,
		Salary:         req.Salary,
		IsActive:       active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, s.db, &trainer); err != nil {
		return domain.Trainer{}, err
	}
	return trainer, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Trainer, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Trainer{}
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Trainer, error) {
	trainerID, err := parseID(id)
	if err != nil {
		return domain.Trainer{}, err
	}
	trainer, err := s.GetByID(ctx, trainerID)
	if err != nil {
		return domain.Trainer{}, err
	}
	return *trainer, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	trainerID, err := parseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, s.db, trainerID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Trainer, error) {
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	trainer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if trainer == nil {
		return nil, domain.ErrNotFound
	}
	return trainer, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*domain.Trainer, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	return s.repo.FindByEmail(ctx, s.db, email)
}

func (s *Service) CountActive(ctx context.Context) (int64, error) {
	return s.repo.CountActive(ctx, s.db)
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
