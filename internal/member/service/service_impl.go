package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymdesk/internal/clock"
	"github.com/smallbiznis/gymdesk/internal/member/domain"
	plandomain "github.com/smallbiznis/gymdesk/internal/plan/domain"
	trainerdomain "github.com/smallbiznis/gymdesk/internal/trainer/domain"
	"github.com/smallbiznis/gymdesk/pkg/db"
	"github.com/smallbiznis/gymdesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Plans    plandomain.Service
	Trainers trainerdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	plans    plandomain.Service
	trainers trainerdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("member.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		plans:    p.Plans,
		trainers: p.Trainers,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateMemberRequest) (domain.Member, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Member{}, domain.ErrInvalidName
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return domain.Member{}, domain.ErrInvalidPhone
	}

	var email *string
	if raw := strings.ToLower(strings.TrimSpace(req.Email)); raw != "" {
		if !strings.Contains(raw, "@") {
			return domain.Member{}, domain.ErrInvalidEmail
		}
		existing, err := s.repo.FindByEmail(ctx, s.db, raw)
		if err != nil {
			return domain.Member{}, err
		}
		if existing != nil {
			return domain.Member{}, domain.ErrEmailTaken
		}
		email = &raw
	}

	var planID, trainerID *snowflake.ID
	if strings.TrimSpace(req.PlanID) != "" {
		id, err := s.resolvePlan(ctx, req.PlanID)
		if err != nil {
			return domain.Member{}, err
		}
		planID = &id
	}
	if strings.TrimSpace(req.TrainerID) != "" {
		id, err := s.resolveTrainer(ctx, req.TrainerID)
		if err != nil {
			return domain.Member{}, err
		}
		trainerID = &id
	}

	now := s.clock.Now()
	member := domain.Member{
		ID:          s.genID.Generate(),
		Name:        name,
		Email:       email,
		Phone:       phone,
		Status:      domain.StatusActive,
		JoinDate:    now.UTC(),
		DueDate:     req.DueDate,
		TrainerID:   trainerID,
		PlanID:      planID,
		WorkoutPlan: []byte("{}"),
		DietPlan:    []byte("{}"),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, &member); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Member{}, domain.ErrEmailTaken
		}
		return domain.Member{}, err
	}

	s.log.Info("member created", zap.String("member_id", member.ID.String()))
	return member, nil
}

func (s *Service) List(ctx context.Context, req domain.ListMemberRequest) (domain.ListMemberResponse, error) {
	filter := domain.ListFilter{}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			return domain.ListMemberResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}

	page := pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(req.PageSize),
	}.Normalize()

	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListMemberResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(page.PageSize), func(m *domain.MemberView) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        m.ID.String(),
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > page.PageSize {
		items = items[:page.PageSize]
	}

	members := make([]domain.MemberView, 0, len(items))
	for _, item := range items {
		members = append(members, *item)
	}
	return domain.ListMemberResponse{PageInfo: *pageInfo, Members: members}, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.MemberView, error) {
	memberID, err := parseID(id)
	if err != nil {
		return domain.MemberView{}, err
	}
	view, err := s.repo.FindViewByID(ctx, s.db, memberID)
	if err != nil {
		return domain.MemberView{}, err
	}
	if view == nil {
		return domain.MemberView{}, domain.ErrNotFound
	}
	return *view, nil
}

// AssignPlan attaches a plan and restarts the membership: status becomes
// Active and the due date moves to now plus the plan duration.
func (s *Service) AssignPlan(ctx context.Context, memberID, planID string) (domain.Member, error) {
	mid, err := parseID(memberID)
	if err != nil {
		return domain.Member{}, err
	}
	pid, err := snowflake.ParseString(strings.TrimSpace(planID))
	if err != nil || pid == 0 {
		return domain.Member{}, domain.ErrInvalidPlan
	}

	member, err := s.GetByID(ctx, mid)
	if err != nil {
		return domain.Member{}, err
	}
	plan, err := s.plans.GetByID(ctx, pid)
	if err != nil {
		return domain.Member{}, err
	}

	now := s.clock.Now()
	dueDate := now.AddDate(0, plan.DurationMonths, 0)
	if err := s.repo.UpdatePlan(ctx, s.db, mid, pid, dueDate, now); err != nil {
		return domain.Member{}, err
	}

	member.PlanID = &pid
	member.Status = domain.StatusActive
	due := dueDate.UTC()
	member.DueDate = &due
	member.UpdatedAt = now.UTC()

	s.log.Info("plan assigned",
		zap.String("member_id", mid.String()),
		zap.String("plan_id", pid.String()),
		zap.Time("due_date", due),
	)
	return *member, nil
}

func (s *Service) AssignTrainer(ctx context.Context, memberID, trainerID string) (domain.Member, error) {
	mid, err := parseID(memberID)
	if err != nil {
		return domain.Member{}, err
	}
	member, err := s.GetByID(ctx, mid)
	if err != nil {
		return domain.Member{}, err
	}
	tid, err := s.resolveTrainer(ctx, trainerID)
	if err != nil {
		return domain.Member{}, err
	}

	now := s.clock.Now()
	if err := s.repo.UpdateTrainer(ctx, s.db, mid, tid, now); err != nil {
		return domain.Member{}, err
	}
	member.TrainerID = &tid
	member.UpdatedAt = now.UTC()
	return *member, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	memberID, err := parseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, s.db, memberID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	s.log.Info("member deleted", zap.String("member_id", memberID.String()))
	return nil
}

func (s *Service) GetWorkoutPlan(ctx context.Context, memberID string) (domain.WorkoutPlan, error) {
	member, err := s.load(ctx, memberID)
	if err != nil {
		return domain.WorkoutPlan{}, err
	}
	var plan domain.WorkoutPlan
	if len(member.WorkoutPlan) > 0 {
		if err := json.Unmarshal(member.WorkoutPlan, &plan); err != nil {
			return domain.WorkoutPlan{}, err
		}
	}
	if plan.Exercises == nil {
		plan.Exercises = []string{}
	}
	return plan, nil
}

func (s *Service) UpdateWorkoutPlan(ctx context.Context, actor domain.Actor, memberID string, plan domain.WorkoutPlan) (domain.WorkoutPlan, error) {
	member, err := s.load(ctx, memberID)
	if err != nil {
		return domain.WorkoutPlan{}, err
	}
	if err := s.checkOwnership(ctx, actor, member); err != nil {
		return domain.WorkoutPlan{}, err
	}

	plan.Title = strings.TrimSpace(plan.Title)
	if plan.Title == "" {
		return domain.WorkoutPlan{}, domain.ErrInvalidTitle
	}
	plan.Exercises = compact(plan.Exercises)

	encoded, err := json.Marshal(plan)
	if err != nil {
		return domain.WorkoutPlan{}, err
	}
	if err := s.repo.UpdateWorkoutPlan(ctx, s.db, member.ID, encoded, s.clock.Now()); err != nil {
		return domain.WorkoutPlan{}, err
	}
	return plan, nil
}

func (s *Service) GetDietPlan(ctx context.Context, memberID string) (domain.DietPlan, error) {
	member, err := s.load(ctx, memberID)
	if err != nil {
		return domain.DietPlan{}, err
	}
	var plan domain.DietPlan
	if len(member.DietPlan) > 0 {
		if err := json.Unmarshal(member.DietPlan, &plan); err != nil {
			return domain.DietPlan{}, err
		}
	}
	if plan.Meals == nil {
		plan.Meals = []string{}
	}
	return plan, nil
}

func (s *Service) UpdateDietPlan(ctx context.Context, actor domain.Actor, memberID string, plan domain.DietPlan) (domain.DietPlan, error) {
	member, err := s.load(ctx, memberID)
	if err != nil {
		return domain.DietPlan{}, err
	}
	if err := s.checkOwnership(ctx, actor, member); err != nil {
		return domain.DietPlan{}, err
	}

	plan.Title = strings.TrimSpace(plan.Title)
	if plan.Title == "" {
		return domain.DietPlan{}, domain.ErrInvalidTitle
	}
	plan.Meals = compact(plan.Meals)

	encoded, err := json.Marshal(plan)
	if err != nil {
		return domain.DietPlan{}, err
	}
	if err := s.repo.UpdateDietPlan(ctx, s.db, member.ID, encoded, s.clock.Now()); err != nil {
		return domain.DietPlan{}, err
	}
	return plan, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Member, error) {
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	member, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, domain.ErrNotFound
	}
	return member, nil
}

// SetStatus overwrites the member status. Concurrent writers are last-writer-wins.
func (s *Service) SetStatus(ctx context.Context, id snowflake.ID, status domain.Status) error {
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, s.db, id, status, s.clock.Now())
}

func (s *Service) ListOverdueActive(ctx context.Context, now time.Time, after *domain.OverdueCursor, limit int) ([]domain.Member, error) {
	if limit <= 0 {
		limit = 200
	}
	return s.repo.ListOverdueActive(ctx, s.db, now, after, limit)
}

func (s *Service) CountAll(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, s.db, nil)
}

func (s *Service) CountByStatus(ctx context.Context, status domain.Status) (int64, error) {
	if !status.Valid() {
		return 0, domain.ErrInvalidStatus
	}
	return s.repo.Count(ctx, s.db, &status)
}

func (s *Service) load(ctx context.Context, id string) (*domain.Member, error) {
	memberID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, memberID)
}

// checkOwnership restricts trainers to members assigned to the trainer
// record that shares their login email.
func (s *Service) checkOwnership(ctx context.Context, actor domain.Actor, member *domain.Member) error {
	if !actor.IsTrainer() {
		return nil
	}
	trainer, err := s.trainers.FindByEmail(ctx, actor.Email)
	if err != nil {
		return err
	}
	if trainer == nil || member.TrainerID == nil || *member.TrainerID != trainer.ID {
		return domain.ErrNotAssigned
	}
	return nil
}

func (s *Service) resolvePlan(ctx context.Context, raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidPlan
	}
	if _, err := s.plans.GetByID(ctx, id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Service) resolveTrainer(ctx context.Context, raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidTrainer
	}
	if _, err := s.trainers.GetByID(ctx, id); err != nil {
		return 0, err
	}
	return id, nil
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
