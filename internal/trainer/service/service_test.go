package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymdesk/internal/trainer/domain"
	"github.com/smallbiznis/gymdesk/internal/trainer/repository"
	"github.com/smallbiznis/gymdesk/pkg/db/dbtest"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}
	return New(Params{
		DB:    dbtest.Open(t),
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreateTrainerAndFindByEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateTrainerRequest{
		Name:           "Vikram",
		Phone:          "98765",
		Email:          "Vikram@Gym.test",
		Specialization: "Strength",
		Experience:     5,
		Salary:         40000,
	})
	if err != nil {
		t.Fatalf("create trainer: %v", err)
	}
	if !created.IsActive {
		t.Fatal("expected trainer to default to active")
	}

	found, err := svc.FindByEmail(ctx, "vikram@gym.test")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("expected trainer %s, got %+v", created.ID, found)
	}

	missing, err := svc.FindByEmail(ctx, "")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for blank email, got %+v %v", missing, err)
	}
}

func TestCreateTrainerValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		req  domain.CreateTrainerRequest
		want error
	}{
		{domain.CreateTrainerRequest{Phone: "1"}, domain.ErrInvalidName},
		{domain.CreateTrainerRequest{Name: "A"}, domain.ErrInvalidPhone},
		{domain.CreateTrainerRequest{Name: "A", Phone: "1", Email: "x"}, domain.ErrInvalidEmail},
		{domain.CreateTrainerRequest{Name: "A", Phone: "1", Experience: -1}, domain.ErrInvalidExperience},
		{domain.CreateTrainerRequest{Name: "A", Phone: "1", Salary: -5}, domain.ErrInvalidSalary},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc.req); err != tc.want {
			t.Fatalf("expected %v, got %v", tc.want, err)
		}
	}
}

func TestCountActiveAndDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	inactive := false

	kept, err := svc.Create(ctx, domain.CreateTrainerRequest{Name: "A", Phone: "1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateTrainerRequest{Name: "B", Phone: "2", IsActive: &inactive}); err != nil {
		t.Fatalf("create: %v", err)
	}

	count, err := svc.CountActive(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 active trainer, got %d", count)
	}

	items, err := svc.List(ctx)
	if err != nil || len(items) != 2 {
		t.Fatalf("expected 2 trainers, got %d (%v)", len(items), err)
	}

	if err := svc.Delete(ctx, kept.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, kept.ID.String()); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, "not-an-id"); err != domain.ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}
