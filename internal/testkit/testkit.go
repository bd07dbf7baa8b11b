// Package testkit wires the core gym services over a test database.
package testkit

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymdesk/internal/clock"
	memberdomain "github.com/smallbiznis/gymdesk/internal/member/domain"
	memberrepository "github.com/smallbiznis/gymdesk/internal/member/repository"
	memberservice "github.com/smallbiznis/gymdesk/internal/member/service"
	plandomain "github.com/smallbiznis/gymdesk/internal/plan/domain"
	planrepository "github.com/smallbiznis/gymdesk/internal/plan/repository"
	planservice "github.com/smallbiznis/gymdesk/internal/plan/service"
	trainerdomain "github.com/smallbiznis/gymdesk/internal/trainer/domain"
	trainerrepository "github.com/smallbiznis/gymdesk/internal/trainer/repository"
	trainerservice "github.com/smallbiznis/gymdesk/internal/trainer/service"
	"github.com/smallbiznis/gymdesk/pkg/db/dbtest"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Kit struct {
	DB         *gorm.DB
	Log        *zap.Logger
	Node       *snowflake.Node
	Clock      *clock.FakeClock
	MemberRepo memberdomain.Repository
	Members    memberdomain.Service
	Plans      plandomain.Service
	Trainers   trainerdomain.Service
}

// New opens a fresh database and builds member, plan and trainer services
// on a fake clock frozen at now.
func New(t testing.TB, now time.Time) *Kit {
	t.Helper()

	conn := dbtest.Open(t)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	log := zap.NewNop()
	fake := clock.NewFakeClock(now)

	plans := planservice.New(planservice.Params{DB: conn, Log: log, GenID: node, Repo: planrepository.Provide()})
	trainers := trainerservice.New(trainerservice.Params{DB: conn, Log: log, GenID: node, Repo: trainerrepository.Provide()})
	memberRepo := memberrepository.Provide()
	members := memberservice.New(memberservice.Params{
		DB:       conn,
		Log:      log,
		GenID:    node,
		Clock:    fake,
		Repo:     memberRepo,
		Plans:    plans,
		Trainers: trainers,
	})

	return &Kit{
		DB:         conn,
		Log:        log,
		Node:       node,
		Clock:      fake,
		MemberRepo: memberRepo,
		Members:    members,
		Plans:      plans,
		Trainers:   trainers,
	}
}
