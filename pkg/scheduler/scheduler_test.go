package scheduler_test

import (
	"context"
	"testing"

	"github.com/yeisme/docchat/pkg/scheduler"
)

func newScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()

	s, err := scheduler.NewScheduler()
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	t.Cleanup(func() { _ = s.Stop() })

	return s
}

func TestAddCronRegistersJob(t *testing.T) {
	s := newScheduler(t)

	if err := s.AddCron("b.job", "*/5 * * * *", func(context.Context) {}, context.Background()); err != nil {
		t.Fatalf("AddCron: %v", err)
	}

	if err := s.AddCron("a.job", "0 * * * *", func(context.Context) {}, context.Background()); err != nil {
		t.Fatalf("AddCron: %v", err)
	}

	infos := s.GetJobInfos()
	if len(infos) != 2 {
		t.Fatalf("jobs = %d, want 2", len(infos))
	}

	if infos[0].Name != "a.job" || infos[1].Name != "b.job" {
		t.Fatalf("jobs not sorted by name: %q, %q", infos[0].Name, infos[1].Name)
	}

	info, err := s.GetJobInfoByName("b.job")
	if err != nil {
		t.Fatalf("GetJobInfoByName: %v", err)
	}

	if info.Status != scheduler.StatusScheduled || info.CronExpr != "*/5 * * * *" {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestAddCronRejectsDuplicateName(t *testing.T) {
	s := newScheduler(t)

	noop := func(context.Context) {}
	if err := s.AddCron("job", "*/5 * * * *", noop, context.Background()); err != nil {
		t.Fatalf("AddCron: %v", err)
	}

	if err := s.AddCron("job", "*/5 * * * *", noop, context.Background()); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestAddCronRejectsBadExpression(t *testing.T) {
	s := newScheduler(t)

	if err := s.AddCron("job", "not a cron", func(context.Context) {}, context.Background()); err == nil {
		t.Fatal("expected invalid cron error")
	}

	if len(s.GetJobInfos()) != 0 {
		t.Fatal("failed job must not be recorded")
	}
}

func TestRemoveJobByName(t *testing.T) {
	s := newScheduler(t)

	if err := s.AddCron("job", "*/5 * * * *", func(context.Context) {}, context.Background()); err != nil {
		t.Fatalf("AddCron: %v", err)
	}

	if err := s.RemoveJobByName("job"); err != nil {
		t.Fatalf("RemoveJobByName: %v", err)
	}

	if _, err := s.GetJobInfoByName("job"); err == nil {
		t.Fatal("job still present after removal")
	}

	if err := s.RemoveJobByName("job"); err == nil {
		t.Fatal("expected error removing unknown job")
	}
}
