package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/apierr"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

func newAnalysisService(t *testing.T, env *testEnv) AnalysisService {
	t.Helper()
	return NewAnalysisService(
		env.db, env.log,
		env.repos.ledger, env.repos.evaluation, env.repos.employee, env.repos.profile, env.repos.comparison,
		env.pricing,
		AnalysisConfig{Concurrency: 2, QueueSize: 8},
	)
}

func waitForTerminal(t *testing.T, svc AnalysisService, taskID string) AnalysisStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status := svc.Status(taskID)
		if status != AnalysisProcessing {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("task %s never left processing", taskID)
	return AnalysisProcessing
}

type analysisFixture struct {
	env      *testEnv
	org      *types.Organization
	subjects []*types.Employee
}

func newAnalysisFixture(t *testing.T, subjectCount int) *analysisFixture {
	t.Helper()
	env := newTestEnv(t)
	org := env.createOrg(t, "analyst")
	employer := env.createOrg(t, "employer")
	subjects := make([]*types.Employee, 0, subjectCount)
	for i := 0; i < subjectCount; i++ {
		subject := env.createEmployee(t, &employer.ID, "Subject", string(rune('A'+i)))
		env.createEvaluation(t, subject.ID, employer.ID, types.KindPerformanceReview, 60+10*i)
		env.createEvaluation(t, subject.ID, employer.ID, types.KindPeerFeedback, 50+10*i)
		subjects = append(subjects, subject)
	}
	return &analysisFixture{env: env, org: org, subjects: subjects}
}

func (f *analysisFixture) subjectIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(f.subjects))
	for i, s := range f.subjects {
		ids[i] = s.ID
	}
	return ids
}

func TestSubmitValidation(t *testing.T) {
	f := newAnalysisFixture(t, 2)
	svc := newAnalysisService(t, f.env)
	ctx := context.Background()

	tests := []struct {
		name     string
		orgID    uuid.UUID
		subjects []uuid.UUID
		wantCode string
	}{
		{"nil org", uuid.Nil, f.subjectIDs(), apierr.CodeInvalidArgument},
		{"one subject", f.org.ID, f.subjectIDs()[:1], apierr.CodeInvalidArgument},
		{"duplicate subjects", f.org.ID, []uuid.UUID{f.subjects[0].ID, f.subjects[0].ID}, apierr.CodeInvalidArgument},
		{"unknown subject", f.org.ID, []uuid.UUID{f.subjects[0].ID, uuid.New()}, apierr.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tt.orgID, tt.subjects, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apierr.CodeOf(err); got != tt.wantCode {
				t.Fatalf("code: want=%q got=%q", tt.wantCode, got)
			}
		})
	}
}

func TestAnalysisLifecycle(t *testing.T) {
	f := newAnalysisFixture(t, 3)
	svc := newAnalysisService(t, f.env)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	out, err := svc.Submit(ctx, f.org.ID, f.subjectIDs(), map[string]any{"focus": "scores"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Status != string(AnalysisProcessing) {
		t.Fatalf("initial status: want=processing got=%s", out.Status)
	}

	if got := waitForTerminal(t, svc, out.TaskID); got != AnalysisCompleted {
		t.Fatalf("terminal status: want=completed got=%s (error=%q)", got, svc.Error(out.TaskID))
	}

	var result struct {
		Subjects []struct {
			SubjectID       uuid.UUID `json:"subject_id"`
			EvaluationCount int       `json:"evaluation_count"`
			AverageScore    float64   `json:"average_score"`
		} `json:"subjects"`
		Ranking []uuid.UUID `json:"ranking"`
	}
	if err := json.Unmarshal([]byte(svc.Result(out.TaskID)), &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if len(result.Subjects) != 3 {
		t.Fatalf("subject summaries: want=3 got=%d", len(result.Subjects))
	}
	if len(result.Ranking) != 3 {
		t.Fatalf("ranking length: want=3 got=%d", len(result.Ranking))
	}
	// Subject C carries the highest scores.
	if result.Ranking[0] != f.subjects[2].ID {
		t.Fatalf("ranking head: want=%s got=%s", f.subjects[2].ID, result.Ranking[0])
	}

	// The durable record carries the same result.
	record, err := f.env.repos.comparison.GetByID(context.Background(), nil, out.RecordID)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	if record == nil || len(record.Result) == 0 {
		t.Fatal("comparison record should hold the persisted result")
	}
}

func TestAnalysisFeeChargedAndRefunded(t *testing.T) {
	f := newAnalysisFixture(t, 2)
	svc := newAnalysisService(t, f.env)
	ctx := context.Background()
	if err := f.env.pricing.SetPrice(ctx, types.KindTalentComparison, 25, true); err != nil {
		t.Fatalf("set price: %v", err)
	}
	f.env.fund(t, f.org.ID, 30)

	// Submit while no worker runs, so state can be broken before execution.
	out, err := svc.Submit(ctx, f.org.ID, f.subjectIDs(), nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := f.env.balance(t, f.org.ID); got != 5 {
		t.Fatalf("balance after submit: want=5 got=%d", got)
	}

	// Remove a subject so execution fails, then let the pool run.
	if err := f.env.db.Delete(&types.Employee{}, "id = ?", f.subjects[0].ID).Error; err != nil {
		t.Fatalf("delete subject: %v", err)
	}
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(runCtx)

	if got := waitForTerminal(t, svc, out.TaskID); got != AnalysisFailed {
		t.Fatalf("terminal status: want=failed got=%s", got)
	}
	if svc.Error(out.TaskID) == "" {
		t.Fatal("failed task should expose an error message")
	}
	// The fee came back.
	if got := f.env.balance(t, f.org.ID); got != 30 {
		t.Fatalf("balance after refund: want=30 got=%d", got)
	}
}

func TestAnalysisInsufficientFee(t *testing.T) {
	f := newAnalysisFixture(t, 2)
	svc := newAnalysisService(t, f.env)
	ctx := context.Background()
	if err := f.env.pricing.SetPrice(ctx, types.KindTalentComparison, 25, true); err != nil {
		t.Fatalf("set price: %v", err)
	}
	f.env.fund(t, f.org.ID, 10)

	_, err := svc.Submit(ctx, f.org.ID, f.subjectIDs(), nil)
	if got := apierr.CodeOf(err); got != apierr.CodeInsufficientBalance {
		t.Fatalf("code: want=%q got=%q", apierr.CodeInsufficientBalance, got)
	}
	if got := f.env.balance(t, f.org.ID); got != 10 {
		t.Fatalf("balance: want=10 got=%d", got)
	}
	// No durable record without a paid submission.
	records, err := f.env.repos.comparison.ListRelated(ctx, nil, f.org.ID, f.subjectIDs(), 10)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("record count: want=0 got=%d", len(records))
	}
}

func TestAnalysisFreeWhenUnpriced(t *testing.T) {
	f := newAnalysisFixture(t, 2)
	svc := newAnalysisService(t, f.env)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	out, err := svc.Submit(ctx, f.org.ID, f.subjectIDs(), nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := waitForTerminal(t, svc, out.TaskID); got != AnalysisCompleted {
		t.Fatalf("terminal status: want=completed got=%s", got)
	}
	if got := f.env.balance(t, f.org.ID); got != 0 {
		t.Fatalf("unpriced analysis must not charge, balance=%d", got)
	}
}

// Pollers share the stored task pointer with the resolving worker; the race
// detector flags any terminal-state write that mutates it in place.
func TestStatusPollDuringResolution(t *testing.T) {
	f := newAnalysisFixture(t, 2)
	svc := newAnalysisService(t, f.env)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	out, err := svc.Submit(ctx, f.org.ID, f.subjectIDs(), nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if svc.Status(out.TaskID) == AnalysisProcessing {
				continue
			}
			svc.Result(out.TaskID)
			svc.Error(out.TaskID)
			return
		}
	}()

	if got := waitForTerminal(t, svc, out.TaskID); got != AnalysisCompleted {
		t.Fatalf("terminal status: want=completed got=%s (error=%q)", got, svc.Error(out.TaskID))
	}
	<-done
}

func TestComparisonLookups(t *testing.T) {
	f := newAnalysisFixture(t, 3)
	svc := newAnalysisService(t, f.env)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	// Two comparisons: the full set and a pair overlapping it.
	full, err := svc.Submit(ctx, f.org.ID, f.subjectIDs(), nil)
	if err != nil {
		t.Fatalf("submit full set: %v", err)
	}
	pair := f.subjectIDs()[:2]
	if _, err := svc.Submit(ctx, f.org.ID, pair, nil); err != nil {
		t.Fatalf("submit pair: %v", err)
	}
	waitForTerminal(t, svc, full.TaskID)

	latest, err := svc.LatestComparison(ctx, f.org.ID, f.subjectIDs())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || latest.ID != full.RecordID {
		t.Fatalf("latest record: want=%s got=%v", full.RecordID, latest)
	}
	// Subject order must not matter.
	reversed := []uuid.UUID{f.subjects[2].ID, f.subjects[1].ID, f.subjects[0].ID}
	if latest, err = svc.LatestComparison(ctx, f.org.ID, reversed); err != nil || latest == nil {
		t.Fatalf("latest with reversed order: record=%v err=%v", latest, err)
	}

	related, err := svc.RelatedComparisons(ctx, f.org.ID, f.subjectIDs(), 10)
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	// Only the pair record relates; the exact set is excluded.
	if len(related) != 1 {
		t.Fatalf("related count: want=1 got=%d", len(related))
	}

	other := f.env.createOrg(t, "outsider")
	if latest, err := svc.LatestComparison(ctx, other.ID, f.subjectIDs()); err != nil || latest != nil {
		t.Fatalf("latest for other org: want nil record, got=%v err=%v", latest, err)
	}
}

func TestAnalysisUnknownTask(t *testing.T) {
	f := newAnalysisFixture(t, 2)
	svc := newAnalysisService(t, f.env)

	if got := svc.Status("no-such-task"); got != AnalysisNotFound {
		t.Fatalf("status: want=not-found got=%s", got)
	}
	if svc.Result("no-such-task") != "" {
		t.Fatal("unknown task should have no result")
	}
}
