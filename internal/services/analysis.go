package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/apierr"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/cache"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/repos"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

type AnalysisStatus string

const (
	AnalysisProcessing AnalysisStatus = "processing"
	AnalysisCompleted  AnalysisStatus = "completed"
	AnalysisFailed     AnalysisStatus = "failed"
	AnalysisNotFound   AnalysisStatus = "not-found"
)

// TaskRetention is how long a task stays pollable after submission,
// regardless of outcome.
const TaskRetention = 30 * time.Minute

// AnalysisTask is the transient, in-memory record a caller polls. It is
// never persisted; the durable half lives on the ComparisonRecord created
// before submission.
type AnalysisTask struct {
	ID             string
	RecordID       uuid.UUID
	OrganizationID uuid.UUID
	SubjectIDs     []uuid.UUID
	Status         AnalysisStatus
	Result         string
	Error          string
	ChargedPoints  int64
	CreatedAt      time.Time
}

type SubmitAnalysisOutput struct {
	TaskID   string    `json:"task_id"`
	RecordID uuid.UUID `json:"record_id"`
	Status   string    `json:"status"`
}

type AnalysisService interface {
	// Submit stores the durable comparison record, charges the analysis fee
	// if one is configured, and schedules the work. It returns before any of
	// the analysis has run.
	Submit(ctx context.Context, orgID uuid.UUID, subjectIDs []uuid.UUID, params map[string]any) (*SubmitAnalysisOutput, error)
	Status(taskID string) AnalysisStatus
	Result(taskID string) string
	Error(taskID string) string
	// LatestComparison returns the newest durable record for the exact
	// subject set, or nil when the organization has never compared it.
	LatestComparison(ctx context.Context, orgID uuid.UUID, subjectIDs []uuid.UUID) (*types.ComparisonRecord, error)
	// RelatedComparisons returns recent records sharing at least one subject
	// with the given set, excluding the exact set itself.
	RelatedComparisons(ctx context.Context, orgID uuid.UUID, subjectIDs []uuid.UUID, limit int) ([]*types.ComparisonRecord, error)
	// Start launches the worker pool and the retention janitor.
	Start(ctx context.Context)
}

type analysisService struct {
	db             *gorm.DB
	log            *logger.Logger
	ledgerRepo     repos.LedgerRepo
	evaluationRepo repos.EvaluationRepo
	employeeRepo   repos.EmployeeRepo
	profileRepo    repos.ProfileRecordRepo
	comparisonRepo repos.ComparisonRepo
	pricing        PricingService

	tasks       *cache.TTLStore[*AnalysisTask]
	queue       chan string
	concurrency int

	// transitionMu serializes terminal-state writes so a task resolves
	// exactly once.
	transitionMu sync.Mutex
}

type AnalysisConfig struct {
	Concurrency int
	QueueSize   int
}

func NewAnalysisService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ledgerRepo repos.LedgerRepo,
	evaluationRepo repos.EvaluationRepo,
	employeeRepo repos.EmployeeRepo,
	profileRepo repos.ProfileRecordRepo,
	comparisonRepo repos.ComparisonRepo,
	pricing PricingService,
	cfg AnalysisConfig,
) AnalysisService {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 8
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 64
	}
	log := baseLog.With("service", "AnalysisService")
	return &analysisService{
		db:             db,
		log:            log,
		ledgerRepo:     ledgerRepo,
		evaluationRepo: evaluationRepo,
		employeeRepo:   employeeRepo,
		profileRepo:    profileRepo,
		comparisonRepo: comparisonRepo,
		pricing:        pricing,
		tasks:          cache.NewTTLStore[*AnalysisTask](TaskRetention, time.Minute, log),
		queue:          make(chan string, cfg.QueueSize),
		concurrency:    cfg.Concurrency,
	}
}

func (s *analysisService) Start(ctx context.Context) {
	s.log.Info("Starting analysis worker pool", "concurrency", s.concurrency, "queue_size", cap(s.queue))
	for i := 0; i < s.concurrency; i++ {
		workerID := i + 1
		go s.runLoop(ctx, workerID)
	}
	s.tasks.StartJanitor(ctx)
}

func (s *analysisService) runLoop(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Analysis worker stopped", "worker_id", workerID)
			return
		case taskID := <-s.queue:
			s.execute(taskID)
		}
	}
}

// taskID hashes (org, sorted subjects) and suffixes the submission clock so
// repeated submissions of the same set do not collide.
func taskID(orgID uuid.UUID, subjectIDs []uuid.UUID) string {
	ids := make([]string, 0, len(subjectIDs))
	for _, id := range subjectIDs {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)
	h := sha256.New()
	h.Write([]byte(orgID.String()))
	for _, id := range ids {
		h.Write([]byte(id))
	}
	return fmt.Sprintf("%s-%x", hex.EncodeToString(h.Sum(nil)[:8]), time.Now().UnixNano())
}

func (s *analysisService) Submit(ctx context.Context, orgID uuid.UUID, subjectIDs []uuid.UUID, params map[string]any) (*SubmitAnalysisOutput, error) {
	if orgID == uuid.Nil {
		return nil, apierr.InvalidArgument("missing organization id")
	}
	if len(subjectIDs) < 2 {
		return nil, apierr.InvalidArgument("a comparison needs at least two subjects")
	}
	seen := make(map[uuid.UUID]bool, len(subjectIDs))
	for _, id := range subjectIDs {
		if id == uuid.Nil {
			return nil, apierr.InvalidArgument("subject ids must be non-empty")
		}
		if seen[id] {
			return nil, apierr.InvalidArgument("duplicate subject id %s", id)
		}
		seen[id] = true
	}
	employees, err := s.employeeRepo.GetByIDs(ctx, nil, subjectIDs)
	if err != nil {
		return nil, err
	}
	if len(employees) != len(subjectIDs) {
		return nil, apierr.NotFound("one or more subjects do not exist")
	}

	fee := int64(0)
	if cost, err := s.pricing.PriceFor(ctx, types.KindTalentComparison); err == nil {
		fee = cost
	} else if !apierr.Is(err, apierr.CodePriceNotConfigured) {
		return nil, err
	}

	subjectsJSON, err := json.Marshal(subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal subject ids: %w", err)
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	id := taskID(orgID, subjectIDs)
	record := &types.ComparisonRecord{
		ID:             uuid.New(),
		OrganizationID: orgID,
		SubjectIDs:     datatypes.JSON(subjectsJSON),
		SubjectKey:     repos.SubjectKey(subjectIDs),
		Params:         datatypes.JSON(paramsJSON),
		TaskID:         id,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	// Record first, task second: the task carries the record id from birth,
	// so linking a finished analysis back to storage is a plain key lookup.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if fee > 0 {
			ok, err := s.ledgerRepo.DebitIfSufficient(ctx, tx, orgID, fee)
			if err != nil {
				return fmt.Errorf("debit analysis fee: %w", err)
			}
			if !ok {
				return apierr.InsufficientBalance("balance below analysis fee of %d points", fee)
			}
			entry := &types.LedgerEntry{
				ID:             uuid.New(),
				OrganizationID: orgID,
				Delta:          -fee,
				Reason:         types.ReasonRightsConsumed,
				Description:    "Points spent on a talent comparison analysis",
				EffectiveDate:  time.Now().UTC(),
				CreatedAt:      time.Now().UTC(),
			}
			if err := s.ledgerRepo.AppendEntry(ctx, tx, entry); err != nil {
				return fmt.Errorf("append ledger entry: %w", err)
			}
		}
		return s.comparisonRepo.Create(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	task := &AnalysisTask{
		ID:             id,
		RecordID:       record.ID,
		OrganizationID: orgID,
		SubjectIDs:     subjectIDs,
		Status:         AnalysisProcessing,
		ChargedPoints:  fee,
		CreatedAt:      time.Now().UTC(),
	}
	s.tasks.Set(id, task)

	select {
	case s.queue <- id:
	default:
		// Queue saturated: the submitter runs the analysis itself rather
		// than dropping the task or blocking on the channel.
		s.log.Warn("Analysis queue saturated, running on submitter", "task_id", id)
		s.execute(id)
	}

	return &SubmitAnalysisOutput{TaskID: id, RecordID: record.ID, Status: string(AnalysisProcessing)}, nil
}

func (s *analysisService) Status(taskID string) AnalysisStatus {
	task, ok := s.tasks.Get(taskID)
	if !ok {
		return AnalysisNotFound
	}
	return task.Status
}

func (s *analysisService) Result(taskID string) string {
	task, ok := s.tasks.Get(taskID)
	if !ok || task.Status != AnalysisCompleted {
		return ""
	}
	return task.Result
}

func (s *analysisService) Error(taskID string) string {
	task, ok := s.tasks.Get(taskID)
	if !ok || task.Status != AnalysisFailed {
		return ""
	}
	return task.Error
}

func (s *analysisService) LatestComparison(ctx context.Context, orgID uuid.UUID, subjectIDs []uuid.UUID) (*types.ComparisonRecord, error) {
	if orgID == uuid.Nil || len(subjectIDs) == 0 {
		return nil, apierr.InvalidArgument("missing organization or subject ids")
	}
	return s.comparisonRepo.GetBySubjectSet(ctx, nil, orgID, subjectIDs)
}

func (s *analysisService) RelatedComparisons(ctx context.Context, orgID uuid.UUID, subjectIDs []uuid.UUID, limit int) ([]*types.ComparisonRecord, error) {
	if orgID == uuid.Nil || len(subjectIDs) == 0 {
		return nil, apierr.InvalidArgument("missing organization or subject ids")
	}
	return s.comparisonRepo.ListRelated(ctx, nil, orgID, subjectIDs, limit)
}

func (s *analysisService) execute(taskID string) {
	task, ok := s.tasks.Get(taskID)
	if !ok {
		return
	}
	// Execution is detached from the submitting request's lifetime.
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Analysis panicked", "task_id", taskID, "panic", r)
			s.fail(ctx, task, fmt.Sprintf("analysis panicked: %v", r))
		}
	}()

	result, err := s.analyze(ctx, task)
	if err != nil {
		s.fail(ctx, task, err.Error())
		return
	}
	if len(result) == 0 {
		// A blank success is a failure with a better name.
		s.fail(ctx, task, "analysis produced an empty result")
		return
	}
	s.complete(ctx, task, string(result))
}

type subjectSummary struct {
	SubjectID       uuid.UUID `json:"subject_id"`
	Name            string    `json:"name"`
	EvaluationCount int       `json:"evaluation_count"`
	AverageScore    float64   `json:"average_score"`
	ProfileCount    int       `json:"profile_count"`
}

type comparisonResult struct {
	Subjects    []subjectSummary `json:"subjects"`
	Ranking     []uuid.UUID      `json:"ranking"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// analyze loads each subject's history concurrently and builds the
// comparative summary.
func (s *analysisService) analyze(ctx context.Context, task *AnalysisTask) ([]byte, error) {
	summaries := make([]subjectSummary, len(task.SubjectIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, subjectID := range task.SubjectIDs {
		g.Go(func() error {
			emp, err := s.employeeRepo.GetByID(gctx, nil, subjectID)
			if err != nil {
				return fmt.Errorf("load subject %s: %w", subjectID, err)
			}
			if emp == nil {
				return fmt.Errorf("subject %s no longer exists", subjectID)
			}
			evals, err := s.evaluationRepo.ListBySubjectOldestFirst(gctx, nil, subjectID)
			if err != nil {
				return fmt.Errorf("load evaluations for %s: %w", subjectID, err)
			}
			profiles, err := s.profileRepo.ListByEmployee(gctx, nil, subjectID)
			if err != nil {
				return fmt.Errorf("load profiles for %s: %w", subjectID, err)
			}
			total := 0
			for _, e := range evals {
				total += e.Score
			}
			avg := 0.0
			if len(evals) > 0 {
				avg = float64(total) / float64(len(evals))
			}
			summaries[i] = subjectSummary{
				SubjectID:       subjectID,
				Name:            emp.FirstName + " " + emp.LastName,
				EvaluationCount: len(evals),
				AverageScore:    avg,
				ProfileCount:    len(profiles),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranking := make([]uuid.UUID, len(summaries))
	order := make([]subjectSummary, len(summaries))
	copy(order, summaries)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].AverageScore > order[j].AverageScore
	})
	for i, sum := range order {
		ranking[i] = sum.SubjectID
	}

	return json.Marshal(comparisonResult{
		Subjects:    summaries,
		Ranking:     ranking,
		GeneratedAt: time.Now().UTC(),
	})
}

func (s *analysisService) complete(ctx context.Context, task *AnalysisTask, result string) {
	if !s.transition(task, AnalysisCompleted, result, "") {
		return
	}
	if err := s.comparisonRepo.UpdateResult(ctx, nil, task.RecordID, []byte(result)); err != nil {
		s.log.Error("Failed to persist analysis result", "task_id", task.ID, "record_id", task.RecordID, "error", err)
	}
	s.log.Info("Analysis completed", "task_id", task.ID, "record_id", task.RecordID)
}

func (s *analysisService) fail(ctx context.Context, task *AnalysisTask, message string) {
	if !s.transition(task, AnalysisFailed, "", message) {
		return
	}
	// The fee paid for output that never arrived; credit it back.
	if task.ChargedPoints > 0 {
		entry := &types.LedgerEntry{
			ID:             uuid.New(),
			OrganizationID: task.OrganizationID,
			Delta:          task.ChargedPoints,
			Reason:         types.ReasonRightsConsumed,
			Description:    "Refund for a failed talent comparison analysis",
			EffectiveDate:  time.Now().UTC(),
			CreatedAt:      time.Now().UTC(),
		}
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if _, err := s.ledgerRepo.IncrementBalance(ctx, tx, task.OrganizationID, task.ChargedPoints); err != nil {
				return err
			}
			return s.ledgerRepo.AppendEntry(ctx, tx, entry)
		})
		if err != nil {
			s.log.Error("Failed to refund analysis fee", "task_id", task.ID, "organization_id", task.OrganizationID, "error", err)
		}
	}
	s.log.Warn("Analysis failed", "task_id", task.ID, "error", message)
}

// transition flips the task to a terminal state exactly once. The stored
// task is replaced with a resolved copy rather than mutated: pollers read
// the pointer they got from the store without locks, so a published task
// must never change under them.
func (s *analysisService) transition(task *AnalysisTask, status AnalysisStatus, result, errMsg string) bool {
	s.transitionMu.Lock()
	defer s.transitionMu.Unlock()
	current, ok := s.tasks.Get(task.ID)
	if !ok {
		// Retention purged the handle mid-run. The durable write and refund
		// still get their one shot, but the handle stays not-found.
		if task.Status != AnalysisProcessing {
			return false
		}
		task.Status = status
		return true
	}
	if current.Status != AnalysisProcessing {
		return false
	}
	resolved := *current
	resolved.Status = status
	resolved.Result = result
	resolved.Error = errMsg
	s.tasks.Set(resolved.ID, &resolved)
	return true
}
