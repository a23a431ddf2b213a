package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"Farjax/internal/accuracy"
	"Farjax/internal/collector"
	"Farjax/internal/markethours"
	"Farjax/internal/metrics"
	"Farjax/internal/model"
	"Farjax/internal/notifier"
	"Farjax/internal/recorder"
	"Farjax/internal/strategy"

	"github.com/robfig/cron/v3"
)

// ErrRefreshInProgress is returned when a refresh is triggered while another one runs.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// Notifier delivers report messages.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the estimation pipeline on a cron schedule and publishes snapshots.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Params    strategy.Params
	Notifier  Notifier
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
	Ctx       context.Context

	// Now is the clock used for "now"; tests pin it.
	Now func() time.Time

	// OnRefresh is called with every published snapshot.
	OnRefresh func(*model.Snapshot)

	running  sync.Mutex
	snapshot atomic.Pointer[model.Snapshot]
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, params strategy.Params, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(markethours.ET),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log.Default()))),
		),
		Collector: col,
		Params:    params,
		Recorder:  rec,
		Ctx:       ctx,
		Now:       time.Now,
	}
}

// RegisterAll registers the refresh task and, when a notifier is set, the report task.
func (s *Scheduler) RegisterAll(refreshCron, reportCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if s.Notifier != nil {
		if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
			return fmt.Errorf("register report task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// Annotate runs the pure stages on a synthesized series: estimate and score, then aggregate.
func Annotate(candles []model.Candle, params strategy.Params) []model.Candle {
	return accuracy.Aggregate(strategy.Estimate(candles, params))
}

// Latest returns the most recently published snapshot, or nil before the first refresh.
func (s *Scheduler) Latest() *model.Snapshot {
	return s.snapshot.Load()
}

// Refresh pulls fresh bars, rebuilds the whole annotated series and publishes it.
// Overlapping calls are rejected with ErrRefreshInProgress rather than queued.
func (s *Scheduler) Refresh(trigger string) (*model.Snapshot, error) {
	if !s.running.TryLock() {
		log.Printf("[WARN] %s refresh skipped: %v", trigger, ErrRefreshInProgress)
		if s.Metrics != nil {
			s.Metrics.ObserveRefresh("skipped", 0)
		}
		return nil, ErrRefreshInProgress
	}
	defer s.running.Unlock()

	now := s.Now()
	began := time.Now()
	run := &recorder.RefreshRun{
		Symbol:    s.Collector.Symbol,
		StartedAt: now,
		Trigger:   trigger,
	}

	candles, err := s.Collector.Collect(s.Ctx, now)
	if err != nil {
		run.Duration = time.Since(began)
		run.Err = err.Error()
		s.recordRun(run, "error")
		return nil, fmt.Errorf("refresh %s: %w", s.Collector.Symbol, err)
	}

	snap := &model.Snapshot{
		Symbol:      s.Collector.Symbol,
		GeneratedAt: now,
		SessionEnd:  markethours.CurrentSessionEnd(now),
		Candles:     Annotate(candles, s.Params),
	}
	s.snapshot.Store(snap)

	run.Duration = time.Since(began)
	run.Candles = len(snap.Candles)
	run.Synthetic = snap.SyntheticCount()
	s.recordRun(run, "ok")
	if s.Metrics != nil {
		s.Metrics.ObserveSnapshot(snap)
	}
	log.Printf("[INFO] %s refresh done: %d candles (%d synthetic) in %v",
		trigger, run.Candles, run.Synthetic, run.Duration.Round(time.Millisecond))

	if s.OnRefresh != nil {
		s.OnRefresh(snap)
	}
	return snap, nil
}

func (s *Scheduler) recordRun(run *recorder.RefreshRun, result string) {
	if s.Metrics != nil {
		s.Metrics.ObserveRefresh(result, run.Duration)
	}
	if s.Recorder == nil {
		return
	}
	if err := s.Recorder.RecordRefresh(run); err != nil {
		log.Printf("[ERROR] record refresh: %v", err)
	}
}

func (s *Scheduler) refreshTask() {
	if _, err := s.Refresh("cron"); err != nil && !errors.Is(err, ErrRefreshInProgress) {
		log.Printf("[ERROR] %v", err)
	}
}

func (s *Scheduler) reportTask() {
	log.Println("[INFO] sending accuracy report")
	s.trySend(notifier.FormatAccuracyReport(s.Latest()))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/accuracy":
		return notifier.FormatAccuracyReport(s.Latest())
	case "/next":
		return notifier.FormatNextEstimate(s.Latest())
	case "/refresh":
		snap, err := s.Refresh("manual")
		if err != nil {
			return fmt.Sprintf("❌ Refresh failed: %v", err)
		}
		return notifier.FormatRefreshResult(snap)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
