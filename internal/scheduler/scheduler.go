package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxbridge/internal/clock"
	obsmetrics "github.com/smallbiznis/taxbridge/internal/observability/metrics"
	"github.com/smallbiznis/taxbridge/internal/scheduler/guard"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrInvalidConfig = errors.New("scheduler_invalid_config")
	ErrInvalidTask   = errors.New("scheduler_invalid_task")
	ErrDuplicateTask = errors.New("scheduler_duplicate_task")
	ErrUnknownTask   = errors.New("scheduler_unknown_task")
	ErrTaskRunning   = errors.New("scheduler_task_running")
)

// Task is a unit of scheduled work. An Interval of zero makes the task
// one-shot: it runs on the first pass after startup and afterwards only when
// triggered.
type Task struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

type taskState struct {
	task    Task
	ran     bool
	lastRun time.Time
}

type Params struct {
	fx.In

	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Config  Config                       `optional:"true"`
	Locker  Locker                       `optional:"true"`
	Metrics *obsmetrics.SchedulerMetrics `optional:"true"`
}

type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	genID   *snowflake.Node
	clock   clock.Clock
	locker  Locker
	metrics *obsmetrics.SchedulerMetrics
	running *guard.Running

	mu    sync.Mutex
	tasks []*taskState
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.GenID == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	metrics := p.Metrics
	if metrics == nil {
		metrics = obsmetrics.Scheduler()
	}
	return &Scheduler{
		log:     p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:     p.Config.withDefaults(),
		genID:   p.GenID,
		clock:   p.Clock,
		locker:  p.Locker,
		metrics: metrics,
		running: guard.NewRunning(),
	}, nil
}

// Register adds a task. Names are unique and case-insensitive.
func (s *Scheduler) Register(task Task) error {
	task.Name = strings.TrimSpace(task.Name)
	if task.Name == "" || task.Run == nil || task.Interval < 0 {
		return ErrInvalidTask
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.tasks {
		if strings.EqualFold(st.task.Name, task.Name) {
			return fmt.Errorf("%w: %s", ErrDuplicateTask, task.Name)
		}
	}
	s.tasks = append(s.tasks, &taskState{task: task})
	return nil
}

func (s *Scheduler) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, 0, len(s.tasks))
	for _, st := range s.tasks {
		out = append(out, st.task)
	}
	return out
}

// RunOnce runs every due task in registration order and joins their errors.
// A task is marked as run even when it fails; there are no retries.
func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	for _, st := range s.dueTasks() {
		runErr := s.runJob(parent, st.task)
		if errors.Is(runErr, ErrTaskRunning) {
			continue
		}
		err = errors.Join(err, runErr)
	}
	return err
}

// Trigger runs the named task immediately, regardless of its schedule.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	st := s.lookup(name)
	if st == nil {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return s.runJob(ctx, st.task)
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now()

	for {
		runLag := s.clock.Now().Sub(nextRun)
		if runLag > 0 {
			s.metrics.ObserveRunLoopLag(runLag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) dueTasks() []*taskState {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	due := make([]*taskState, 0, len(s.tasks))
	for _, st := range s.tasks {
		switch {
		case !st.ran:
		case st.task.Interval > 0 && !now.Before(st.lastRun.Add(st.task.Interval)):
		default:
			continue
		}
		st.ran = true
		st.lastRun = now
		due = append(due, st)
	}
	return due
}

func (s *Scheduler) lookup(name string) *taskState {
	name = strings.TrimSpace(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.tasks {
		if strings.EqualFold(st.task.Name, name) {
			return st
		}
	}
	return nil
}

func (s *Scheduler) runJob(parent context.Context, task Task) error {
	if parent == nil {
		parent = context.Background()
	}
	name := task.Name

	release, err := s.running.Acquire(name)
	if err != nil {
		s.metrics.IncJobSkipped(name, obsmetrics.SchedulerSkipReasonRunning)
		s.log.Info("scheduler.job.skipped", zap.String("job", name), zap.String("reason", obsmetrics.SchedulerSkipReasonRunning))
		return fmt.Errorf("%w: %s", ErrTaskRunning, name)
	}
	defer release()

	timeout := task.Timeout
	if timeout <= 0 {
		timeout = s.cfg.DefaultTimeout
	}

	unlock, err := s.acquireLock(parent, name, timeout)
	if err != nil {
		return err
	}
	defer unlock()

	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run := s.startJobRun(ctx, name)
	s.logJobStart(ctx, run)
	s.metrics.IncJobRun(name)

	err = safeRun(ctx, task.Run)
	s.metrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	s.logJobFinish(ctx, run, err)

	if err == nil {
		s.metrics.SetLastSuccess(name, s.clock.Now())
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.metrics.IncJobTimeout(name)
	}
	s.metrics.IncJobError(name, err)
	s.logSchedulerError(ctx, run, "scheduler.job.failed", err, zap.Duration("timeout", timeout))
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) acquireLock(ctx context.Context, name string, timeout time.Duration) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}

	ttl := s.cfg.LockTTL
	if timeout > ttl {
		ttl = timeout
	}
	key := s.cfg.LockPrefix + strings.ToLower(name)

	token, ok, err := s.locker.TryLock(ctx, key, ttl)
	if err != nil {
		s.metrics.IncJobSkipped(name, obsmetrics.SchedulerSkipReasonLockFailure)
		return nil, fmt.Errorf("%s: acquire lock: %w", name, err)
	}
	if !ok {
		s.metrics.IncJobSkipped(name, obsmetrics.SchedulerSkipReasonLockHeld)
		s.log.Info("scheduler.job.skipped", zap.String("job", name), zap.String("reason", obsmetrics.SchedulerSkipReasonLockHeld))
		return nil, fmt.Errorf("%w: %s", ErrTaskRunning, name)
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.locker.Release(releaseCtx, key, token); err != nil {
			s.log.Warn("failed to release scheduler lock", zap.String("job", name), zap.Error(err))
		}
	}, nil
}

func safeRun(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}
