package monitor

import (
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSchedule refreshes the battery status every ten seconds.
const DefaultSchedule = "@every 10s"

type NotifyFunc func(data any)

// TaskFunc represents a runnable task.
type TaskFunc func() error

// Ticker runs a task on a cron schedule. The task runs on the ticker
// goroutine, so a slow run delays the next one instead of overlapping it.
type Ticker struct {
	OnError NotifyFunc // called on task error
	Task    TaskFunc   // task callback

	parser cron.Parser

	schedule cron.Schedule
	nextRun  time.Time
	runs     *runLog

	mu      sync.Mutex
	running bool

	scheduleCh chan cron.Schedule
	stopCh     chan struct{}
	doneCh     chan struct{}
}

func NewTicker(task TaskFunc, onError NotifyFunc) *Ticker {
	if task == nil {
		panic("task function cannot be nil")
	}

	return &Ticker{
		OnError:    onError,
		Task:       task,
		parser:     cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		runs:       newRunLog(60),
		scheduleCh: make(chan cron.Schedule, 1),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Schedule sets the cron expression. It can be called while running.
func (t *Ticker) Schedule(cronExpr string) error {
	sh, err := t.parser.Parse(cronExpr)
	if err != nil {
		return pkgerrors.Wrapf(err, "invalid schedule %q", cronExpr)
	}

	t.mu.Lock()
	running := t.running
	if !running {
		t.schedule = sh
		t.nextRun = sh.Next(time.Now())
	}
	t.mu.Unlock()

	if running {
		// Drop a pending, not yet applied schedule in favour of this one.
		select {
		case <-t.scheduleCh:
		default:
		}
		t.scheduleCh <- sh
	}
	return nil
}

// Start launches the ticker goroutine. It is a no-op when already running
// or without a schedule.
func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || t.schedule == nil {
		return
	}
	select {
	case <-t.stopCh:
		// Stopped tickers cannot be restarted.
		return
	default:
	}
	t.running = true
	go t.run()
}

// Stop stops the ticker and waits for a running task to finish.
func (t *Ticker) Stop() {
	t.mu.Lock()
	running := t.running
	select {
	case <-t.stopCh: // already closed
	default:
		close(t.stopCh)
	}
	t.mu.Unlock()

	if running {
		<-t.doneCh
	}
}

func (t *Ticker) Status() (nextRun time.Time, running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	nextRun = t.nextRun
	running = t.running
	return
}

func (t *Ticker) run() {
	defer func() {
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
		close(t.doneCh)
		logrus.Debug("ticker stopped")
	}()

	for {
		t.mu.Lock()
		wait := time.Until(t.nextRun)
		t.mu.Unlock()
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			t.checkMissedRuns()
			t.runs.add(time.Now())
			if err := t.Task(); err != nil {
				t.sendError(err)
			}
			t.advanceNextRun()
		case sh := <-t.scheduleCh:
			timer.Stop()
			t.mu.Lock()
			t.schedule = sh
			t.nextRun = sh.Next(time.Now())
			t.mu.Unlock()
			logrus.WithField("nextRun", t.nextRunString()).Debug("ticker rescheduled")
		case <-t.stopCh:
			timer.Stop()
			return
		}
	}
}

// advanceNextRun schedules from now rather than from the previous run, so a
// machine waking from sleep does not replay every missed tick.
func (t *Ticker) advanceNextRun() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.schedule == nil {
		return
	}
	t.nextRun = t.schedule.Next(time.Now())
}

func (t *Ticker) interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.schedule == nil {
		return 0
	}
	next := t.schedule.Next(t.nextRun)
	return next.Sub(t.nextRun)
}

// checkMissedRuns runs before a task and reports whether the gap since the
// previous run suggests skipped ticks, along with how many runs came in a row
// before it.
func (t *Ticker) checkMissedRuns() (missed bool, streak int) {
	last := t.runs.last()
	interval := t.interval()
	if last.IsZero() || interval <= 0 {
		return false, 0
	}

	streak = t.runs.streak(interval)
	fields := logrus.Fields{
		"interval":       interval.String(),
		"continuousRuns": streak,
	}
	if gap := time.Since(last); gap > 2*interval+time.Second {
		fields["sinceLastRun"] = gap.Round(time.Second).String()
		logrus.WithFields(fields).Info("possibly missed ticks, was the system asleep?")
		return true, streak
	}
	logrus.WithFields(fields).Trace("ticker on schedule")
	return false, streak
}

func (t *Ticker) nextRunString() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nextRun.Format(time.DateTime)
}

func (t *Ticker) sendError(err error) {
	if t.OnError == nil {
		logrus.WithError(err).Debug("ticker task failed")
		return
	}

	go t.OnError(err)
}
