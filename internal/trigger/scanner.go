package trigger

import (
	"context"
	"sync"
	"time"

	"github.com/pauljaxson/gerrit-trigger-plugin/internal/build"
	"github.com/pauljaxson/gerrit-trigger-plugin/internal/gerrit"
)

// Scanner evaluates trigger rules against patchset-created events and
// launches the matching builds. It fires the event's lifecycle callbacks in
// the order listeners expect: scan-starting, project-triggered per match,
// scan-done, then build-started/build-completed as the builds progress, and
// finally all-builds-completed once the last non-silent build finishes.
type Scanner struct {
	rules    []*ProjectRule
	launcher build.Launcher
	timeout  time.Duration
}

// NewScanner creates a scanner over the compiled rules. timeout bounds each
// launched build; zero means no limit.
func NewScanner(rules []*ProjectRule, launcher build.Launcher, timeout time.Duration) *Scanner {
	return &Scanner{rules: rules, launcher: launcher, timeout: timeout}
}

// Scan runs the trigger scan for event. It returns once the scan itself is
// done; builds keep running in the background and report through the event's
// lifecycle.
func (s *Scanner) Scan(ctx context.Context, event *gerrit.PatchsetCreated) {
	event.FireTriggerScanStarting(event)

	tracker := &completionTracker{event: event}
	for _, rule := range s.rules {
		if !rule.Matches(event.Change.Project, event.Change.Branch) {
			continue
		}
		event.FireProjectTriggered(event, rule.Name())

		run := build.NewCommandRun(rule.Name(), rule.Command())
		silent := rule.Silent()
		if !silent {
			tracker.addPending()
		}

		runCtx := ctx
		cancel := context.CancelFunc(func() {})
		if s.timeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		}
		s.launcher.Launch(runCtx, run,
			func(r build.Run) {
				event.FireBuildStarted(event, r)
			},
			func(r build.Run) {
				defer cancel()
				event.FireBuildCompleted(event, r)
				if !silent {
					tracker.buildDone()
				}
			})
	}

	event.FireTriggerScanDone(event)
	tracker.scanDone()
}

// completionTracker fires the coarse all-builds-completed signal once every
// non-silent build launched by one scan has completed. Silent builds never
// feed the tracker, which is exactly why the monitor re-checks actual run
// handles before releasing its listener. A scan that triggered no non-silent
// builds never fires the signal.
type completionTracker struct {
	event *gerrit.PatchsetCreated

	mu       sync.Mutex
	pending  int
	tracked  bool
	scanOver bool
	fired    bool
}

func (t *completionTracker) addPending() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending++
	t.tracked = true
}

func (t *completionTracker) buildDone() {
	t.mu.Lock()
	t.pending--
	fire := t.shouldFireLocked()
	t.mu.Unlock()
	if fire {
		t.event.FireAllBuildsCompleted(t.event)
	}
}

func (t *completionTracker) scanDone() {
	t.mu.Lock()
	t.scanOver = true
	fire := t.shouldFireLocked()
	t.mu.Unlock()
	if fire {
		t.event.FireAllBuildsCompleted(t.event)
	}
}

// shouldFireLocked marks the signal fired when the conditions hold. Callers
// must hold t.mu.
func (t *completionTracker) shouldFireLocked() bool {
	if t.fired || !t.scanOver || !t.tracked || t.pending > 0 {
		return false
	}
	t.fired = true
	return true
}
