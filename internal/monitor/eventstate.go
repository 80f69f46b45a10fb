package monitor

import (
	"sync"

	"github.com/pauljaxson/gerrit-trigger-plugin/internal/build"
	"github.com/pauljaxson/gerrit-trigger-plugin/internal/gerrit"
)

// TriggeredItem correlates one triggered build-target project with its
// at-most-one build run. The run is absent until the build actually starts.
type TriggeredItem struct {
	mu      *sync.Mutex // the owning Monitor's lock
	project string
	run     build.Run
}

// Project returns the build-target project this entry was triggered for.
func (t *TriggeredItem) Project() string { return t.project }

// Run returns the build run, or nil if the build has not started.
func (t *TriggeredItem) Run() build.Run {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.run
}

// EventState records the scan progress and build fan-out of one tracked
// event. All fields are guarded by the owning Monitor's single lock; the
// exported accessors take that lock so the dashboard can poll concurrently
// with lifecycle callbacks.
type EventState struct {
	mu    *sync.Mutex // shared with the owning Monitor
	event gerrit.Event

	triggerScanStarted bool
	triggerScanDone    bool
	allBuildsCompleted bool
	builds             []*TriggeredItem
}

func newEventState(mu *sync.Mutex, event gerrit.Event) *EventState {
	return &EventState{mu: mu, event: event}
}

// Event returns the tracked event. The reference is identity only; the state
// does not own the event.
func (s *EventState) Event() gerrit.Event { return s.event }

// TriggerScanStarted reports whether the trigger scan has begun.
func (s *EventState) TriggerScanStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.triggerScanStarted
}

// TriggerScanDone reports whether the trigger scan has finished.
func (s *EventState) TriggerScanDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.triggerScanDone
}

// AllBuildsCompleted reports whether the coarse all-builds-completed signal
// has been received. The signal covers non-silent builds only; see
// ReallyAllBuildsCompleted for the authoritative check.
func (s *EventState) AllBuildsCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allBuildsCompleted
}

// Builds returns a snapshot of the triggered entries in insertion order.
func (s *EventState) Builds() []*TriggeredItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*TriggeredItem, len(s.builds))
	copy(out, s.builds)
	return out
}

// IsUnTriggered reports whether the scan completed without any trigger
// matching this event.
func (s *EventState) IsUnTriggered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unTriggeredLocked()
}

// BallColor derives the presentation status for this event. Precedence:
// scan not started, scan running, nothing triggered, then the worst result
// among builds that have one; with builds pending and no results yet the
// status stays animated grey.
func (s *EventState) BallColor() build.BallColor {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !s.triggerScanStarted:
		return build.BallGrey
	case !s.triggerScanDone:
		return build.BallGrey.Anime()
	case s.unTriggeredLocked():
		return build.BallDisabled
	}
	if result, ok := s.leastFavorableResultLocked(); ok {
		return result.Color()
	}
	return build.BallGrey.Anime()
}

// LeastFavorableResult folds the results of every build that has one using
// worst-wins combination. ok is false when no build has reported a result.
func (s *EventState) LeastFavorableResult() (build.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leastFavorableResultLocked()
}

// ReallyAllBuildsCompleted reports whether every triggered entry has a build
// run whose log output has stopped updating. This is the fine-grained check
// backing the coarse signal, which only covers non-silent builds. An empty
// build list satisfies it vacuously.
func (s *EventState) ReallyAllBuildsCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reallyAllBuildsCompletedLocked()
}

// addProjectLocked appends a new entry for project. Duplicate triggers for
// the same project produce duplicate entries.
func (s *EventState) addProjectLocked(project string) {
	s.builds = append(s.builds, &TriggeredItem{mu: s.mu, project: project})
}

// setBuildLocked attaches run to every entry whose project matches the run's
// originating project.
func (s *EventState) setBuildLocked(run build.Run) {
	for _, item := range s.builds {
		if item.project == run.Project() {
			item.run = run
		}
	}
}

func (s *EventState) unTriggeredLocked() bool {
	if !s.triggerScanStarted {
		return false
	}
	return s.triggerScanDone && len(s.builds) == 0
}

func (s *EventState) leastFavorableResultLocked() (build.Result, bool) {
	var least build.Result
	found := false
	for _, item := range s.builds {
		if item.run == nil {
			continue
		}
		result, ok := item.run.Result()
		if !ok {
			continue
		}
		if !found {
			least = result
			found = true
		} else {
			least = least.Combine(result)
		}
	}
	return least, found
}

func (s *EventState) reallyAllBuildsCompletedLocked() bool {
	for _, item := range s.builds {
		if item.run == nil || item.run.IsLogUpdated() {
			return false
		}
	}
	return true
}
