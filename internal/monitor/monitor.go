// Package monitor tracks the lifecycle of review events and correlates each
// event with the builds it triggered, from trigger scan through build
// completion. It is a pure in-memory coordination structure: nothing is
// persisted and tracked records live for the process lifetime.
package monitor

import (
	"sync"

	"github.com/pauljaxson/gerrit-trigger-plugin/internal/build"
	"github.com/pauljaxson/gerrit-trigger-plugin/internal/gerrit"
)

// Monitor is the registry of tracked events and the single mutation gateway
// for their state. It implements gerrit.Listener and is registered on each
// event it tracks; the trigger mechanism calls back through that interface.
//
// One mutex guards the registry and every EventState it owns. Lookup and
// mutation happen under the same critical section, so concurrent Add calls
// and lifecycle callbacks cannot race past each other. Callbacks for events
// that were never added (or whose listener was already removed) are silent
// no-ops.
type Monitor struct {
	mu     sync.Mutex
	events []*EventState
}

// New creates an empty monitor.
func New() *Monitor {
	return &Monitor{}
}

// Add starts tracking event: it registers the monitor as a lifecycle
// listener on the event and creates a state record for it. Adding an event
// that is already tracked is a no-op.
func (m *Monitor) Add(event gerrit.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findStateLocked(event) != nil {
		return
	}
	event.AddListener(m)
	m.events = append(m.events, newEventState(&m.mu, event))
}

// Contains reports whether event is tracked.
func (m *Monitor) Contains(event gerrit.Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findStateLocked(event) != nil
}

// Events returns the tracked states in insertion order. Records are never
// removed, so completed events remain visible for historical display.
func (m *Monitor) Events() []*EventState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*EventState, len(m.events))
	copy(out, m.events)
	return out
}

// findStateLocked resolves event to its state by identity equality.
// Callers must hold m.mu.
func (m *Monitor) findStateLocked(event gerrit.Event) *EventState {
	for _, state := range m.events {
		if state.event != nil && state.event.Equals(event) {
			return state
		}
	}
	return nil
}

// TriggerScanStarting records that the trigger scan for event has begun.
func (m *Monitor) TriggerScanStarting(event gerrit.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state := m.findStateLocked(event); state != nil {
		state.triggerScanStarted = true
	}
}

// TriggerScanDone records that the trigger scan for event has finished.
func (m *Monitor) TriggerScanDone(event gerrit.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state := m.findStateLocked(event); state != nil {
		state.triggerScanDone = true
	}
}

// ProjectTriggered records that project was triggered by event.
func (m *Monitor) ProjectTriggered(event gerrit.Event, project string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state := m.findStateLocked(event); state != nil {
		state.addProjectLocked(project)
	}
}

// BuildStarted attaches the started run to the matching triggered entries.
func (m *Monitor) BuildStarted(event gerrit.Event, run build.Run) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state := m.findStateLocked(event); state != nil {
		state.setBuildLocked(run)
	}
}

// BuildCompleted re-evaluates the termination condition after a build
// finishes: once the coarse signal has been seen and the fine-grained check
// confirms every run is done, the monitor unsubscribes itself from the
// event. Unsubscription happens inside the critical section, after all state
// mutation, so no callback can race past the decision point.
func (m *Monitor) BuildCompleted(event gerrit.Event, run build.Run) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state := m.findStateLocked(event); state != nil {
		if state.allBuildsCompleted && state.reallyAllBuildsCompletedLocked() {
			event.RemoveListener(m)
		}
	}
}

// AllBuildsCompleted records the coarse completion signal. The signal only
// covers non-silently-triggered builds, so the fine-grained re-check decides
// whether the listener can be released.
func (m *Monitor) AllBuildsCompleted(event gerrit.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state := m.findStateLocked(event); state != nil {
		state.allBuildsCompleted = true
		if state.reallyAllBuildsCompletedLocked() {
			event.RemoveListener(m)
		}
	}
}
