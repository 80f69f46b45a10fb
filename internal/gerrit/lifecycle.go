package gerrit

import (
	"sync"

	"github.com/pauljaxson/gerrit-trigger-plugin/internal/build"
)

// Listener receives lifecycle notifications for a tracked event: the trigger
// scan bracketing, each project match, and the progress of the builds the
// event fanned out to. The invocation order across callbacks is determined by
// the caller; implementations must tolerate any interleaving.
type Listener interface {
	TriggerScanStarting(event Event)
	TriggerScanDone(event Event)
	ProjectTriggered(event Event, project string)
	BuildStarted(event Event, run build.Run)
	BuildCompleted(event Event, run build.Run)
	AllBuildsCompleted(event Event)
}

// Lifecycle is the listener registry embedded in every event type. Listeners
// are compared by interface identity, so the same value that was added must
// be used to remove.
//
// Fire methods notify a snapshot of the current listeners without holding the
// registry lock, so a listener may remove itself from within its own callback.
type Lifecycle struct {
	mu        sync.Mutex
	listeners []Listener
}

// AddListener registers l. Adding the same listener twice registers it twice.
func (lc *Lifecycle) AddListener(l Listener) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.listeners = append(lc.listeners, l)
}

// RemoveListener unregisters the first registration of l, if any.
func (lc *Lifecycle) RemoveListener(l Listener) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	for i, existing := range lc.listeners {
		if existing == l {
			lc.listeners = append(lc.listeners[:i], lc.listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount returns the number of registered listeners.
func (lc *Lifecycle) ListenerCount() int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return len(lc.listeners)
}

func (lc *Lifecycle) snapshot() []Listener {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	out := make([]Listener, len(lc.listeners))
	copy(out, lc.listeners)
	return out
}

// FireTriggerScanStarting notifies listeners that the trigger scan began.
func (lc *Lifecycle) FireTriggerScanStarting(event Event) {
	for _, l := range lc.snapshot() {
		l.TriggerScanStarting(event)
	}
}

// FireTriggerScanDone notifies listeners that the trigger scan finished.
func (lc *Lifecycle) FireTriggerScanDone(event Event) {
	for _, l := range lc.snapshot() {
		l.TriggerScanDone(event)
	}
}

// FireProjectTriggered notifies listeners that project matched a trigger.
func (lc *Lifecycle) FireProjectTriggered(event Event, project string) {
	for _, l := range lc.snapshot() {
		l.ProjectTriggered(event, project)
	}
}

// FireBuildStarted notifies listeners that a build run began executing.
func (lc *Lifecycle) FireBuildStarted(event Event, run build.Run) {
	for _, l := range lc.snapshot() {
		l.BuildStarted(event, run)
	}
}

// FireBuildCompleted notifies listeners that a build run finished.
func (lc *Lifecycle) FireBuildCompleted(event Event, run build.Run) {
	for _, l := range lc.snapshot() {
		l.BuildCompleted(event, run)
	}
}

// FireAllBuildsCompleted notifies listeners that every non-silent build
// triggered by the event has completed.
func (lc *Lifecycle) FireAllBuildsCompleted(event Event) {
	for _, l := range lc.snapshot() {
		l.AllBuildsCompleted(event)
	}
}
