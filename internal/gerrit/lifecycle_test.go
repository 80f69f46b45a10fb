package gerrit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pauljaxson/gerrit-trigger-plugin/internal/build"
)

// recordingListener counts lifecycle callbacks.
type recordingListener struct {
	scanStarting int
	scanDone     int
	triggered    []string
	started      int
	completed    int
	allCompleted int
	onScanStart  func(Event)
}

func (r *recordingListener) TriggerScanStarting(ev Event) {
	r.scanStarting++
	if r.onScanStart != nil {
		r.onScanStart(ev)
	}
}
func (r *recordingListener) TriggerScanDone(Event) { r.scanDone++ }
func (r *recordingListener) ProjectTriggered(_ Event, p string) {
	r.triggered = append(r.triggered, p)
}
func (r *recordingListener) BuildStarted(Event, build.Run)   { r.started++ }
func (r *recordingListener) BuildCompleted(Event, build.Run) { r.completed++ }
func (r *recordingListener) AllBuildsCompleted(Event)        { r.allCompleted++ }

func TestLifecycleAddRemove(t *testing.T) {
	ev := &PatchsetCreated{}
	a := &recordingListener{}
	b := &recordingListener{}

	ev.AddListener(a)
	ev.AddListener(b)
	assert.Equal(t, 2, ev.ListenerCount())

	ev.FireTriggerScanStarting(ev)
	assert.Equal(t, 1, a.scanStarting)
	assert.Equal(t, 1, b.scanStarting)

	ev.RemoveListener(a)
	assert.Equal(t, 1, ev.ListenerCount())

	ev.FireTriggerScanDone(ev)
	assert.Equal(t, 0, a.scanDone)
	assert.Equal(t, 1, b.scanDone)

	// Removing a listener that is not registered is a no-op.
	ev.RemoveListener(a)
	assert.Equal(t, 1, ev.ListenerCount())
}

func TestListenerMayRemoveItselfDuringCallback(t *testing.T) {
	ev := &PatchsetCreated{}
	l := &recordingListener{}
	l.onScanStart = func(event Event) {
		event.RemoveListener(l)
	}
	ev.AddListener(l)

	ev.FireTriggerScanStarting(ev)
	assert.Equal(t, 1, l.scanStarting)
	assert.Equal(t, 0, ev.ListenerCount())

	ev.FireTriggerScanStarting(ev)
	assert.Equal(t, 1, l.scanStarting, "no callbacks after self-removal")
}

func TestFireProjectTriggeredPayload(t *testing.T) {
	ev := &PatchsetCreated{}
	l := &recordingListener{}
	ev.AddListener(l)

	ev.FireProjectTriggered(ev, "job-a")
	ev.FireProjectTriggered(ev, "job-b")
	assert.Equal(t, []string{"job-a", "job-b"}, l.triggered)
}
