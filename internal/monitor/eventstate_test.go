package monitor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pauljaxson/gerrit-trigger-plugin/internal/build"
)

func newTestState() *EventState {
	return newEventState(&sync.Mutex{}, newPatchsetCreated(100, 1))
}

func TestBallColorPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *EventState)
		want  build.BallColor
	}{
		{
			name:  "scan not started is static grey",
			setup: func(s *EventState) {},
			want:  build.BallGrey,
		},
		{
			name: "scan not started wins even with builds recorded",
			setup: func(s *EventState) {
				s.addProjectLocked("job-a")
				s.setBuildLocked(completedRun("job-a", build.ResultFailure))
				s.triggerScanDone = true
				s.allBuildsCompleted = true
			},
			want: build.BallGrey,
		},
		{
			name: "scan running is animated grey",
			setup: func(s *EventState) {
				s.triggerScanStarted = true
			},
			want: build.BallGrey.Anime(),
		},
		{
			name: "scan done with no builds is disabled",
			setup: func(s *EventState) {
				s.triggerScanStarted = true
				s.triggerScanDone = true
			},
			want: build.BallDisabled,
		},
		{
			name: "builds pending with no results is animated grey",
			setup: func(s *EventState) {
				s.triggerScanStarted = true
				s.triggerScanDone = true
				s.addProjectLocked("job-a")
				s.setBuildLocked(runningRun("job-a"))
			},
			want: build.BallGrey.Anime(),
		},
		{
			name: "single success is blue",
			setup: func(s *EventState) {
				s.triggerScanStarted = true
				s.triggerScanDone = true
				s.addProjectLocked("job-a")
				s.setBuildLocked(completedRun("job-a", build.ResultSuccess))
			},
			want: build.BallBlue,
		},
		{
			name: "worst result wins across builds",
			setup: func(s *EventState) {
				s.triggerScanStarted = true
				s.triggerScanDone = true
				s.addProjectLocked("job-a")
				s.addProjectLocked("job-b")
				s.addProjectLocked("job-c")
				s.setBuildLocked(completedRun("job-a", build.ResultSuccess))
				s.setBuildLocked(completedRun("job-b", build.ResultFailure))
				s.setBuildLocked(completedRun("job-c", build.ResultUnstable))
			},
			want: build.BallRed,
		},
		{
			name: "builds without results are skipped not failed",
			setup: func(s *EventState) {
				s.triggerScanStarted = true
				s.triggerScanDone = true
				s.addProjectLocked("job-a")
				s.addProjectLocked("job-b")
				s.setBuildLocked(completedRun("job-a", build.ResultUnstable))
				s.setBuildLocked(runningRun("job-b"))
			},
			want: build.BallYellow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState()
			s.mu.Lock()
			tt.setup(s)
			s.mu.Unlock()
			assert.Equal(t, tt.want, s.BallColor())
		})
	}
}

func TestIsUnTriggered(t *testing.T) {
	s := newTestState()
	assert.False(t, s.IsUnTriggered(), "before scan start")

	s.mu.Lock()
	s.triggerScanStarted = true
	s.mu.Unlock()
	assert.False(t, s.IsUnTriggered(), "scan still running")

	s.mu.Lock()
	s.triggerScanDone = true
	s.mu.Unlock()
	assert.True(t, s.IsUnTriggered(), "scan done with zero builds")

	s.mu.Lock()
	s.addProjectLocked("job-a")
	s.mu.Unlock()
	assert.False(t, s.IsUnTriggered(), "a project was triggered")
}

func TestReallyAllBuildsCompleted(t *testing.T) {
	s := newTestState()
	assert.True(t, s.ReallyAllBuildsCompleted(), "vacuously true with zero builds")

	s.mu.Lock()
	s.addProjectLocked("job-a")
	s.mu.Unlock()
	assert.False(t, s.ReallyAllBuildsCompleted(), "entry without a run")

	s.mu.Lock()
	s.setBuildLocked(runningRun("job-a"))
	s.mu.Unlock()
	assert.False(t, s.ReallyAllBuildsCompleted(), "log still updating")

	s.mu.Lock()
	s.setBuildLocked(completedRun("job-a", build.ResultSuccess))
	s.mu.Unlock()
	assert.True(t, s.ReallyAllBuildsCompleted())
}

func TestLeastFavorableResultCommutative(t *testing.T) {
	results := []build.Result{build.ResultSuccess, build.ResultFailure, build.ResultUnstable}
	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 0, 2}, {2, 0, 1}}

	for _, order := range orders {
		s := newTestState()
		s.mu.Lock()
		s.triggerScanStarted = true
		s.triggerScanDone = true
		for i, idx := range order {
			project := string(rune('a' + i))
			s.addProjectLocked(project)
			s.setBuildLocked(completedRun(project, results[idx]))
		}
		s.mu.Unlock()

		got, ok := s.LeastFavorableResult()
		assert.True(t, ok)
		assert.Equal(t, build.ResultFailure, got, "order %v", order)
	}
}

func TestLeastFavorableResultEmpty(t *testing.T) {
	s := newTestState()
	_, ok := s.LeastFavorableResult()
	assert.False(t, ok)
}
