package build

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Run is the handle for one build execution as seen by the monitor and the
// dashboard. Implementations must be safe for concurrent use.
type Run interface {
	// ID uniquely identifies this run.
	ID() string
	// Project is the build-target project this run was started for.
	Project() string
	// Result returns the run's outcome. ok is false until the run has one.
	Result() (result Result, ok bool)
	// IsLogUpdated reports whether the run is still producing log output.
	// It flips to false exactly once, when the run has fully completed.
	IsLogUpdated() bool
}

const (
	// maxLogLines caps captured output so a chatty build cannot exhaust memory
	maxLogLines = 10000
)

// CommandRun executes a build as a local command and implements Run.
type CommandRun struct {
	id      string
	project string
	command []string

	mu         sync.Mutex
	cmd        *exec.Cmd
	started    bool
	logUpdated bool
	log        []string
	truncated  bool
	result     Result
	hasResult  bool
	startedAt  time.Time
	finishedAt time.Time

	done chan struct{}
}

// NewCommandRun creates a run for project that will execute command when started.
func NewCommandRun(project string, command []string) *CommandRun {
	return &CommandRun{
		id:         uuid.New().String(),
		project:    project,
		command:    command,
		logUpdated: true,
		done:       make(chan struct{}),
	}
}

// ID returns the run's unique identifier.
func (r *CommandRun) ID() string { return r.id }

// Project returns the build-target project.
func (r *CommandRun) Project() string { return r.project }

// Result returns the outcome once the run has completed.
func (r *CommandRun) Result() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.hasResult
}

// IsLogUpdated reports whether log output may still arrive.
func (r *CommandRun) IsLogUpdated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logUpdated
}

// Log returns a copy of the captured output lines.
func (r *CommandRun) Log() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.log))
	copy(out, r.log)
	return out
}

// Duration returns how long the run took, or how long it has been running.
func (r *CommandRun) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startedAt.IsZero() {
		return 0
	}
	if r.finishedAt.IsZero() {
		return time.Since(r.startedAt)
	}
	return r.finishedAt.Sub(r.startedAt)
}

// Start launches the command and begins capturing its output. It returns
// immediately; use Wait to block until completion.
func (r *CommandRun) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return fmt.Errorf("run %s already started", r.id)
	}
	if len(r.command) == 0 {
		return errors.New("empty build command")
	}

	cmd := exec.CommandContext(ctx, r.command[0], r.command[1:]...)
	// Force the output pipe closed if a cancelled build leaves children
	// holding it open.
	cmd.WaitDelay = 10 * time.Second
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting build command: %w", err)
	}
	r.cmd = cmd
	r.started = true
	r.startedAt = time.Now()

	go r.consume(ctx, stdout)
	return nil
}

// consume drains the run's output, then records the result and closes done.
func (r *CommandRun) consume(ctx context.Context, out io.Reader) {
	scanner := bufio.NewScanner(out)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		r.appendLine(scanner.Text())
	}

	err := r.cmd.Wait()

	r.mu.Lock()
	r.finishedAt = time.Now()
	switch {
	case ctx.Err() != nil:
		r.result = ResultAborted
	case err == nil:
		r.result = ResultSuccess
	default:
		r.result = ResultFailure
	}
	r.hasResult = true
	r.logUpdated = false
	r.mu.Unlock()

	close(r.done)
}

func (r *CommandRun) appendLine(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.log) >= maxLogLines {
		if !r.truncated {
			r.log = append(r.log, "... output truncated ...")
			r.truncated = true
		}
		return
	}
	r.log = append(r.log, line)
}

// Wait blocks until the run has completed and returns its result.
func (r *CommandRun) Wait() Result {
	<-r.done
	res, _ := r.Result()
	return res
}

// finish records a result for a run that never executed (failed to start or
// was cancelled while queued) so observers still see a completed run.
func (r *CommandRun) finish(result Result, message string) {
	r.mu.Lock()
	if message != "" {
		r.log = append(r.log, message)
	}
	r.result = result
	r.hasResult = true
	r.logUpdated = false
	r.mu.Unlock()
	close(r.done)
}
