package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pauljaxson/gerrit-trigger-plugin/internal/gerrit"
)

const feed = `{"type":"patchset-created","change":{"project":"p","branch":"main","number":"1"},"patchSet":{"number":"1","revision":"a"}}

{"type":"reviewer-added","change":{"number":"1"}}
not json at all
{"type":"change-merged","change":{"project":"p","number":"1"},"patchSet":{"number":"1","revision":"a"}}
`

func TestConsume(t *testing.T) {
	var got []gerrit.EventType
	c := NewClient(func(ev gerrit.Event) {
		got = append(got, ev.Type())
	}, 6)

	err := c.Consume(context.Background(), strings.NewReader(feed))
	require.NoError(t, err)

	assert.Equal(t, []gerrit.EventType{gerrit.TypePatchsetCreated, gerrit.TypeChangeMerged}, got)
	assert.Equal(t, int64(2), c.Delivered())
	assert.Equal(t, int64(2), c.Skipped(), "unknown type and malformed line are skipped")
}

func TestConsumeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(func(gerrit.Event) {
		t.Error("handler must not run after cancellation")
	}, 6)
	err := c.Consume(ctx, strings.NewReader(feed))
	assert.ErrorIs(t, err, context.Canceled)
}

// errReader fails after yielding its content.
type errReader struct {
	r    io.Reader
	done bool
}

func (e *errReader) Read(p []byte) (int, error) {
	if !e.done {
		n, err := e.r.Read(p)
		if errors.Is(err, io.EOF) {
			e.done = true
			return n, nil
		}
		return n, err
	}
	return 0, errors.New("connection reset")
}

func TestConsumeReadError(t *testing.T) {
	c := NewClient(func(gerrit.Event) {}, 6)
	err := c.Consume(context.Background(), &errReader{r: strings.NewReader(feed)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestRunReconnectsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	dials := 0
	dial := func(context.Context) (io.ReadCloser, error) {
		dials++
		if dials >= 3 {
			cancel()
		}
		return io.NopCloser(strings.NewReader(feed)), nil
	}

	var delivered int
	c := NewClient(func(gerrit.Event) { delivered++ }, 6000) // effectively unthrottled
	err := c.Run(ctx, dial)

	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, dials, 3)
	assert.GreaterOrEqual(t, delivered, 2)
}

func TestRunSurvivesDialErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dials := 0
	dial := func(context.Context) (io.ReadCloser, error) {
		dials++
		if dials == 1 {
			return nil, errors.New("refused")
		}
		cancel()
		return io.NopCloser(strings.NewReader("")), nil
	}

	c := NewClient(func(gerrit.Event) {}, 6000)
	err := c.Run(ctx, dial)
	assert.Error(t, err)
	assert.GreaterOrEqual(t, dials, 2)
}
