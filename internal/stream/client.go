// Package stream consumes the review system's line-delimited JSON event
// feed and delivers typed events to a handler.
package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/pauljaxson/gerrit-trigger-plugin/internal/gerrit"
)

// Handler receives each successfully parsed event.
type Handler func(event gerrit.Event)

// DialFunc opens one connection to the event feed.
type DialFunc func(ctx context.Context) (io.ReadCloser, error)

// Client reads the event feed, reconnecting when the connection drops. A
// rate limiter bounds reconnect attempts so a flapping server cannot make
// the client spin.
type Client struct {
	handler Handler
	limiter *rate.Limiter

	delivered atomic.Int64
	skipped   atomic.Int64
}

// NewClient creates a client delivering events to handler and attempting at
// most reconnectsPerMinute connections per minute (minimum 1).
func NewClient(handler Handler, reconnectsPerMinute int) *Client {
	if reconnectsPerMinute < 1 {
		reconnectsPerMinute = 1
	}
	return &Client{
		handler: handler,
		limiter: rate.NewLimiter(rate.Limit(float64(reconnectsPerMinute)/60.0), 1),
	}
}

// Delivered returns how many events have been handed to the handler.
func (c *Client) Delivered() int64 { return c.delivered.Load() }

// Skipped returns how many lines were dropped (unknown type or malformed).
func (c *Client) Skipped() int64 { return c.skipped.Load() }

// Run connects with dial and consumes events until ctx is cancelled. Dropped
// connections are re-dialed after the rate limiter admits another attempt.
func (c *Client) Run(ctx context.Context, dial DialFunc) error {
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		conn, err := dial(ctx)
		if err != nil {
			log.Printf("stream: connect failed: %v", err)
			continue
		}
		err = c.Consume(ctx, conn)
		conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			log.Printf("stream: connection lost: %v", err)
		}
	}
}

// Consume reads line-delimited JSON events from r until EOF, a read error,
// or ctx cancellation. Blank lines are ignored; lines that fail to parse are
// counted and skipped.
func (c *Client) Consume(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		event, err := gerrit.ParseEvent(line)
		if err != nil {
			c.skipped.Add(1)
			if !errors.Is(err, gerrit.ErrUnknownEventType) {
				log.Printf("stream: skipping line: %v", err)
			}
			continue
		}
		c.delivered.Add(1)
		c.handler(event)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading event stream: %w", err)
	}
	return nil
}

// TCPDialer returns a DialFunc connecting to addr over TCP.
func TCPDialer(addr string) DialFunc {
	return func(ctx context.Context) (io.ReadCloser, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("dialing %s: %w", addr, err)
		}
		return conn, nil
	}
}
