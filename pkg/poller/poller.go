// Package poller implements fixed-interval snapshot polling for clients that
// cannot hold a websocket open. Each tick fetches a full snapshot; consumers
// only hear about it when the bytes actually changed.
package poller

import (
	"bytes"
	"context"
	"log"
	"time"
)

// Source produces a snapshot of some remote state as raw bytes.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Sink receives snapshots that differ from the previous one.
type Sink interface {
	Apply(snapshot []byte)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]byte, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]byte, error) { return f(ctx) }

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(snapshot []byte)

func (f SinkFunc) Apply(snapshot []byte) { f(snapshot) }

// Poller fetches snapshots on a fixed interval. A failed fetch keeps the last
// known good snapshot; a response that started before the newest applied one
// is discarded so slow responses never roll state backwards.
type Poller struct {
	source   Source
	sink     Sink
	interval time.Duration

	last        []byte
	lastStarted time.Time
}

// New creates a Poller. Interval must be positive.
func New(source Source, sink Sink, interval time.Duration) *Poller {
	return &Poller{source: source, sink: sink, interval: interval}
}

// Run polls until the context is cancelled. The first fetch happens
// immediately rather than one interval in.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	started := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	snapshot, err := p.source.Fetch(fetchCtx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("poll failed, keeping last snapshot: %v", err)
		}
		return
	}

	p.apply(started, snapshot)
}

// apply is split out from tick for tests; it holds the staleness and
// deduplication rules.
func (p *Poller) apply(started time.Time, snapshot []byte) {
	if started.Before(p.lastStarted) {
		return
	}
	p.lastStarted = started

	if p.last != nil && bytes.Equal(p.last, snapshot) {
		return
	}

	p.last = append([]byte(nil), snapshot...)
	p.sink.Apply(p.last)
}

// Last returns the most recent applied snapshot, or nil before the first
// successful fetch.
func (p *Poller) Last() []byte {
	return p.last
}
