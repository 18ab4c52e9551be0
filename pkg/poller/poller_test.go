package poller

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordingSink struct {
	applied [][]byte
}

func (s *recordingSink) Apply(snapshot []byte) {
	s.applied = append(s.applied, snapshot)
}

func TestApply_SkipsIdenticalSnapshots(t *testing.T) {
	sink := &recordingSink{}
	p := New(nil, sink, time.Second)

	base := time.Now()
	p.apply(base, []byte(`{"orders":1}`))
	p.apply(base.Add(time.Second), []byte(`{"orders":1}`))
	p.apply(base.Add(2*time.Second), []byte(`{"orders":2}`))

	if len(sink.applied) != 2 {
		t.Fatalf("applied: got %d, want 2", len(sink.applied))
	}
	if string(sink.applied[1]) != `{"orders":2}` {
		t.Errorf("second apply: got %s", sink.applied[1])
	}
}

func TestApply_DiscardsStaleResponse(t *testing.T) {
	sink := &recordingSink{}
	p := New(nil, sink, time.Second)

	base := time.Now()
	p.apply(base.Add(time.Second), []byte(`{"orders":2}`))
	// A slow response from an earlier request arrives late.
	p.apply(base, []byte(`{"orders":1}`))

	if len(sink.applied) != 1 {
		t.Fatalf("applied: got %d, want 1", len(sink.applied))
	}
	if string(p.Last()) != `{"orders":2}` {
		t.Errorf("last: got %s", p.Last())
	}
}

func TestApply_CopiesSnapshot(t *testing.T) {
	sink := &recordingSink{}
	p := New(nil, sink, time.Second)

	buf := []byte(`{"orders":1}`)
	p.apply(time.Now(), buf)
	buf[0] = 'X'

	if string(p.Last()) != `{"orders":1}` {
		t.Errorf("snapshot aliased the caller's buffer: %s", p.Last())
	}
}

func TestRun_KeepsLastSnapshotOnFailure(t *testing.T) {
	calls := 0
	source := SourceFunc(func(ctx context.Context) ([]byte, error) {
		calls++
		if calls == 1 {
			return []byte(`{"orders":1}`), nil
		}
		return nil, errors.New("connection refused")
	})
	sink := &recordingSink{}
	p := New(source, sink, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	if calls < 2 {
		t.Fatalf("expected several fetches, got %d", calls)
	}
	if len(sink.applied) != 1 {
		t.Fatalf("applied: got %d, want 1", len(sink.applied))
	}
	if string(p.Last()) != `{"orders":1}` {
		t.Errorf("last snapshot lost after failures: %s", p.Last())
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	source := SourceFunc(func(ctx context.Context) ([]byte, error) {
		return []byte(`{}`), nil
	})
	p := New(source, SinkFunc(func([]byte) {}), time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
