package worker

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestGoReportsJobResult(t *testing.T) {
	p, err := NewPool(2)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer p.Release()

	if err := <-p.Go(func() error { return nil }); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	boom := errors.New("boom")
	if err := <-p.Go(func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestGoRunsConcurrently(t *testing.T) {
	p, err := NewPool(2)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer p.Release()

	var running, peak int32
	job := func() error {
		n := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	}
	a, b := p.Go(job), p.Go(job)
	<-a
	<-b
	if atomic.LoadInt32(&peak) != 2 {
		t.Errorf("expected both jobs to overlap, peak %d", peak)
	}
}

func TestGoRecoversPanic(t *testing.T) {
	p, err := NewPool(1)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer p.Release()

	if err := <-p.Go(func() error { panic("bad job") }); err == nil {
		t.Fatal("expected panic to surface as error")
	}
	if s := p.Stats(); s.Panics != 1 || s.Completed != 1 || s.Submitted != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestGoAfterRelease(t *testing.T) {
	p, err := NewPool(1)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	p.Release()

	if err := <-p.Go(func() error { return nil }); err == nil {
		t.Error("expected submit error on released pool")
	}
}

func TestStatsCapacity(t *testing.T) {
	p, err := NewPool(3)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer p.Release()

	if c := p.Stats().Capacity; c != 3 {
		t.Errorf("expected capacity 3, got %d", c)
	}
}
