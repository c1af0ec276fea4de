package database

import (
	"context"
	"errors"
	"testing"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) PingContext(ctx context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWaitForPingRetries(t *testing.T) {
	p := &flakyPinger{failures: 2}
	if err := waitForPing(context.Background(), p); err != nil {
		t.Fatalf("expected ping to recover, got %v", err)
	}
	if p.calls != 3 {
		t.Fatalf("expected 3 pings, got %d", p.calls)
	}
}

func TestNewSQLiteInMemory(t *testing.T) {
	db, err := NewSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	var one int
	if err := db.Get(&one, `SELECT 1`); err != nil || one != 1 {
		t.Fatalf("select 1: %v", err)
	}
}
