package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

type countingManager struct {
	ticks int
	err   error
}

func (m *countingManager) Tick(ctx context.Context) error {
	m.ticks++
	return m.err
}

func TestTick_RunsAllManagers(t *testing.T) {
	m1 := &countingManager{}
	m2 := &countingManager{}
	d := NewShardDriver([]Manager{m1, m2})

	if err := d.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "first manager", m1.ticks, 1)
	testutil.AssertEqual(t, "second manager", m2.ticks, 1)
}

func TestTick_StopsOnError(t *testing.T) {
	m1 := &countingManager{err: errors.New("boom")}
	m2 := &countingManager{}
	d := NewShardDriver([]Manager{m1, m2})

	testutil.AssertErrorContains(t, d.Tick(context.Background()), "boom")
	testutil.AssertEqual(t, "later manager skipped", m2.ticks, 0)
}

func TestStart_StopsOnCancel(t *testing.T) {
	m := &countingManager{}
	d := NewShardDriver([]Manager{m}, WithTickLength(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ticks == 0 {
		t.Error("expected at least one tick before cancellation")
	}
}
