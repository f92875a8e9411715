package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep_Cadence(t *testing.T) {
	e := NewEngine()
	e.WorldEventEvery = 3
	var hours, events []uint64
	e.OnHour = func(tick uint64) { hours = append(hours, tick) }
	e.OnWorldEvent = func(tick uint64) { events = append(events, tick) }

	for i := 0; i < 9; i++ {
		e.step()
	}

	assert.Len(t, hours, 9)
	assert.Equal(t, []uint64{3, 6, 9}, events)
	assert.Equal(t, uint64(9), e.Tick())
}

func TestStep_WorldEventsDisabled(t *testing.T) {
	e := NewEngine()
	e.WorldEventEvery = 0
	fired := false
	e.OnWorldEvent = func(uint64) { fired = true }

	for i := 0; i < 100; i++ {
		e.step()
	}
	assert.False(t, fired)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Millisecond
	var hours atomic.Int64
	e.OnHour = func(uint64) { hours.Add(1) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return hours.Load() >= 5 }, 2*time.Second, time.Millisecond)
	assert.True(t, e.Running())
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, e.Running())
}

func TestRun_Stop(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Millisecond
	done := make(chan struct{})
	go func() {
		e.Run(context.Background())
		close(done)
	}()

	require.Eventually(t, e.Running, time.Second, time.Millisecond)
	e.Stop()
	e.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestRun_PausedDoesNotTick(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Millisecond
	e.SetSpeed(0)
	var hours atomic.Int64
	e.OnHour = func(uint64) { hours.Add(1) }

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	e.Run(ctx)

	assert.Zero(t, hours.Load())
	assert.Equal(t, uint64(0), e.Tick())
}

func TestSetSpeed_ClampsNegative(t *testing.T) {
	e := NewEngine()
	e.SetSpeed(-3)
	assert.Equal(t, 0.0, e.Speed())
	e.SetSpeed(4)
	assert.Equal(t, 4.0, e.Speed())
}

func TestEngineDrivesWorld(t *testing.T) {
	w := quietWorld(t)
	e := NewEngine()
	e.OnHour = func(uint64) { w.AdvanceHour() }
	e.OnWorldEvent = func(uint64) { w.TriggerWorldEvent() }

	for i := 0; i < 48; i++ {
		e.step()
	}

	snap := w.Snapshot()
	assert.Equal(t, uint64(48), snap.Time)
	assert.Equal(t, 3, snap.Day)
}

func TestSimTime(t *testing.T) {
	assert.Equal(t, "Day 1, 00:00", SimTime(0))
	assert.Equal(t, "Day 1, 09:00", SimTime(9))
	assert.Equal(t, "Day 3, 01:00", SimTime(49))
}
