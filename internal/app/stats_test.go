package app

import (
	"context"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
)

func TestMeter_Record(t *testing.T) {
	m := newMeter()
	assert.Equal(t, uint64(1), m.record("neutral"))
	assert.Equal(t, uint64(2), m.record("nitro"))
	m.record("nitro")

	assert.Equal(t, uint64(3), m.Frames())
	assert.Equal(t, map[string]int{"neutral": 1, "nitro": 2}, m.Rules())

	rules := m.Rules()
	rules["nitro"] = 99
	assert.Equal(t, 2, m.Rules()["nitro"], "Rules returns a copy")
}

func TestMeter_FPS(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := quartz.NewMock(t)
	m := newMeter()
	m.start(ctx, clock, discard, func() uint64 { return 0 })

	for i := 0; i < 150; i++ {
		m.record("accelerate")
	}
	clock.Advance(StatsInterval).MustWait(ctx)
	assert.InDelta(t, 30.0, m.FPS(), 1e-9)

	for i := 0; i < 50; i++ {
		m.record("accelerate")
	}
	clock.Advance(StatsInterval).MustWait(ctx)
	assert.InDelta(t, 10.0, m.FPS(), 1e-9, "rate covers only the last interval")
}
