package countin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoahYB/drum-machine/internal/metronome"
	"github.com/NoahYB/drum-machine/internal/sched"
)

type fixture struct {
	fake   *sched.Fake
	metro  *metronome.Metronome
	ctrl   *Controller
	clicks int
	bars   [][2]int
	done   []time.Duration
}

func newFixture() *fixture {
	fx := &fixture{fake: sched.NewFake()}
	fx.metro = metronome.New(fx.fake, metronome.ClickFunc(func(bool) { fx.clicks++ }), nil)
	fx.ctrl = New(fx.metro, nil)
	fx.ctrl.OnBar = func(k, n int) { fx.bars = append(fx.bars, [2]int{k, n}) }
	fx.ctrl.OnComplete = func() { fx.done = append(fx.done, fx.fake.Elapsed()) }
	return fx
}

func TestTwoBarsAt120(t *testing.T) {
	fx := newFixture()
	require.True(t, fx.ctrl.Start(120, 2))

	fx.fake.Advance(3999 * time.Millisecond)
	assert.Empty(t, fx.done)
	k, n := fx.ctrl.Bar()
	assert.Equal(t, 2, k)
	assert.Equal(t, 2, n)

	fx.fake.Advance(time.Millisecond)
	assert.Equal(t, []time.Duration{4000 * time.Millisecond}, fx.done)
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, fx.bars)
	assert.False(t, fx.ctrl.Active())
	assert.False(t, fx.metro.Running())
	assert.Equal(t, 8, fx.clicks)
	assert.Equal(t, 0, fx.fake.Pending())
}

func TestCompletesOnceOnly(t *testing.T) {
	fx := newFixture()
	fx.ctrl.Start(120, 1)
	fx.fake.Advance(time.Minute)
	assert.Len(t, fx.done, 1)
	assert.Equal(t, 2*time.Second, fx.done[0])
}

func TestCancelMidCountIn(t *testing.T) {
	fx := newFixture()
	fx.ctrl.Start(120, 2)
	fx.fake.Advance(1000 * time.Millisecond)

	assert.True(t, fx.ctrl.Cancel())
	assert.False(t, fx.ctrl.Active())
	assert.False(t, fx.metro.Running())
	assert.Nil(t, fx.metro.OnBeat)
	assert.Equal(t, 0, fx.fake.Pending())

	clicks := fx.clicks
	fx.fake.Advance(time.Minute)
	assert.Empty(t, fx.done)
	assert.Equal(t, clicks, fx.clicks)
	assert.False(t, fx.ctrl.Cancel())
}

func TestZeroBarsIsBypassed(t *testing.T) {
	fx := newFixture()
	assert.False(t, fx.ctrl.Start(120, 0))
	assert.False(t, fx.ctrl.Active())
	assert.False(t, fx.metro.Running())
}

func TestStartWhileActiveIsRejected(t *testing.T) {
	fx := newFixture()
	require.True(t, fx.ctrl.Start(120, 2))
	fx.fake.Advance(2500 * time.Millisecond)
	assert.False(t, fx.ctrl.Start(90, 1))

	fx.fake.Advance(1500 * time.Millisecond)
	assert.Equal(t, []time.Duration{4000 * time.Millisecond}, fx.done)
}

func TestSilentMetronomeStillCountsBars(t *testing.T) {
	fx := newFixture()
	fx.metro.SetEnabled(false)
	fx.ctrl.Start(60, 1)
	fx.fake.Advance(4 * time.Second)

	assert.Equal(t, 0, fx.clicks)
	assert.Equal(t, []time.Duration{4 * time.Second}, fx.done)
}
