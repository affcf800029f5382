package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoahYB/drum-machine/internal/sched"
)

func TestRemoteOnFake(t *testing.T) {
	r := newRig(t, noCountIn())
	remote := r.tr.Remote()

	require.NoError(t, remote.Record())
	assert.True(t, remote.Hit(1))
	require.NoError(t, remote.Stop())

	st := remote.State()
	assert.Equal(t, Idle, st.Mode)
	assert.Equal(t, 1, st.Hits)

	remote.SetSettings(Settings{BPM: 90, Bars: 16})
	assert.Equal(t, 90, remote.State().Settings.BPM)
	assert.NoError(t, remote.Clear())
	assert.False(t, remote.State().HasRecording)
	assert.ErrorIs(t, remote.PlayStop(), ErrEmptyRecording)
}

func TestRemoteOnLoop(t *testing.T) {
	loop := sched.NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	tr := New(loop, nil, nil, Options{Settings: Settings{BPM: 200, Bars: 1}})
	remote := tr.Remote()

	require.NoError(t, remote.Record())
	assert.Equal(t, Recording, remote.State().Mode)
	assert.True(t, remote.Hit(2))

	// one bar at 200 bpm closes after 1.2s
	assert.Eventually(t, func() bool { return remote.State().Mode == Idle }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, remote.State().Hits)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	assert.NoError(t, remote.Record(), "stopped loop ignores commands")
	assert.Equal(t, Idle, remote.State().Mode)
}
