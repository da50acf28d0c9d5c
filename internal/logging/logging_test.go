package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInitializeAndGet(t *testing.T) {
	require.NoError(t, Initialize(true, false))
	require.True(t, IsDebugMode())

	l := Get(CategoryStorage)
	require.NotNil(t, l)
	l.Debug("hello")
}

func TestTimerStop(t *testing.T) {
	require.NoError(t, Initialize(false, false))
	timer := StartTimer(CategoryIngest, "test-op")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()
	require.Greater(t, elapsed, time.Duration(0))
}

func TestTimerStopWithThreshold(t *testing.T) {
	require.NoError(t, Initialize(false, false))
	timer := StartTimer(CategoryIngest, "slow-op")
	elapsed := timer.StopWithThreshold(time.Nanosecond)
	require.GreaterOrEqual(t, elapsed, time.Duration(0))
}
