package daemonutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockFileRoundTrip(t *testing.T) {
	dir := t.TempDir()

	info, err := ReadLockFile(dir, "test-instance")
	require.NoError(t, err)
	assert.Nil(t, info)

	require.NoError(t, WriteLockFile(dir, "test-instance", os.Getpid(), "/tmp/test.sock"))

	info, err = ReadLockFile(dir, "test-instance")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, os.Getpid(), info.PID)
	assert.Equal(t, "/tmp/test.sock", info.Addr)

	require.NoError(t, RemoveLockFile(dir, "test-instance"))
	info, err = ReadLockFile(dir, "test-instance")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestIsStaleDetectsDeadProcess(t *testing.T) {
	info := &LockInfo{PID: 999999999, Addr: "/tmp/x.sock"}
	assert.True(t, IsStale(info))
}

func TestIsProcessAliveForSelf(t *testing.T) {
	assert.True(t, IsProcessAlive(os.Getpid()))
	assert.False(t, IsProcessAlive(0))
	assert.False(t, IsProcessAlive(-1))
}

func TestSocketPathIsStablePerInstance(t *testing.T) {
	a := SocketPath("foo")
	b := SocketPath("foo")
	c := SocketPath("bar")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
