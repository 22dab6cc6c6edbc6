//go:build integration && !windows

package rod_test

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/distill/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// processAlive reports whether pid exists, using signal 0.
func processAlive(pid int) bool {
	return syscall.Kill(pid, syscall.Signal(0)) == nil
}

func TestFetcher_BrowserProcesses(t *testing.T) {
	t.Parallel()

	fetcher, err := rod.NewFetcher(rod.WithRecycleAfter(1))
	require.NoError(t, err)

	srv := newCatalogServer(t)

	_, err = fetcher.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	recycled := fetcher.LauncherPID()

	_, err = fetcher.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	current := fetcher.LauncherPID()
	require.True(t, processAlive(current))

	require.NoError(t, fetcher.Close())
	time.Sleep(100 * time.Millisecond)

	assert.False(t, processAlive(recycled), "recycled browser should be stopped")
	assert.False(t, processAlive(current), "browser should be stopped by Close")
}
