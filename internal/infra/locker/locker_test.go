package locker

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/runoshun/habit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertSerialized runs many goroutines on the same task and checks that
// no two hold the lock at once.
func assertSerialized(t *testing.T, l domain.TaskLocker) {
	t.Helper()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.LockTask(1)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestKeyedMutex_Serializes(t *testing.T) {
	assertSerialized(t, NewKeyedMutex())
}

func TestFileLocker_Serializes(t *testing.T) {
	assertSerialized(t, NewFileLocker(t.TempDir()))
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	k := NewKeyedMutex()

	unlock1, err := k.LockTask(1)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		unlock2, err := k.LockTask(2)
		assert.NoError(t, err)
		unlock2()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on task 2 blocked behind task 1")
	}
	unlock1()
}

func TestKeyedMutex_DropsUnusedEntries(t *testing.T) {
	k := NewKeyedMutex()

	unlock, err := k.LockTask(5)
	require.NoError(t, err)
	assert.Equal(t, 1, k.size())

	unlock()
	unlock() // second call is a no-op
	assert.Equal(t, 0, k.size())
}

func TestFileLocker_CreatesLockFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "locks")
	l := NewFileLocker(dir)

	unlock, err := l.LockTask(3)
	require.NoError(t, err)
	defer unlock()

	assert.FileExists(t, filepath.Join(dir, "task-3.lock"))
}
