package observability

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageTop(t *testing.T) {
	u := NewUsage()
	u.Record("Age", ">=")
	u.Record("Age", "<")
	u.Record("S9", "=")
	u.Record("Age", ">=")
	u.Record("W", "")

	top := u.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, "Age", top[0].Variable)
	assert.Equal(t, int64(3), top[0].Frequency)
	assert.Equal(t, 2, top[0].Operators[">="])
	assert.Equal(t, "S9", top[1].Variable)

	assert.Equal(t, 3, u.Len())
	assert.Empty(t, u.Top(0))
}

func TestUsageTiesBreakByName(t *testing.T) {
	u := NewUsage()
	u.Record("B", "=")
	u.Record("A", "=")

	top := u.Top(10)
	require.Len(t, top, 2)
	assert.Equal(t, "A", top[0].Variable)
}

func TestUsageConcurrent(t *testing.T) {
	u := NewUsage()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				u.Record("Age", "=")
			}
		}()
	}
	wg.Wait()

	top := u.Top(1)
	require.Len(t, top, 1)
	assert.Equal(t, int64(800), top[0].Frequency)
}
