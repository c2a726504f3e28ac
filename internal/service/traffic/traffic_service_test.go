package traffic

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/pdftoolkit/config"
	"github.com/weiwangfds/pdftoolkit/internal/database"
)

func TestIncrementAndGet(t *testing.T) {
	ctx := context.Background()
	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	defer database.Close(db)

	svc := NewTrafficService(db)

	v, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, v)

	v, err = svc.IncrementAndGet(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	t.Run("并发自增不丢失", func(t *testing.T) {
		const n = 50
		var wg sync.WaitGroup
		seen := make(chan int64, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := svc.IncrementAndGet(ctx)
				assert.NoError(t, err)
				seen <- v
			}()
		}
		wg.Wait()
		close(seen)

		unique := map[int64]bool{}
		for v := range seen {
			unique[v] = true
		}
		assert.Len(t, unique, n)

		v, err := svc.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(n+1), v)
	})

	t.Run("计数行缺失时自动创建", func(t *testing.T) {
		require.NoError(t, db.Where("name = ?", database.TrafficCounterName).Delete(&database.Counter{}).Error)
		v, err := svc.IncrementAndGet(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
	})
}
