package monitor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet_monitor/internal/domain/entity"
)

func TestSnapshotStore_Swap(t *testing.T) {
	s := NewSnapshotStore()
	key := entity.TaskKey{Kind: entity.KindBalance, TargetKey: entity.Target{Chain: "Ethereum", Address: "0xABC"}.Key()}

	_, ok := s.Get(key)
	assert.False(t, ok)

	first := &entity.Snapshot{TotalQuoteValue: 1}
	assert.Nil(t, s.Swap(key, first))

	second := &entity.Snapshot{TotalQuoteValue: 2}
	assert.Same(t, first, s.Swap(key, second))

	got, ok := s.Get(key)
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, uint64(2), s.Writes())
}

func TestSnapshotStore_KeysAreIndependent(t *testing.T) {
	s := NewSnapshotStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := entity.TaskKey{Kind: entity.KindBalance, TargetKey: entity.TargetKey{Chain: "ethereum", Address: string(rune('a' + i))}}
			var prev *entity.Snapshot
			for j := 0; j < 50; j++ {
				next := &entity.Snapshot{TotalQuoteValue: float64(j)}
				assert.Same(t, prev, s.Swap(key, next))
				prev = next
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, uint64(16*50), s.Writes())
	count := 0
	s.Range(func(_ entity.TaskKey, snapshot *entity.Snapshot) bool {
		count++
		assert.Equal(t, 49.0, snapshot.TotalQuoteValue)
		return true
	})
	assert.Equal(t, 16, count)
}
