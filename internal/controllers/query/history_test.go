package query

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"human1-sdk/internal/common/config"
	"human1-sdk/internal/models"
)

func loadTestConfig(timeoutMs int, format string) *config.Config {
	return &config.Config{Query: config.QueryConfig{Timeout: timeoutMs, DefaultFormat: format}}
}

func TestHistoryStore_Append(t *testing.T) {
	store := NewHistoryStore()
	fixed := time.Date(2024, 5, 4, 12, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	store.now = func() time.Time { return fixed }

	result := models.NewParagraph("There are six films.")
	entry := store.Append("How many films?", result)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "How many films?", entry.Query)
	assert.Same(t, result, entry.Result)
	assert.Equal(t, fixed.UTC(), entry.Timestamp)
	assert.Equal(t, time.UTC, entry.Timestamp.Location())
}

func TestHistoryStore_ListIsACopy(t *testing.T) {
	store := NewHistoryStore()
	store.Append("first", models.NewParagraph("a"))

	list := store.List()
	list[0].Query = "changed"

	fresh := store.List()
	require.Len(t, fresh, 1)
	assert.Equal(t, "first", fresh[0].Query)
	assert.Equal(t, 1, store.Len())
}

func TestHistoryStore_EmptyListIsNotNil(t *testing.T) {
	list := NewHistoryStore().List()
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestHistoryStore_ConcurrentAppend(t *testing.T) {
	store := NewHistoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Append(fmt.Sprintf("q%d", i), models.NewParagraph("ok"))
			_ = store.List()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, store.Len())
}
