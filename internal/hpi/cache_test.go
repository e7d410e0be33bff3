package hpi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/gfc-explorer/internal/model"
)

func TestCacheKey(t *testing.T) {
	sel := model.Selection{CBSAName: "Reno, NV", YearMin: 2005, YearMax: 2013}
	assert.Equal(t, "tracts/Reno, NV/2005/2013", cacheKey("tracts", sel))
	assert.NotEqual(t, cacheKey("tracts", sel), cacheKey("series", sel))
}

func TestResultCachePutGet(t *testing.T) {
	c := newResultCache(4, time.Minute)

	_, ok := c.get("a")
	assert.False(t, ok)

	c.put("a", 1)
	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, c.len())
}

func TestResultCacheTTL(t *testing.T) {
	c := newResultCache(4, 10*time.Millisecond)
	c.put("a", 1)

	time.Sleep(20 * time.Millisecond)
	_, ok := c.get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.len())
}

func TestResultCacheEvictsOldest(t *testing.T) {
	c := newResultCache(2, time.Minute)
	c.put("a", 1)
	c.put("b", 2)

	// Touch "a" so "b" becomes the LRU victim.
	_, _ = c.get("a")
	c.put("c", 3)

	_, ok := c.get("b")
	assert.False(t, ok)
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestResultCacheOverwrite(t *testing.T) {
	c := newResultCache(2, time.Minute)
	c.put("a", 1)
	c.put("a", 2)

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.len())
}

func TestResultCacheNilReceiver(t *testing.T) {
	var c *resultCache
	c.put("a", 1)
	_, ok := c.get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.len())
}
