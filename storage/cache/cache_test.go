package cache

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCache_GetOrLoad_hitsAreIdempotent(t *testing.T) {
	c := New()
	var loads int
	loader := func() (interface{}, error) {
		loads++
		return "page-1", nil
	}

	for i := 0; i < 5; i++ {
		v, err := c.GetOrLoad("courses-list", "page=1", loader)
		assert.NoError(t, err)
		assert.Equal(t, "page-1", v)
	}
	assert.Equal(t, 1, loads)
}

func TestCache_keysAreIndependent(t *testing.T) {
	c := New()
	var loads int
	loader := func(val string) func() (interface{}, error) {
		return func() (interface{}, error) {
			loads++
			return val, nil
		}
	}

	v1, _ := c.GetOrLoad("courses-list", "page=1", loader("one"))
	v2, _ := c.GetOrLoad("courses-list", "page=2", loader("two"))
	assert.Equal(t, "one", v1)
	assert.Equal(t, "two", v2)
	assert.Equal(t, 2, loads)
}

func TestCache_Invalidate_dropsEveryKeyUnderTag(t *testing.T) {
	c := New()
	var loads int
	loader := func() (interface{}, error) {
		loads++
		return loads, nil
	}

	_, _ = c.GetOrLoad("courses-list", "page=1", loader)
	_, _ = c.GetOrLoad("courses-list", "page=2", loader)
	_, _ = c.GetOrLoad("groups-list", "page=1", loader)
	assert.Equal(t, 3, loads)

	c.Invalidate("courses-list")

	_, _ = c.GetOrLoad("courses-list", "page=1", loader)
	_, _ = c.GetOrLoad("courses-list", "page=2", loader)
	assert.Equal(t, 5, loads, "both course keys must reload")

	_, _ = c.GetOrLoad("groups-list", "page=1", loader)
	assert.Equal(t, 5, loads, "other tags must be untouched")
}

func TestCache_loaderErrorsAreNotCached(t *testing.T) {
	c := New()
	var loads int
	boom := errors.New("boom")

	_, err := c.GetOrLoad("courses-list", "page=1", func() (interface{}, error) {
		loads++
		return nil, boom
	})
	assert.Equal(t, boom, err)

	v, err := c.GetOrLoad("courses-list", "page=1", func() (interface{}, error) {
		loads++
		return "ok", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, loads)
}

func TestCache_invalidationDuringLoadWins(t *testing.T) {
	c := New()

	// the read begins, then the tag is invalidated while its loader runs:
	// the stale result must not be stored
	v, err := c.GetOrLoad("courses-list", "page=1", func() (interface{}, error) {
		c.Invalidate("courses-list")
		return "stale", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "stale", v, "the in-flight caller still gets its result")

	var loads int
	v, err = c.GetOrLoad("courses-list", "page=1", func() (interface{}, error) {
		loads++
		return "fresh", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "fresh", v)
	assert.Equal(t, 1, loads, "the next read must reload")
}

func TestCache_Flush(t *testing.T) {
	c := New()
	var loads int
	loader := func() (interface{}, error) {
		loads++
		return loads, nil
	}

	_, _ = c.GetOrLoad("courses-list", "page=1", loader)
	_, _ = c.GetOrLoad("groups-list", "page=1", loader)
	c.Flush()
	_, _ = c.GetOrLoad("courses-list", "page=1", loader)
	_, _ = c.GetOrLoad("groups-list", "page=1", loader)
	assert.Equal(t, 4, loads)
}
