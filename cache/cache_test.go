package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kogsector/kgfusion/model"
	"github.com/kogsector/kgfusion/query"
)

func TestNew_EmptyURLDisablesCache(t *testing.T) {
	c, err := New(context.Background(), "", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNilCache_GetIsAlwaysMiss(t *testing.T) {
	var c *Cache
	_, ok := c.Get(context.Background(), "any-key")
	assert.False(t, ok)
}

func TestNilCache_SetIsNoop(t *testing.T) {
	var c *Cache
	assert.NotPanics(t, func() {
		c.Set(context.Background(), "any-key", query.Result{})
	})
}

func TestKey_StableForIdenticalRequests(t *testing.T) {
	req := model.SearchRequest{Query: "widget", Limit: 10}
	assert.Equal(t, Key("hybrid", req), Key("hybrid", req))
}

func TestKey_DiffersByMode(t *testing.T) {
	req := model.SearchRequest{Query: "widget"}
	assert.NotEqual(t, Key("hybrid", req), Key("vector", req))
}

func TestKey_DiffersByRequestContent(t *testing.T) {
	a := model.SearchRequest{Query: "widget"}
	b := model.SearchRequest{Query: "gadget"}
	assert.NotEqual(t, Key("hybrid", a), Key("hybrid", b))
}
