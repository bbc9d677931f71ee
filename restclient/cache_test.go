// Copyright 2016-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

type LRUAssertions struct {
	*assert.Assertions
	LRU *lru
}

func NewLRUAssertions(t assert.TestingT, size int) *LRUAssertions {
	return &LRUAssertions{
		assert.New(t),
		newLRU(size),
	}
}

// PutURL adds a response for url to the cache.
func (a *LRUAssertions) PutURL(url string) {
	a.LRU.Put(&cachedResponse{URL: url, Body: []byte(url)})
}

// LRUHas asserts that a response for url is in the cache.
func (a *LRUAssertions) LRUHas(url string) {
	resp, ok := a.LRU.Get(url)
	if a.True(ok, "%s not cached", url) {
		a.Equal(url, string(resp.Body))
	}
}

// LRUDoesNotHave asserts that no response for url is in the cache.
func (a *LRUAssertions) LRUDoesNotHave(url string) {
	_, ok := a.LRU.Get(url)
	a.False(ok, "%s cached", url)
}

func TestLRUSimple(t *testing.T) {
	a := NewLRUAssertions(t, 2)
	a.PutURL("rest/workspaces.xml")

	a.LRUHas("rest/workspaces.xml")
	a.LRUDoesNotHave("rest/styles.xml")
}

// TestLRUOrder tests that getting an item causes it to not get evicted.
func TestLRUOrder(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	a.PutURL("a")
	a.PutURL("b")
	a.LRUHas("a")

	// "a" is now more recently used, so "b" gets pushed out
	a.PutURL("c")
	a.LRUHas("a")
	a.LRUDoesNotHave("b")
	a.LRUHas("c")
	a.Equal(2, a.LRU.Len())
}

func TestLRUReplace(t *testing.T) {
	a := NewLRUAssertions(t, 2)
	a.PutURL("a")
	a.LRU.Put(&cachedResponse{URL: "a", Body: []byte("new")})
	resp, ok := a.LRU.Get("a")
	if a.True(ok) {
		a.Equal("new", string(resp.Body))
	}
	a.Equal(1, a.LRU.Len())
}

func TestLRURemoval(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	a.PutURL("a")
	a.LRU.Remove("a")
	a.LRUDoesNotHave("a")

	// Removing something absent is harmless
	a.LRU.Remove("b")

	// Removing a recent item leaves room for the older one
	a.PutURL("a")
	a.PutURL("b")
	a.LRU.Remove("b")
	a.PutURL("c")
	a.LRUHas("a")
	a.LRUDoesNotHave("b")
	a.LRUHas("c")
}

func TestLRUPurge(t *testing.T) {
	a := NewLRUAssertions(t, 4)
	a.PutURL("a")
	a.PutURL("b")
	a.LRU.Purge()
	a.Equal(0, a.LRU.Len())
	a.LRUDoesNotHave("a")
	a.PutURL("c")
	a.LRUHas("c")
}
