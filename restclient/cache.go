// Copyright 2016-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

// This file provides a simple LRU cache of GET responses.  GeoServer
// configuration changes rarely and only through this client, so any
// write simply empties the cache.

import (
	"container/list"
	"sync"
)

// cachedResponse is the body of a successful GET.
type cachedResponse struct {
	URL         string
	ContentType string
	Body        []byte
}

// lru is a least-recently-used cache with a fixed capacity.  The cache
// can be safely accessed from multiple goroutines.
type lru struct {
	size      int
	lock      sync.Mutex
	evictList *list.List
	index     map[string]*list.Element
}

func newLRU(size int) *lru {
	return &lru{
		size:      size,
		evictList: list.New(),
		index:     make(map[string]*list.Element),
	}
}

// Get retrieves the response for url, marking it most recently used.
func (lru *lru) Get(url string) (*cachedResponse, bool) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[url]; present {
		lru.evictList.MoveToBack(element)
		return element.Value.(*cachedResponse), true
	}
	return nil, false
}

// Put adds a response to the cache, possibly evicting something.
func (lru *lru) Put(resp *cachedResponse) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	// Are we just updating an existing item?
	if element, present := lru.index[resp.URL]; present {
		element.Value = resp
		lru.evictList.MoveToBack(element)
		return
	}

	element := lru.evictList.PushBack(resp)
	lru.index[resp.URL] = element

	// If this caused the cache to go over size, start evicting items
	for len(lru.index) > lru.size {
		head := lru.evictList.Front()
		delete(lru.index, head.Value.(*cachedResponse).URL)
		lru.evictList.Remove(head)
	}
}

// Remove takes a response out of the cache.  It does nothing if url
// is not cached.
func (lru *lru) Remove(url string) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[url]; present {
		delete(lru.index, url)
		lru.evictList.Remove(element)
	}
}

// Purge empties the cache.
func (lru *lru) Purge() {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	lru.evictList.Init()
	lru.index = make(map[string]*list.Element)
}

// Len returns the number of cached responses.
func (lru *lru) Len() int {
	lru.lock.Lock()
	defer lru.lock.Unlock()
	return len(lru.index)
}
