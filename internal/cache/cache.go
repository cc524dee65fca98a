package cache

import (
	"container/list"
	"sync"
)

// LRUCache is a fixed capacity least-recently-used cache safe for concurrent
// use.
type LRUCache[K comparable, V any] struct {
	mu        sync.Mutex
	size      int
	evictList *list.List
	items     map[K]*list.Element
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// NewLRUCache returns a cache holding at most size entries. A size below one
// is treated as one.
func NewLRUCache[K comparable, V any](size int) *LRUCache[K, V] {
	if size < 1 {
		size = 1
	}
	return &LRUCache[K, V]{
		size:      size,
		evictList: list.New(),
		items:     make(map[K]*list.Element),
	}
}

func (c *LRUCache[K, V]) Get(key K) (value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, hit := c.items[key]; hit {
		c.evictList.MoveToFront(ele)
		return ele.Value.(*entry[K, V]).value, true
	}
	return
}

func (c *LRUCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, hit := c.items[key]; hit {
		c.evictList.MoveToFront(ele)
		ele.Value.(*entry[K, V]).value = value
		return
	}

	ele := c.evictList.PushFront(&entry[K, V]{key, value})
	c.items[key] = ele

	if c.evictList.Len() > c.size {
		c.removeOldest()
	}
}

// Remove drops key from the cache.
func (c *LRUCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, hit := c.items[key]; hit {
		c.removeElement(ele)
	}
}

// Purge empties the cache.
func (c *LRUCache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictList.Init()
	c.items = make(map[K]*list.Element)
}

// Len reports the number of cached entries.
func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

func (c *LRUCache[K, V]) removeOldest() {
	ele := c.evictList.Back()
	if ele != nil {
		c.removeElement(ele)
	}
}

func (c *LRUCache[K, V]) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*entry[K, V])
	delete(c.items, kv.key)
}
