package build

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/basicc-lang/basicc/internal/cli"
)

// CacheKey uniquely identifies a compiled source.
type CacheKey string

// KeyFor hashes source together with the compiler version, so that an
// upgraded compiler never reuses old output.
func KeyFor(source []byte) CacheKey {
	h := sha256.New()
	h.Write([]byte(cli.Version))
	h.Write([]byte{0})
	h.Write(source)
	return CacheKey(hex.EncodeToString(h.Sum(nil)))
}

// CacheStats exposes basic metrics.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Entries   int64
	Bytes     int64
	Evictions int64
}

// Cache maps source hashes to emitted C.
type Cache interface {
	Get(key CacheKey) (string, bool)
	Put(key CacheKey, output string)
	Invalidate(key CacheKey)
	Stats() CacheStats
}

// InMemoryLRUCache is a thread-safe LRU cache with a max entry count.
type InMemoryLRUCache struct {
	mu       sync.Mutex
	capacity int
	llHead   *lruNode
	llTail   *lruNode
	table    map[CacheKey]*lruNode
	stats    CacheStats
}

type lruNode struct {
	key  CacheKey
	val  string
	prev *lruNode
	next *lruNode
}

// NewInMemoryLRUCache creates a new cache with the given capacity (entries). If capacity<=0, defaults to 256.
func NewInMemoryLRUCache(capacity int) *InMemoryLRUCache {
	if capacity <= 0 {
		capacity = 256
	}
	return &InMemoryLRUCache{capacity: capacity, table: make(map[CacheKey]*lruNode)}
}

func (c *InMemoryLRUCache) detach(n *lruNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.llHead = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.llTail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (c *InMemoryLRUCache) pushFront(n *lruNode) {
	n.next = c.llHead
	if c.llHead != nil {
		c.llHead.prev = n
	}
	c.llHead = n
	if c.llTail == nil {
		c.llTail = n
	}
}

func (c *InMemoryLRUCache) remove(n *lruNode) {
	c.detach(n)
	delete(c.table, n.key)
	c.stats.Entries = int64(len(c.table))
	c.stats.Bytes -= int64(len(n.val))
}

func (c *InMemoryLRUCache) Get(key CacheKey) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.table[key]; ok {
		c.detach(n)
		c.pushFront(n)
		c.stats.Hits++
		return n.val, true
	}
	c.stats.Misses++
	return "", false
}

func (c *InMemoryLRUCache) Put(key CacheKey, output string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.table[key]; ok {
		c.stats.Bytes += int64(len(output) - len(n.val))
		n.val = output
		c.detach(n)
		c.pushFront(n)
		return
	}

	n := &lruNode{key: key, val: output}
	c.pushFront(n)
	c.table[key] = n
	c.stats.Entries = int64(len(c.table))
	c.stats.Bytes += int64(len(output))

	for len(c.table) > c.capacity && c.llTail != nil {
		c.remove(c.llTail)
		c.stats.Evictions++
	}
}

func (c *InMemoryLRUCache) Invalidate(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.table[key]; ok {
		c.remove(n)
	}
}

func (c *InMemoryLRUCache) Stats() CacheStats { c.mu.Lock(); defer c.mu.Unlock(); return c.stats }
