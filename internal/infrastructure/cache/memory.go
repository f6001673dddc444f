package cache

import (
	"container/list"
	"sync"

	"github.com/kirillkom/invoice-analyzer/internal/core/domain"
)

// Memory is a bounded in-process analysis cache. Entries are never updated
// once stored; when capacity is exceeded the least recently used entry is
// evicted. Capacity <= 0 disables eviction.
type Memory struct {
	capacity int

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
}

type entry struct {
	fingerprint string
	result      domain.AnalysisResult
}

func NewMemory(capacity int) *Memory {
	return &Memory{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *Memory) Get(fingerprint string) (domain.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[fingerprint]
	if !ok {
		return domain.AnalysisResult{}, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*entry).result, true
}

// Put stores the result, last write wins for a contested fingerprint.
func (c *Memory) Put(fingerprint string, result domain.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[fingerprint]; ok {
		elem.Value.(*entry).result = result
		c.order.MoveToFront(elem)
		return
	}

	c.entries[fingerprint] = c.order.PushFront(&entry{fingerprint: fingerprint, result: result})

	if c.capacity > 0 && c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*entry).fingerprint)
		}
	}
}

func (c *Memory) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
