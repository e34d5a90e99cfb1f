package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// Catalog is the read-only lookup of item definitions. Content lives outside
// the scheduler; adapters load it from files.
type Catalog interface {
	Item(key string) (*Item, bool)
	Items(track shared.Track) []*Item
	Cost(key string, level int) (int64, error)
	Work(key string, level int) (int64, error)
	Prerequisites(key string) (Prerequisites, error)
}

// StaticCatalog is an in-memory Catalog. Items can be replaced at runtime
// (content reloads, price rebalancing) without affecting queued entries,
// which keep the amount they were charged.
type StaticCatalog struct {
	mu    sync.RWMutex
	items map[string]*Item
}

// NewStaticCatalog validates items and indexes them by key
func NewStaticCatalog(items []*Item) (*StaticCatalog, error) {
	c := &StaticCatalog{items: make(map[string]*Item, len(items))}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.items[item.Key]; dup {
			return nil, fmt.Errorf("duplicate catalog key %s", item.Key)
		}
		c.items[item.Key] = item
	}
	return c, nil
}

// Upsert replaces or adds an item definition
func (c *StaticCatalog) Upsert(item *Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.Key] = item
	return nil
}

func (c *StaticCatalog) Item(key string) (*Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[key]
	return item, ok
}

// Items returns the items of a track ordered by key
func (c *StaticCatalog) Items(track shared.Track) []*Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*Item
	for _, item := range c.items {
		if item.Track == track {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (c *StaticCatalog) Cost(key string, level int) (int64, error) {
	item, err := c.lookup(key)
	if err != nil {
		return 0, err
	}
	return item.CostAt(level)
}

func (c *StaticCatalog) Work(key string, level int) (int64, error) {
	item, err := c.lookup(key)
	if err != nil {
		return 0, err
	}
	return item.WorkAt(level)
}

func (c *StaticCatalog) Prerequisites(key string) (Prerequisites, error) {
	item, err := c.lookup(key)
	if err != nil {
		return Prerequisites{}, err
	}
	return item.Prerequisites, nil
}

func (c *StaticCatalog) lookup(key string) (*Item, error) {
	item, ok := c.Item(key)
	if !ok {
		return nil, shared.NewNotFoundError("catalog item", key)
	}
	return item, nil
}
