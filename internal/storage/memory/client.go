package memory

import (
	"context"
	"sync"
	"time"
)

// Client — in-memory реализация storage.LimiterStore для -dev и запусков без
// Redis. Скользящее окно по временным меткам; счётчик локален для процесса.
type Client struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	max       int
	window    time.Duration
	lastSweep time.Time
}

func New(max int, window time.Duration) *Client {
	return &Client{hits: make(map[string][]time.Time), max: max, window: window, lastSweep: time.Now()}
}

func (c *Client) Close() error { return nil }

func (c *Client) Allow(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	cutoff := now.Add(-c.window)
	// Раз в окно выметаем ключи, которых давно не видели — иначе map растёт
	// без предела на уникальных IP и владельцах.
	if now.Sub(c.lastSweep) >= c.window {
		for k, ts := range c.hits {
			if len(ts) == 0 || !ts[len(ts)-1].After(cutoff) {
				delete(c.hits, k)
			}
		}
		c.lastSweep = now
	}
	slice := c.hits[key]
	i := 0
	for _, t := range slice {
		if t.After(cutoff) {
			slice[i] = t
			i++
		}
	}
	slice = slice[:i]
	if len(slice) >= c.max {
		c.hits[key] = slice
		return false, nil
	}
	c.hits[key] = append(slice, now)
	return true, nil
}
