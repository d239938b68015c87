package notify

import (
	"context"
	"sync"
)

type collectorKey struct{}

// Collector gathers the notifications raised while serving one request
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

// Collect binds a fresh Collector to ctx
func Collect(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

// Notifications returns a copy of what was collected, oldest first
func (c *Collector) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Messages returns only the message texts
func (c *Collector) Messages() []string {
	items := c.Notifications()
	out := make([]string, 0, len(items))
	for _, n := range items {
		out = append(out, n.Message)
	}
	return out
}

func (c *Collector) add(n Notification) {
	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()
}

func collectorFrom(ctx context.Context) *Collector {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(collectorKey{}).(*Collector)
	return c
}
