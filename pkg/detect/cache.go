package detect

import "sync"

// Cache lazily constructs a Detector once and shares it across sessions.
// Model loading is expensive; concurrent sessions must not race the load
// or end up with separate copies of the network in memory.
type Cache struct {
	factory func() (Detector, error)

	mu  sync.Mutex
	det Detector
}

// NewCache wraps a detector constructor. The constructor is not called
// until the first Get.
func NewCache(factory func() (Detector, error)) *Cache {
	return &Cache{factory: factory}
}

// Get returns the shared detector, constructing it on first use. A failed
// construction is not cached; the next Get retries.
func (c *Cache) Get() (Detector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.det != nil {
		return c.det, nil
	}

	det, err := c.factory()
	if err != nil {
		return nil, err
	}
	c.det = det
	return det, nil
}

// Loaded reports whether the detector has already been constructed. Used
// to announce model loading only when a Get will actually trigger one.
func (c *Cache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.det != nil
}

// Close releases the cached detector, if one was constructed.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.det == nil {
		return nil
	}
	err := c.det.Close()
	c.det = nil
	return err
}
