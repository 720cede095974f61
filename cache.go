package ioc

// instanceCache holds shared and directly stored instances. Entries are
// written once; only remove and clear drop them.
type instanceCache struct {
	entries map[Key]any

	hits   int64
	misses int64
}

// CacheStatistics describes the instance cache.
type CacheStatistics struct {
	Hits    int64
	Misses  int64
	Entries int
}

func newInstanceCache() *instanceCache {
	return &instanceCache{
		entries: make(map[Key]any),
	}
}

// get returns the cached instance for key.
func (c *instanceCache) get(key Key) (any, bool) {
	instance, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return instance, ok
}

// has reports whether key has an entry without touching the statistics.
func (c *instanceCache) has(key Key) bool {
	_, ok := c.entries[key]
	return ok
}

// memoize stores instance unless key already has an entry, and returns the
// entry that is cached afterwards.
func (c *instanceCache) memoize(key Key, instance any) any {
	if existing, ok := c.entries[key]; ok {
		return existing
	}
	c.entries[key] = instance
	return instance
}

// put stores instance, replacing any entry. Only explicit instance
// registration uses it.
func (c *instanceCache) put(key Key, instance any) {
	c.entries[key] = instance
}

func (c *instanceCache) remove(key Key) {
	delete(c.entries, key)
}

func (c *instanceCache) clear() {
	c.entries = make(map[Key]any)
}

func (c *instanceCache) statistics() CacheStatistics {
	return CacheStatistics{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: len(c.entries),
	}
}
