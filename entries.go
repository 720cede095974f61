package ioc

// Entries is a map-like view over a container.
//
//	entries := c.Entries()
//	entries.Set("config", cfg)
//	if entries.Exists("config") { ... }
type Entries struct {
	c *Container
}

// Entries returns a map-like view over c.
func (c *Container) Entries() Entries {
	return Entries{c: c}
}

// Exists reports whether key is bound or has a stored instance.
func (e Entries) Exists(key Key) bool {
	return e.c.IsBound(key)
}

// Get resolves key.
func (e Entries) Get(key Key) (any, error) {
	return e.c.Make(key)
}

// Set stores value as the instance for key.
func (e Entries) Set(key Key, value any) error {
	return e.c.Instance(key, value)
}

// Unset drops the stored or cached instance for key. A binding for key is
// kept.
func (e Entries) Unset(key Key) {
	e.c.Forget(key)
}

// Get resolves id, failing with EntryNotFoundError when nothing is bound
// under it. Unlike Make, an unbound id is never autowired.
func (c *Container) Get(id Key) (any, error) {
	if !c.IsBound(id) {
		return nil, EntryNotFoundError{Key: id}
	}
	return c.Make(id)
}

// Has reports whether id is bound or has a stored instance.
func (c *Container) Has(id Key) bool {
	return c.IsBound(id)
}
