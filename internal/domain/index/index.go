package index

// DefaultNumShards is used when an index has no configured shard count.
const DefaultNumShards = 2

// Config holds per-index settings resolved by name.
type Config struct {
	name                  string
	numShards             int
	attributesForFaceting []string
}

// New creates an index config. numShards <= 0 means unconfigured.
func New(name string, numShards int, attributesForFaceting []string) Config {
	return Config{
		name:                  name,
		numShards:             numShards,
		attributesForFaceting: append([]string(nil), attributesForFaceting...),
	}
}

// Name returns the configured index name.
func (c Config) Name() string { return c.name }

// NumShards returns the configured shard count, or DefaultNumShards when unset.
func (c Config) NumShards() int {
	if c.numShards <= 0 {
		return DefaultNumShards
	}
	return c.numShards
}

// AttributesForFaceting returns the fields to facet on in search requests.
func (c Config) AttributesForFaceting() []string { return c.attributesForFaceting }

// Registry is a read-only, name-keyed table of index configs.
// Keys are case-sensitive.
type Registry struct {
	byName map[string]Config
}

// NewRegistry builds a registry. Later duplicates replace earlier ones.
func NewRegistry(configs ...Config) *Registry {
	r := &Registry{byName: make(map[string]Config, len(configs))}
	for _, c := range configs {
		r.byName[c.name] = c
	}
	return r
}

// Lookup returns the config for name. Unknown names yield a zero Config and false.
// A nil registry behaves as empty.
func (r *Registry) Lookup(name string) (Config, bool) {
	if r == nil {
		return Config{}, false
	}
	c, ok := r.byName[name]
	return c, ok
}

// Names returns all configured index names.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}
