package reference

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"

	"github.com/hail-is/hailtype/types"
)

// ErrNotFound is returned, wrapped, when no configuration exists for a
// name.
var ErrNotFound = errors.New("reference genome not found")

// Registry maps reference genome names to configurations. Implementations
// must be safe for concurrent use.
type Registry interface {
	Lookup(name string) (*Config, error)
}

// MemRegistry is a Registry backed by a map.
type MemRegistry struct {
	mu      sync.RWMutex
	configs map[string]*Config
}

func NewMemRegistry() *MemRegistry {
	return &MemRegistry{configs: make(map[string]*Config)}
}

// Add validates and stores c. Adding a name twice with different
// configurations is an error.
func (r *MemRegistry) Add(c *Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.configs[c.Name]; ok && !sameConfig(old, c) {
		return fmt.Errorf("reference genome %s is already defined with a different configuration", c.Name)
	}
	r.configs[c.Name] = c
	return nil
}

func (r *MemRegistry) Lookup(name string) (*Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.configs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return c, nil
}

// Names returns the registered names in sorted order.
func (r *MemRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.configs))
}

func sameConfig(a, b *Config) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}

// FSRegistry loads configurations lazily from <name>.json files in a file
// system and caches them. Concurrent lookups of one name share a single
// load.
type FSRegistry struct {
	fsys  fs.FS
	mu    sync.RWMutex
	cache map[string]*Config
	// gen counts invalidations per name. A load only fills the cache if
	// no invalidation happened while it ran.
	gen map[string]uint64
	sf  singleflight.Group
}

func NewFSRegistry(fsys fs.FS) *FSRegistry {
	return &FSRegistry{
		fsys:  fsys,
		cache: make(map[string]*Config),
		gen:   make(map[string]uint64),
	}
}

func (r *FSRegistry) Lookup(name string) (*Config, error) {
	r.mu.RLock()
	c, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	v, err, _ := r.sf.Do(name, func() (any, error) {
		r.mu.RLock()
		gen := r.gen[name]
		r.mu.RUnlock()
		c, err := r.load(name)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		if r.gen[name] == gen {
			r.cache[name] = c
		}
		r.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Config), nil
}

// Invalidate drops the cached configuration of name, if any; the next
// Lookup reads it again. A load already in flight still answers its own
// callers but does not fill the cache.
func (r *FSRegistry) Invalidate(name string) {
	r.mu.Lock()
	delete(r.cache, name)
	r.gen[name]++
	r.mu.Unlock()
	r.sf.Forget(name)
}

// Watch invalidates cached configurations whenever their files in dir
// change. dir must be the directory the registry reads from. Calling stop
// ends the watch.
func (r *FSRegistry) Watch(dir string) (stop func() error, err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if name, found := strings.CutSuffix(filepath.Base(ev.Name), ".json"); found {
					r.Invalidate(name)
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return func() error {
		err := w.Close()
		<-done
		return err
	}, nil
}

func (r *FSRegistry) load(name string) (*Config, error) {
	filename := name + ".json"
	if strings.ContainsAny(name, `/\`) || !fs.ValidPath(filename) {
		return nil, fmt.Errorf("invalid reference genome name %q", name)
	}
	data, err := fs.ReadFile(r.fsys, filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading reference genome %s: %w", name, err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	if c.Name != name {
		return nil, fmt.Errorf("%s defines reference genome %q", filename, c.Name)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Chain consults registries in order and returns the first configuration
// found.
type Chain []Registry

func (ch Chain) Lookup(name string) (*Config, error) {
	for _, r := range ch {
		c, err := r.Lookup(name)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Resolve looks up every reference genome named by ctx.
func Resolve(r Registry, ctx *types.Context) (map[string]*Config, error) {
	out := make(map[string]*Config)
	for _, name := range ctx.References() {
		c, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		out[name] = c
	}
	return out, nil
}
