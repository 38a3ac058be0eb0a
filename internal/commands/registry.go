package commands

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Command
	aliases map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]Command),
		aliases: make(map[string]string),
	}
}

// Register adds c under its name and aliases. A name may not collide with
// any existing name or alias.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{c.Name()}, c.Aliases()...)
	for _, k := range keys {
		if r.taken(k) {
			return fmt.Errorf("duplicate command name: %s", k)
		}
	}

	r.byName[c.Name()] = c
	for _, alias := range c.Aliases() {
		r.aliases[alias] = c.Name()
	}
	return nil
}

func (r *Registry) taken(key string) bool {
	_, isName := r.byName[key]
	_, isAlias := r.aliases[key]
	return isName || isAlias
}

// Find resolves a name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if target, ok := r.aliases[name]; ok {
		name = target
	}
	cmd, ok := r.byName[name]
	return cmd, ok
}

// All returns every command once, ordered by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Command, 0, len(r.byName))
	for _, cmd := range r.byName {
		all = append(all, cmd)
	}
	slices.SortFunc(all, func(a, b Command) int {
		return cmp.Compare(a.Name(), b.Name())
	})
	return all
}

// DefaultRegistry holds the commands registered by this package's init
// functions.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry and panics on a name clash.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
