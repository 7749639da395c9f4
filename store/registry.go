package store

import (
	"context"
	"fmt"
	"sort"
)

// Factory creates a Backend from a configuration map.
type Factory func(context.Context, map[string]interface{}) (Backend, error)

var registry = make(map[string]Factory)

// Register associates a backend type name with a Factory.
// Backend packages call it from init.
func Register(key string, f Factory) {
	registry[key] = f
}

// Create creates a backend of the registered type key.
func Create(ctx context.Context, key string, conf map[string]interface{}) (Backend, error) {
	f, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("key %s not found in registry", key)
	}
	return f(ctx, conf)
}

// Types lists the registered backend type names.
func Types() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
