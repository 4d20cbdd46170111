package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[EntityType]*Catalog)
	registryMu sync.RWMutex
)

// Register adds a catalog to the registry.
// Panics if a catalog for the same entity is already registered, if it has
// no fields, if a field is named Skip, or if a field name repeats.
func Register(cat Catalog) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[cat.Entity]; exists {
		panic(fmt.Sprintf("catalog already registered: %s", cat.Entity))
	}
	if len(cat.Fields) == 0 {
		panic(fmt.Sprintf("catalog %s has no fields", cat.Entity))
	}

	seen := make(map[string]bool, len(cat.Fields))
	for _, f := range cat.Fields {
		if f.Name == Skip {
			panic(fmt.Sprintf("catalog %s: %q is reserved", cat.Entity, Skip))
		}
		if seen[f.Name] {
			panic(fmt.Sprintf("catalog %s: duplicate field %s", cat.Entity, f.Name))
		}
		seen[f.Name] = true
	}

	if cat.Label == "" {
		cat.Label = string(cat.Entity)
	}
	if cat.Table == "" {
		cat.Table = string(cat.Entity)
	}

	registry[cat.Entity] = &cat
}

// Lookup returns the catalog for an entity.
// Returns false if not found.
func Lookup(entity EntityType) (*Catalog, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	cat, ok := registry[entity]
	return cat, ok
}

// Catalogs returns all registered catalogs sorted by entity.
func Catalogs() []*Catalog {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]*Catalog, 0, len(registry))
	for _, cat := range registry {
		result = append(result, cat)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Entity < result[j].Entity
	})

	return result
}

// CatalogCount returns the number of registered catalogs.
func CatalogCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// ClearCatalogs removes all registered catalogs.
// Primarily useful for testing.
func ClearCatalogs() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[EntityType]*Catalog)
}
