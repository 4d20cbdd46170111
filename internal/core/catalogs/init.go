// Package catalogs registers the importable entities with the core registry.
// Import this package to ensure all catalogs are registered.
package catalogs

// Each catalog file uses init() to register its catalog.

// ignoredHeaders are legacy export columns that never map to a field.
var ignoredHeaders = []string{"ysnPrint", "Save_tag", "SiteState", "RunTag"}
