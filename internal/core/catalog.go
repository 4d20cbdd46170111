package core

import "strings"

// BuildRecordFunc turns the coerced values of one valid row into the
// entity's typed destination record.
type BuildRecordFunc func(v FieldValues) DestinationRecord

// Catalog is the fixed list of destination fields for one entity.
type Catalog struct {
	Entity  EntityType
	Label   string
	Version int
	Table   string            // Destination table name
	Fields  []FieldDescriptor // In display order
	Ignored []string          // Source headers always mapped to Skip
	Build   BuildRecordFunc
}

// Field returns the descriptor with the given machine name.
func (c *Catalog) Field(name string) (FieldDescriptor, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Has reports whether name is a field of this catalog. Skip is not.
func (c *Catalog) Has(name string) bool {
	_, ok := c.Field(name)
	return ok
}

// Required returns the required fields in catalog order.
func (c *Catalog) Required() []FieldDescriptor {
	var out []FieldDescriptor
	for _, f := range c.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

// FieldNames returns every machine name in catalog order.
func (c *Catalog) FieldNames() []string {
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = f.Name
	}
	return names
}

// IsIgnored reports whether a source header is on the always-skip list.
// Comparison is case-insensitive.
func (c *Catalog) IsIgnored(header string) bool {
	h := strings.TrimSpace(header)
	for _, ig := range c.Ignored {
		if strings.EqualFold(ig, h) {
			return true
		}
	}
	return false
}
