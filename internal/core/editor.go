package core

// Validation is the live state of a mapping under edit.
type Validation struct {
	MissingRequired []FieldDescriptor `json:"missingRequired"` // Catalog order
	UnmappedHeaders []string          `json:"unmappedHeaders"` // Header order; informational
}

// Ready reports whether an import may proceed.
func (v Validation) Ready() bool {
	return len(v.MissingRequired) == 0
}

// Err returns a *ValidationError when required fields are missing.
func (v Validation) Err() error {
	if v.Ready() {
		return nil
	}
	return &ValidationError{Missing: v.MissingRequired}
}

// Editor holds the current mapping for one table and re-validates it after
// every change. An Editor is not safe for concurrent use; the owning
// session serializes access.
type Editor struct {
	cat     *Catalog
	headers []string
	mapping ColumnMapping
	last    Validation
}

// NewEditor starts from initial, filling headers it lacks with Skip and
// forcing targets outside the catalog to Skip. Entries for headers not in
// the table are dropped.
func NewEditor(cat *Catalog, headers []string, initial ColumnMapping) *Editor {
	e := &Editor{
		cat:     cat,
		headers: append([]string(nil), headers...),
		mapping: make(ColumnMapping, len(headers)),
	}
	for _, h := range headers {
		e.mapping[h] = e.target(initial[h])
	}
	e.last = ValidateMapping(cat, e.headers, e.mapping)
	return e
}

// Set points header at a field or Skip and returns the new validation.
// Unknown fields become Skip; headers outside the table are ignored.
func (e *Editor) Set(header, fieldOrSkip string) Validation {
	if _, ok := e.mapping[header]; ok {
		e.mapping[header] = e.target(fieldOrSkip)
		e.last = ValidateMapping(e.cat, e.headers, e.mapping)
	}
	return e.last
}

// Validate returns the validation of the current mapping.
func (e *Editor) Validate() Validation {
	return e.last
}

// Mapping returns a copy of the current mapping.
func (e *Editor) Mapping() ColumnMapping {
	return e.mapping.Clone()
}

func (e *Editor) target(field string) string {
	if field == "" || field == Skip || !e.cat.Has(field) {
		return Skip
	}
	return field
}

// ValidateMapping computes which required fields no header maps to and which
// headers are skipped.
func ValidateMapping(cat *Catalog, headers []string, mapping ColumnMapping) Validation {
	mapped := make(map[string]bool, len(mapping))
	for _, h := range headers {
		if f := mapping[h]; f != "" && f != Skip {
			mapped[f] = true
		}
	}

	var v Validation
	for _, f := range cat.Required() {
		if !mapped[f.Name] {
			v.MissingRequired = append(v.MissingRequired, f)
		}
	}
	for _, h := range headers {
		if f := mapping[h]; f == "" || f == Skip {
			v.UnmappedHeaders = append(v.UnmappedHeaders, h)
		}
	}
	return v
}
