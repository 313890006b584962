// Package solrq provides a Go query builder for Apache Solr
package solrq

import (
	"reflect"
	"strings"
)

// Field identifies a named field in a Solr document
type Field interface {
	Name() string
}

// SimpleField is a Field carrying only its name
type SimpleField struct {
	name string
}

// NewField wraps a field name into a SimpleField
func NewField(name string) SimpleField {
	return SimpleField{name: name}
}

// Name returns the field name
func (f SimpleField) Name() string {
	return f.name
}

// String implements fmt.Stringer
func (f SimpleField) String() string {
	return f.name
}

// fieldFromName converts a raw name into a Field, returning nil for a blank
// name so callers treat it the same as a missing Field.
func fieldFromName(name string) Field {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	return NewField(name)
}

// isMissing reports whether f is absent or names nothing.
func isMissing(f Field) bool {
	if f == nil {
		return true
	}
	switch rv := reflect.ValueOf(f); rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return true
		}
	}
	return strings.TrimSpace(f.Name()) == ""
}

// sameField compares two fields by name
func sameField(a, b Field) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name() == b.Name()
}
