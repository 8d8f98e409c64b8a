package config

import (
	"reflect"
	"strings"
)

// FieldDescriptor is one (name, kind, constraints) triple describing a
// field on a schema-bearing type, the minimal contract §9's design notes
// call for: "the core need only expose a well-typed schema plus a
// describe() → list of (name, kind, constraints) per entity for GUI code
// generation. No runtime property introspection is needed at the
// simulation layer." This reuses the JSON struct tags already on every
// wire type as the constraint source, mirroring how the teacher's
// factory.PolicyJSON's json tags double as its own canonical wire schema
// (factory/policy.go) — no separate schema-description struct to keep in
// sync by hand.
type FieldDescriptor struct {
	Name        string
	Kind        string
	Required    bool
	Description string
}

// Describe reflects over t's exported fields (t must be a struct or a
// pointer to one) and returns one FieldDescriptor per JSON-visible field,
// in declaration order. It is a one-shot reflective walk invoked by GUI
// schema-generation tooling (out of scope here per §1) — nothing in the
// simulation core itself uses runtime reflection.
func Describe(t interface{}) []FieldDescriptor {
	rt := reflect.TypeOf(t)
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil
	}

	out := make([]FieldDescriptor, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts := splitJSONTag(tag, f.Name)
		out = append(out, FieldDescriptor{
			Name:     name,
			Kind:     describeKind(f.Type),
			Required: !opts["omitempty"],
		})
	}
	return out
}

func splitJSONTag(tag, fallback string) (name string, opts map[string]bool) {
	opts = make(map[string]bool)
	if tag == "" {
		return fallback, opts
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = fallback
	}
	for _, o := range parts[1:] {
		opts[o] = true
	}
	return name, opts
}

// describeKind renders a Go type as the coarse kind name GUI code
// generation needs: the underlying primitive for a named scalar (so
// config.TaxMode reports as "string", core.Money as "decimal"), "list" for
// slices, "object" for structs/pointers-to-structs, and "bool"/"int" for
// the obvious cases.
func describeKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Struct:
		if t.Name() == "Money" {
			return "decimal"
		}
		if t.Name() == "SimDate" {
			return "date"
		}
		return "object"
	default:
		return "object"
	}
}
