package contract

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Type is a JSON value type in a response schema.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
)

// Schema is a provider-neutral description of a JSON document. The same tree
// constrains the model response, documents the shape in the prompt and
// validates what comes back.
type Schema struct {
	Type    Type
	Fields  []Field // ordered object properties
	Items   *Schema
	Enum    []string
	Minimum *float64
	Maximum *float64
}

// Field is one named property of an object schema.
type Field struct {
	Name     string
	Schema   *Schema
	Required bool
}

// Required lists the names of the required fields in declaration order.
func (s *Schema) Required() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// Violation is one mismatch between a document and a schema.
type Violation struct {
	Path    string
	Problem string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Problem
	}
	return v.Path + ": " + v.Problem
}

// Check walks a document decoded by encoding/json into interface values and
// reports every violation. Unknown properties are ignored.
func (s *Schema) Check(doc any) []Violation {
	var out []Violation
	s.check("", doc, &out)
	return out
}

func (s *Schema) check(path string, v any, out *[]Violation) {
	add := func(format string, args ...any) {
		*out = append(*out, Violation{Path: path, Problem: fmt.Sprintf(format, args...)})
	}
	if v == nil {
		add("expected %s, got null", s.Type)
		return
	}

	switch s.Type {
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			add("expected object, got %s", jsonKind(v))
			return
		}
		for _, f := range s.Fields {
			child, present := obj[f.Name]
			// An optional field set to null counts as absent.
			if !present || (child == nil && !f.Required) {
				if f.Required {
					*out = append(*out, Violation{Path: join(path, f.Name), Problem: "required field is missing"})
				}
				continue
			}
			f.Schema.check(join(path, f.Name), child, out)
		}
	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			add("expected array, got %s", jsonKind(v))
			return
		}
		for i, item := range arr {
			s.Items.check(fmt.Sprintf("%s[%d]", path, i), item, out)
		}
	case TypeString:
		str, ok := v.(string)
		if !ok {
			add("expected string, got %s", jsonKind(v))
			return
		}
		if len(s.Enum) > 0 && !slices.Contains(s.Enum, str) {
			add("value %q is not one of %s", str, strings.Join(s.Enum, ", "))
		}
	case TypeNumber, TypeInteger:
		n, ok := v.(float64)
		if !ok {
			add("expected %s, got %s", s.Type, jsonKind(v))
			return
		}
		if s.Type == TypeInteger && n != math.Trunc(n) {
			add("value %v is not an integer", n)
			return
		}
		if s.Minimum != nil && n < *s.Minimum {
			add("value %v is below minimum %v", n, *s.Minimum)
		}
		if s.Maximum != nil && n > *s.Maximum {
			add("value %v is above maximum %v", n, *s.Maximum)
		}
	}
}

// Skeleton renders the schema as an indented JSON-like outline for prompts.
func (s *Schema) Skeleton() string {
	var b strings.Builder
	s.skeleton(&b, 0)
	return b.String()
}

func (s *Schema) skeleton(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	switch s.Type {
	case TypeObject:
		b.WriteString("{\n")
		for i, f := range s.Fields {
			b.WriteString(indent + "  \"" + f.Name + "\": ")
			f.Schema.skeleton(b, depth+1)
			if i < len(s.Fields)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(indent + "}")
	case TypeArray:
		b.WriteString("[")
		s.Items.skeleton(b, depth)
		b.WriteString("]")
	case TypeString:
		if len(s.Enum) > 0 {
			quoted := make([]string, len(s.Enum))
			for i, e := range s.Enum {
				quoted[i] = "\"" + e + "\""
			}
			b.WriteString(strings.Join(quoted, " | "))
			return
		}
		b.WriteString("\"...\"")
	default:
		b.WriteString(string(s.Type))
		if s.Minimum != nil && s.Maximum != nil {
			fmt.Fprintf(b, " (%v-%v)", *s.Minimum, *s.Maximum)
		}
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

