// Package binder maps parsed flags onto typed configuration structs through
// binding tables declared once per configuration type.
package binder

import (
	"reflect"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/opencode-ai/runhost/internal/args"
)

// Field binds one flag name to a field of the configuration type C.
type Field[C any] struct {
	name        string
	typeName    string
	description string
	required    bool
	flag        bool
	set         func(cfg *C, raw string) error
}

// Require marks the field as mandatory.
func (f Field[C]) Require() Field[C] {
	f.required = true
	return f
}

// Describe sets the help text shown by Table.Usage.
func (f Field[C]) Describe(text string) Field[C] {
	f.description = text
	return f
}

func (f Field[C]) Name() string     { return f.name }
func (f Field[C]) Type() string     { return f.typeName }
func (f Field[C]) IsRequired() bool { return f.required }

// Value declares a scalar field converted by parse. A nil parse makes every
// value for the field unconvertible.
func Value[C, V any](name string, ptr func(*C) *V, parse Parser[V]) Field[C] {
	f := Field[C]{name: name, typeName: typeName[V]()}
	if parse != nil {
		f.set = func(cfg *C, raw string) error {
			v, err := parse(raw)
			if err != nil {
				return err
			}
			*ptr(cfg) = v
			return nil
		}
	}
	return f
}

// List declares a slice field. The raw value is split on commas and every
// element is converted with parse, preserving order. An empty value binds an
// empty slice.
func List[C, E any](name string, ptr func(*C) *[]E, parse Parser[E]) Field[C] {
	f := Field[C]{name: name, typeName: typeName[[]E]()}
	if parse != nil {
		f.set = func(cfg *C, raw string) error {
			if strings.TrimSpace(raw) == "" {
				*ptr(cfg) = []E{}
				return nil
			}
			parts := strings.Split(raw, ",")
			out := make([]E, 0, len(parts))
			for _, part := range parts {
				v, err := parse(strings.TrimSpace(part))
				if err != nil {
					return err
				}
				out = append(out, v)
			}
			*ptr(cfg) = out
			return nil
		}
	}
	return f
}

// String declares a field that takes the raw value as is.
func String[C any](name string, ptr func(*C) *string) Field[C] {
	return Value(name, ptr, ParseString)
}

// Bool declares a flag field: its presence without a value sets it to true.
func Bool[C any](name string, ptr func(*C) *bool) Field[C] {
	f := Value(name, ptr, ParseBool)
	f.flag = true
	return f
}

// Int declares a base 10 integer field.
func Int[C any](name string, ptr func(*C) *int) Field[C] {
	return Value(name, ptr, ParseInt)
}

// Int64 declares a base 10 64-bit integer field.
func Int64[C any](name string, ptr func(*C) *int64) Field[C] {
	return Value(name, ptr, ParseInt64)
}

// Uint declares a non-negative integer field.
func Uint[C any](name string, ptr func(*C) *uint) Field[C] {
	return Value(name, ptr, ParseUint)
}

// Float declares a floating point field.
func Float[C any](name string, ptr func(*C) *float64) Field[C] {
	return Value(name, ptr, ParseFloat)
}

// Duration declares a field holding a Go duration such as "30s".
func Duration[C any](name string, ptr func(*C) *time.Duration) Field[C] {
	return Value(name, ptr, ParseDuration)
}

// Path declares a filesystem path field, cleaned and with "~/" expanded.
func Path[C any](name string, ptr func(*C) *string) Field[C] {
	f := Value(name, ptr, ParsePath)
	f.typeName = "path"
	return f
}

// Strings declares a comma-separated list of strings.
func Strings[C any](name string, ptr func(*C) *[]string) Field[C] {
	return List(name, ptr, ParseString)
}

// Ints declares a comma-separated list of base 10 integers.
func Ints[C any](name string, ptr func(*C) *[]int) Field[C] {
	return List(name, ptr, ParseInt)
}

// Table is the static binding table of a configuration type.
type Table[C any] struct {
	fields *orderedmap.OrderedMap[string, Field[C]]
}

// NewTable builds a table from fields. Field names compare case-insensitively;
// a later field with the same name replaces an earlier one.
func NewTable[C any](fields ...Field[C]) *Table[C] {
	t := &Table[C]{fields: orderedmap.New[string, Field[C]]()}
	for _, f := range fields {
		t.fields.Set(strings.ToLower(f.name), f)
	}
	return t
}

// Lookup finds a field by case-insensitive name.
func (t *Table[C]) Lookup(name string) (Field[C], bool) {
	return t.fields.Get(strings.ToLower(name))
}

// Fields returns the fields in declaration order.
func (t *Table[C]) Fields() []Field[C] {
	out := make([]Field[C], 0, t.fields.Len())
	for pair := t.fields.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Bind applies dict to cfg.
//
// Required fields are checked over the whole table before anything is set,
// so a MissingRequiredError leaves cfg untouched. After that, entries are
// applied in dictionary order and a failure leaves earlier entries applied.
func (t *Table[C]) Bind(cfg *C, dict *args.Dictionary) error {
	for pair := t.fields.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.required && !dict.Has(pair.Value.name) {
			return &MissingRequiredError{Field: pair.Value.name}
		}
	}

	return dict.Each(func(key, value string) error {
		f, ok := t.Lookup(key)
		if !ok {
			return &UnknownArgumentError{Key: key}
		}
		return f.apply(cfg, value)
	})
}

func (f Field[C]) apply(cfg *C, raw string) error {
	if f.flag && raw == "" {
		raw = "true"
	}
	if f.set == nil {
		return &UnconvertibleValueError{Field: f.name, Type: f.typeName, Value: raw}
	}
	if err := f.set(cfg, raw); err != nil {
		return &UnconvertibleValueError{Field: f.name, Type: f.typeName, Value: raw, Err: err}
	}
	return nil
}

func typeName[V any]() string {
	return reflect.TypeOf((*V)(nil)).Elem().String()
}
