package hooks

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/joeydtaylor/steeze-hooks/pkg/codec"
)

// DeepClone returns a structurally independent copy of v by encoding it with
// c and decoding into a fresh value. Zero values and scalars come back as is.
// Cyclic values and codec panics fail with ErrClone.
func DeepClone[P any](c codec.Codec, v P) (P, error) {
	rv := reflect.ValueOf(&v).Elem()
	if !needsClone(rv) {
		return v, nil
	}
	if c == nil {
		c = codec.JSON
	}
	if path, ok := findCycle(rv, structTag(c)); ok {
		return v, fmt.Errorf("%w: cycle through %s", ErrClone, path)
	}
	out, err := roundTrip(c, v)
	if err != nil {
		return v, err
	}
	return out, nil
}

func roundTrip[P any](c codec.Codec, v P) (out P, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrClone, c.Name(), r)
		}
	}()
	data, err := c.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("%w: %s encode: %w", ErrClone, c.Name(), err)
	}
	if err := c.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%w: %w", ErrClone, err)
	}
	return out, nil
}

func needsClone(rv reflect.Value) bool {
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	if rv.IsZero() {
		return false
	}
	return !scalar(rv.Kind())
}

func scalar(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// structTag is the tag key the codec reads field names and "-" from.
func structTag(c codec.Codec) string {
	switch c.Name() {
	case codec.Msgpack.Name():
		return "msgpack"
	case codec.YAML.Name():
		return "yaml"
	default:
		return "json"
	}
}

type visit struct {
	ptr uintptr
	typ reflect.Type
}

// cycleFinder walks what a codec would encode: pointers, maps, slices,
// arrays, interfaces and exported struct fields not tagged "-".
type cycleFinder struct {
	tag    string
	onPath map[visit]struct{}
	path   []string
}

func findCycle(rv reflect.Value, tag string) (string, bool) {
	f := &cycleFinder{tag: tag, onPath: map[visit]struct{}{}}
	if f.walk(rv) {
		var b strings.Builder
		b.WriteString("$")
		for i := len(f.path) - 1; i >= 0; i-- {
			b.WriteString(f.path[i])
		}
		return b.String(), true
	}
	return "", false
}

func (f *cycleFinder) walk(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return false
		}
		return f.walk(v.Elem())
	case reflect.Ptr, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return false
		}
		if v.Kind() == reflect.Slice && scalar(v.Type().Elem().Kind()) {
			return false
		}
		k := visit{ptr: v.Pointer(), typ: v.Type()}
		if _, seen := f.onPath[k]; seen {
			return true
		}
		f.onPath[k] = struct{}{}
		defer delete(f.onPath, k)
		return f.children(v)
	case reflect.Array, reflect.Struct:
		return f.children(v)
	}
	return false
}

func (f *cycleFinder) children(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr:
		return f.walk(v.Elem())
	case reflect.Map:
		it := v.MapRange()
		for it.Next() {
			if f.walk(it.Value()) {
				return f.unwind(fmt.Sprintf("[%v]", it.Key()))
			}
		}
	case reflect.Slice, reflect.Array:
		if scalar(v.Type().Elem().Kind()) {
			return false
		}
		for i := 0; i < v.Len(); i++ {
			if f.walk(v.Index(i)) {
				return f.unwind(fmt.Sprintf("[%d]", i))
			}
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() && !sf.Anonymous {
				continue
			}
			if name, _, _ := strings.Cut(sf.Tag.Get(f.tag), ","); name == "-" {
				continue
			}
			if f.walk(v.Field(i)) {
				return f.unwind("." + sf.Name)
			}
		}
	}
	return false
}

// unwind records seg while a found cycle returns up the walk, innermost first.
func (f *cycleFinder) unwind(seg string) bool {
	f.path = append(f.path, seg)
	return true
}

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }
