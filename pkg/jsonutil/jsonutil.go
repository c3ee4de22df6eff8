package jsonutil

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Clean normalizes a value into JSON-primitive shapes: numbers, booleans and
// strings pass through, time values become RFC 3339 strings, byte slices
// become base64, errors and Stringers become their message, and maps, slices
// and structs are cleaned recursively. Anything else falls back to its fmt
// representation.
//
// The result marshals cleanly with encoding/json regardless of what the
// input mixed in, which is what log payloads and ad hoc dumps need.
func Clean(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	// A typed-nil pointer still matches the error and Stringer cases below;
	// calling the method there would dereference nil.
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}

	switch t := v.(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return t
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case time.Duration:
		return t.String()
	case []byte:
		return base64.StdEncoding.EncodeToString(t)
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Clean(rv.Elem().Interface())

	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Clean(rv.Index(i).Interface())
		}
		return out

	case reflect.Map:
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[keyString(iter.Key().Interface())] = Clean(iter.Value().Interface())
		}
		return out

	case reflect.Struct:
		return cleanStruct(rv)

	default:
		return fmt.Sprintf("%v", v)
	}
}

// cleanStruct flattens exported struct fields into a map, honoring json
// tag names and skipping fields tagged "-".
func cleanStruct(rv reflect.Value) map[string]interface{} {
	rt := rv.Type()
	out := make(map[string]interface{}, rt.NumField())

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}

		out[name] = Clean(rv.Field(i).Interface())
	}
	return out
}

func keyString(k interface{}) string {
	switch t := Clean(k).(type) {
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Marshal is json.Marshal over the cleaned value.
func Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(Clean(v))
}

// MarshalIndent is json.MarshalIndent over the cleaned value.
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(Clean(v), prefix, indent)
}

// slugAllowed are the characters kept verbatim by Slug. Everything outside
// this set is invalid somewhere (Windows file names being the strictest).
const slugAllowed = "-_.() abcdefghijklmnopqrstuvwxyz0123456789"

// Slug converts a name into a file name safe on every supported platform,
// replacing disallowed characters with underscores. Letter case is kept.
func Slug(name string) string {
	return SlugReplace(name, '_')
}

// SlugReplace is Slug with a custom replacement character.
func SlugReplace(name string, rep rune) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(slugAllowed, toLower(r)) {
			return r
		}
		return rep
	}, name)
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
