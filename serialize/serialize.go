// Package serialize converts handler results into plain trees of maps,
// slices and scalars and writes them as JSON result artifacts.
//
// Set-like containers (maps whose element type is struct{}) are rendered as
// sorted lists, so the same result always produces the same file. Struct
// fields use their json tag name, or their name in snake_case.
package serialize

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"unicode"
)

// ToValue converts v to a tree of map[string]any, []any, []string and
// scalars. Map keys are kept as they are.
func ToValue(v any) any {
	if v == nil {
		return nil
	}
	return convert(reflect.ValueOf(v))
}

// WriteJSONFile writes v as indented JSON to path. A relative path is
// resolved against cwd. Missing parent directories are created.
func WriteJSONFile(path, cwd string, v any) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	data, err := json.MarshalIndent(ToValue(v), "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func convert(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return convert(v.Elem())
	case reflect.Struct:
		return structToMap(v)
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.String {
			out := make([]string, v.Len())
			for i := range out {
				out[i] = v.Index(i).String()
			}
			return out
		}
		out := make([]any, v.Len())
		for i := range out {
			out[i] = convert(v.Index(i))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		if isSet(v.Type()) {
			return sortedKeys(v)
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[keyString(iter.Key())] = convert(iter.Value())
		}
		return out
	default:
		return v.Interface()
	}
}

func structToMap(v reflect.Value) map[string]any {
	out := make(map[string]any)
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		key, omitEmpty, skip := fieldKey(field)
		if skip {
			continue
		}
		value := v.Field(i)
		if omitEmpty && isEmpty(value) {
			continue
		}
		out[key] = convert(value)
	}
	return out
}

// fieldKey honors `json:"name,omitempty"` and `json:"-"` tags.
func fieldKey(field reflect.StructField) (key string, omitEmpty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, rest, _ := strings.Cut(tag, ",")
	omitEmpty = strings.Contains(rest, "omitempty")
	if name == "" {
		name = snakeCase(field.Name)
	}
	return name, omitEmpty, false
}

// isSet reports whether t is a map used as a set (map[K]struct{}).
func isSet(t reflect.Type) bool {
	e := t.Elem()
	return e.Kind() == reflect.Struct && e.NumField() == 0
}

func sortedKeys(v reflect.Value) []string {
	keys := make([]string, 0, v.Len())
	for _, k := range v.MapKeys() {
		keys = append(keys, keyString(k))
	}
	sort.Strings(keys)
	return keys
}

func keyString(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Array:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}

// snakeCase turns PackageID into package_id and APIKey into api_key.
func snakeCase(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	for i, r := range runes {
		if !unicode.IsUpper(r) {
			sb.WriteRune(r)
			continue
		}
		if i > 0 {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				sb.WriteByte('_')
			}
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}
