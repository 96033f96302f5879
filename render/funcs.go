// Package render provides the template functions available to pages and the
// include analysis used to validate a flattened template namespace.
package render

import (
	"fmt"
	"html/template"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// DefaultFuncMap returns a fresh map of the helpers every template gets.
// The engine adds "include" on top of these.
func DefaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"dict":     dict,
		"list":     list,
		"default":  defaultValue,
		"coalesce": coalesce,
		"ternary":  ternary,
		"isEmpty":  isEmpty,

		"lower":     strings.ToLower,
		"upper":     strings.ToUpper,
		"title":     toTitle,
		"trim":      strings.TrimSpace,
		"replace":   strings.ReplaceAll,
		"split":     strings.Split,
		"join":      strings.Join,
		"contains":  strings.Contains,
		"hasPrefix": strings.HasPrefix,
		"hasSuffix": strings.HasSuffix,
		"snake":     toSnakeCase,
		"camel":     toCamelCase,
		"kebab":     toKebabCase,

		"uuid": generateUUID,
	}
}

// dict builds a props map from alternating keys and values:
// {{ include "Card" (dict "title" .title "count" 3) }}
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments (%d)", len(pairs))
	}

	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key at position %d is %T, not string", i, pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

func list(values ...any) []any {
	return values
}

func defaultValue(def any, given any) any {
	if given == nil {
		return def
	}

	if s, ok := given.(string); ok && s == "" {
		return def
	}

	return given
}

func coalesce(values ...any) any {
	for _, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		return v
	}
	return nil
}

func ternary(condition bool, trueVal, falseVal any) any {
	if condition {
		return trueVal
	}
	return falseVal
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

func generateUUID() string {
	return uuid.New().String()
}
