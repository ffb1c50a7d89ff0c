// Package serialize provides CloudFormation-specific serialization utilities.
package serialize

import (
	"encoding/json"
	"reflect"
	"regexp"
	"sort"
	"strings"
)

// PropertySource is implemented by resources whose properties are not known
// at compile time, such as custom resources.
type PropertySource interface {
	ResourceProperties() map[string]any
}

// Resource serializes a Go struct to CloudFormation resource properties.
// It handles:
// - json tag field names
// - Omitting nil/zero values
// - Nested structs
// - Intrinsic functions (anything implementing json.Marshaler)
func Resource(v any) (map[string]any, error) {
	if src, ok := v.(PropertySource); ok {
		return serializeMap(reflect.ValueOf(src.ResourceProperties()))
	}

	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return nil, nil
	}

	result := make(map[string]any)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)

		if !field.IsExported() {
			continue
		}

		name := getFieldName(field)
		if name == "-" {
			continue
		}

		if isZeroValue(fieldVal) {
			continue
		}

		serialized, err := serializeValue(fieldVal)
		if err != nil {
			return nil, err
		}

		if serialized != nil {
			result[name] = serialized
		}
	}

	return result, nil
}

// getFieldName returns the JSON field name for a struct field.
func getFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}

	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		return field.Name
	}
	return name
}

// isZeroValue returns true if the value is the zero value for its type.
// An interface holding false or 0 is not zero: the caller set it explicitly.
func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	case reflect.String:
		return v.String() == ""
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Struct:
		if v.CanInterface() {
			if zeroer, ok := v.Interface().(interface{ IsZero() bool }); ok {
				return zeroer.IsZero()
			}
		}
		return false
	default:
		return false
	}
}

// serializeValue converts a reflect.Value to a JSON-compatible value.
func serializeValue(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		return serializeValue(v.Elem())
	}

	if v.CanInterface() {
		if marshaler, ok := v.Interface().(json.Marshaler); ok {
			data, err := marshaler.MarshalJSON()
			if err != nil {
				return nil, err
			}
			var result any
			if err := json.Unmarshal(data, &result); err != nil {
				return nil, err
			}
			return result, nil
		}
	}

	switch v.Kind() {
	case reflect.Struct:
		return Resource(v.Interface())

	case reflect.Slice:
		if v.Len() == 0 {
			return nil, nil
		}
		result := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			elem, err := serializeValue(v.Index(i))
			if err != nil {
				return nil, err
			}
			result[i] = elem
		}
		return result, nil

	case reflect.Map:
		if v.Len() == 0 {
			return nil, nil
		}
		return serializeMap(v)

	case reflect.String:
		return v.String(), nil

	case reflect.Bool:
		return v.Bool(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), nil

	case reflect.Float32, reflect.Float64:
		return v.Float(), nil

	default:
		data, err := json.Marshal(v.Interface())
		if err != nil {
			return nil, err
		}
		var result any
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, err
		}
		return result, nil
	}
}

func serializeMap(v reflect.Value) (map[string]any, error) {
	result := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		val, err := serializeValue(iter.Value())
		if err != nil {
			return nil, err
		}
		if val == nil {
			continue
		}
		result[iter.Key().String()] = val
	}
	return result, nil
}

var subVariable = regexp.MustCompile(`\$\{([^!}][^}]*)\}`)

// References walks serialized properties and returns the logical IDs used
// through Ref, Fn::GetAtt and Fn::Sub, and separately those used through
// Fn::GetAtt. Pseudo parameters (AWS::*) are skipped. Both lists are sorted.
func References(props map[string]any) (refs []string, attrRefs []string) {
	all := make(map[string]bool)
	atts := make(map[string]bool)
	collectRefs(props, all, atts)
	return sortedKeys(all), sortedKeys(atts)
}

func collectRefs(value any, all, atts map[string]bool) {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 1 {
			if name, ok := v["Ref"].(string); ok {
				addRef(name, all)
				return
			}
			if args, ok := v["Fn::GetAtt"].([]any); ok && len(args) > 0 {
				if name, ok := args[0].(string); ok {
					addRef(name, all)
					addRef(name, atts)
				}
				return
			}
			if sub, ok := v["Fn::Sub"]; ok {
				collectSub(sub, all, atts)
				return
			}
		}
		for _, val := range v {
			collectRefs(val, all, atts)
		}
	case []any:
		for _, elem := range v {
			collectRefs(elem, all, atts)
		}
	}
}

func collectSub(sub any, all, atts map[string]bool) {
	var str string
	vars := map[string]bool{}
	switch s := sub.(type) {
	case string:
		str = s
	case []any:
		if len(s) > 0 {
			str, _ = s[0].(string)
		}
		if len(s) > 1 {
			if m, ok := s[1].(map[string]any); ok {
				for k, val := range m {
					vars[k] = true
					collectRefs(val, all, atts)
				}
			}
		}
	}
	for _, match := range subVariable.FindAllStringSubmatch(str, -1) {
		name := match[1]
		if vars[name] {
			continue
		}
		if idx := strings.Index(name, "."); idx > 0 {
			name = name[:idx]
			addRef(name, atts)
		}
		addRef(name, all)
	}
}

func addRef(name string, set map[string]bool) {
	if name == "" || strings.HasPrefix(name, "AWS::") {
		return
	}
	set[name] = true
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
