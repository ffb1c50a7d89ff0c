package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go/aws/awserr"
)

// ErrMissingProperty is returned when a required resource property is absent.
var ErrMissingProperty = errors.New("missing property")

// CloudFormation delivers every scalar property as a string.
func stringProp(props map[string]interface{}, key string) (string, error) {
	v, ok := props[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingProperty, key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("property %s: expected a non-empty string, got %T", key, v)
	}
	return s, nil
}

func stringListProp(props map[string]interface{}, key string) ([]string, error) {
	v, ok := props[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingProperty, key)
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []interface{}:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("property %s[%d]: expected a string, got %T", key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("property %s: expected a list, got %T", key, v)
	}
}

func boolProp(props map[string]interface{}, key string) (bool, error) {
	switch v := props[key].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("property %s: %w", key, err)
		}
		return b, nil
	default:
		return false, fmt.Errorf("property %s: expected a boolean, got %T", key, v)
	}
}

// tagsProp reads a list of {Key, Value} maps.
func tagsProp(props map[string]interface{}, key string) (map[string]string, error) {
	list, ok := props[key].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingProperty, key)
	}
	tags := make(map[string]string, len(list))
	for i, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("property %s[%d]: expected a Key/Value map, got %T", key, i, item)
		}
		k, _ := m["Key"].(string)
		if k == "" {
			return nil, fmt.Errorf("property %s[%d]: tag has no Key", key, i)
		}
		v, _ := m["Value"].(string)
		tags[k] = v
	}
	return tags, nil
}

// hasErrorCode reports whether err is an AWS API error with one of codes.
func hasErrorCode(err error, codes ...string) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	for _, code := range codes {
		if aerr.Code() == code {
			return true
		}
	}
	return false
}
