package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// ConfString gets a required string parameter from conf.
func ConfString(conf map[string]interface{}, key string) (string, error) {
	s, ok := conf[key].(string)
	if !ok {
		return "", fmt.Errorf(`missing "%s" parameter`, key)
	}
	return s, nil
}

// ConfInt gets an integer parameter from conf,
// or def if it is absent.
// Config decoders differ in how they represent numbers,
// so int, int64, float64, and json.Number are all accepted.
func ConfInt(conf map[string]interface{}, key string, def int) (int, error) {
	v, ok := conf[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf(`"%s" parameter %v is not an integer`, key, n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, errors.Wrapf(err, `parsing "%s" parameter`, key)
		}
		return int(i), nil
	}
	return 0, fmt.Errorf(`"%s" parameter has type %T, want a number`, key, v)
}

// ConfBool gets a boolean parameter from conf, or false if it is absent.
func ConfBool(conf map[string]interface{}, key string) bool {
	b, _ := conf[key].(bool)
	return b
}

// CreateNested creates a backend from a nested config map,
// which names its own "type".
func CreateNested(ctx context.Context, nested map[string]interface{}) (Backend, error) {
	typ, ok := nested["type"].(string)
	if !ok {
		return nil, errors.New(`nested config missing "type"`)
	}
	b, err := Create(ctx, typ, nested)
	return b, errors.Wrapf(err, "creating nested %s store", typ)
}

// ConfNested creates the backend described by the nested config under key.
func ConfNested(ctx context.Context, conf map[string]interface{}, key string) (Backend, error) {
	nested, ok := conf[key].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf(`missing "%s" parameter`, key)
	}
	return CreateNested(ctx, nested)
}

// ConfNestedList creates the backends described by a list of nested configs under key.
// An absent key yields no backends.
func ConfNestedList(ctx context.Context, conf map[string]interface{}, key string) ([]Backend, error) {
	var maps []map[string]interface{}
	switch v := conf[key].(type) {
	case nil:
		return nil, nil
	case []map[string]interface{}:
		maps = v
	case []interface{}:
		for i, item := range v {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf(`"%s" item %d has type %T, want a map`, key, i, item)
			}
			maps = append(maps, m)
		}
	default:
		return nil, fmt.Errorf(`"%s" parameter has type %T, want a list`, key, v)
	}

	out := make([]Backend, 0, len(maps))
	for i, m := range maps {
		b, err := CreateNested(ctx, m)
		if err != nil {
			return nil, errors.Wrapf(err, `"%s" item %d`, key, i)
		}
		out = append(out, b)
	}
	return out, nil
}
