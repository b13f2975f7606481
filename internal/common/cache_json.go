package common

import (
	"encoding/json"
	"fmt"
	"time"
)

// GetOrSetJSON caches the JSON encoding of load's result under key and
// decodes hits back into T. It works the same against both cache backends.
func GetOrSetJSON[T any](c CacheInterface, key string, ttl time.Duration, load func() (T, error)) (T, bool, error) {
	var out T
	hit := true

	raw, err := c.GetOrSet(key, ttl, func() (any, error) {
		hit = false
		v, err := load()
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, false, err
	}

	data, ok := raw.([]byte)
	if !ok {
		return out, false, fmt.Errorf("cache entry %s has unexpected type %T", key, raw)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return out, hit, nil
}
