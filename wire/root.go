package wire

import "sync"

// Extractor unwraps one named top level field of a decoded payload.
type Extractor func(v any) (any, error)

// ExtractRoot returns an Extractor for the named key. Without a name the key
// is inferred on the first successful call as the first key of the value,
// and that name is kept for every later call on the same Extractor.
func ExtractRoot(name ...string) Extractor {
	var (
		mu  sync.Mutex
		key string
	)
	if len(name) > 0 {
		key = name[0]
	}

	return func(v any) (any, error) {
		mu.Lock()
		k := key
		if k == "" {
			k = firstKey(v)
			key = k
		}
		mu.Unlock()

		if k == "" {
			return nil, &MissingRootError{}
		}
		switch t := v.(type) {
		case *Record:
			if out, ok := t.Get(k); ok {
				return out, nil
			}
		case map[string]any:
			if out, ok := t[k]; ok {
				return out, nil
			}
		}
		return nil, &MissingRootError{Key: k}
	}
}

// firstKey is the first inserted key of a Record, or the only key of a plain
// map. Plain maps with several keys have no defined first key.
func firstKey(v any) string {
	switch t := v.(type) {
	case *Record:
		if t.Len() > 0 {
			return t.keys[0]
		}
	case map[string]any:
		if len(t) == 1 {
			for k := range t {
				return k
			}
		}
	}
	return ""
}
