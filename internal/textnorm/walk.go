package textnorm

// LeafFunc transforms one string leaf. key is the nearest enclosing object
// key, or "" at the root and inside top-level arrays.
type LeafFunc func(key, s string) string

// Walk returns a copy of a decoded JSON tree with fn applied to every string
// leaf. Maps and slices are rebuilt; other values are returned as is.
func Walk(node interface{}, fn LeafFunc) interface{} {
	return walk(node, "", fn, false)
}

// WalkDropEmpty is Walk, except that array elements fn turns into "" are
// removed instead of kept as empty leaves.
func WalkDropEmpty(node interface{}, fn LeafFunc) interface{} {
	return walk(node, "", fn, true)
}

func walk(node interface{}, key string, fn LeafFunc, drop bool) interface{} {
	switch t := node.(type) {
	case string:
		return fn(key, t)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, v := range t {
			out[k] = walk(v, k, fn, drop)
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, v := range t {
			w := walk(v, key, fn, drop)
			if str, ok := w.(string); ok && drop && str == "" {
				continue
			}
			out = append(out, w)
		}
		return out
	case []string:
		out := make([]string, 0, len(t))
		for _, v := range t {
			if str := fn(key, v); str != "" || !drop {
				out = append(out, str)
			}
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, v := range t {
			out[k] = fn(k, v)
		}
		return out
	default:
		return node
	}
}

// FixEncodingDeep applies FixEncoding to every string leaf of node.
func FixEncodingDeep(node interface{}) interface{} {
	return Walk(node, func(_ string, s string) string { return FixEncoding(s) })
}
