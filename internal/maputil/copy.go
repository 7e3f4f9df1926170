// Package maputil snapshots decoded documents so a filtering pass can run
// on a copy while the original stays intact.
package maputil

// DeepCopy returns v with every mapping and sequence duplicated. Scalars are
// shared since decoded scalars are immutable values.
func DeepCopy(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return DeepCopyMap(val)
	case []interface{}:
		return DeepCopySlice(val)
	default:
		return v
	}
}

// DeepCopyMap performs a deep copy of a mapping. A nil map stays nil.
func DeepCopyMap(src map[string]interface{}) map[string]interface{} {
	if src == nil {
		return nil
	}

	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = DeepCopy(v)
	}

	return dst
}

// DeepCopySlice performs a deep copy of a sequence. A nil slice stays nil,
// an empty one stays empty so it still encodes as [].
func DeepCopySlice(src []interface{}) []interface{} {
	if src == nil {
		return nil
	}

	dst := make([]interface{}, len(src))
	for i, v := range src {
		dst[i] = DeepCopy(v)
	}

	return dst
}
