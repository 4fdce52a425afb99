package tree

// Merge deep-merges override on top of base and returns the effective
// tree. Neither input is mutated. When override is empty the result is
// base itself, reference-equal; callers rely on that identity to
// detect "no overrides" cheaply. Otherwise the result is a fresh tree
// that shares no containers with either input.
//
// Maps present in both inputs merge recursively. For any other
// conflict, including arrays on either side, the override value wins
// wholesale. An explicit nil override is a value, not an absence, and
// replaces a non-nil default.
func Merge(base, override map[string]any) map[string]any {
	if len(override) == 0 {
		if base == nil {
			return map[string]any{}
		}
		return base
	}
	if base == nil {
		return Clone(override)
	}
	return mergeMaps(base, override)
}

func mergeMaps(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))

	for key, baseVal := range base {
		overVal, exists := override[key]
		if !exists {
			out[key] = cloneValue(baseVal)
			continue
		}

		baseMap, baseIsMap := baseVal.(map[string]any)
		overMap, overIsMap := overVal.(map[string]any)
		if baseIsMap && overIsMap {
			out[key] = mergeMaps(baseMap, overMap)
		} else {
			out[key] = cloneValue(overVal)
		}
	}

	for key, overVal := range override {
		if _, exists := base[key]; exists {
			continue
		}
		out[key] = cloneValue(overVal)
	}

	return out
}
