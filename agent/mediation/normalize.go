package mediation

import "strings"

// lowercaseValues folds every string value in args to lowercase, recursing
// through nested mappings and lists. Keys and non-string values are left
// alone. Running after coercion means typed record parameters are already
// out of reach, which is intended: normalization targets the free-form
// identifiers and search terms the model types by hand.
func lowercaseValues(args map[string]any) {
	for key, value := range args {
		args[key] = lowercaseValue(value)
	}
}

func lowercaseValue(value any) any {
	switch v := value.(type) {
	case string:
		return strings.ToLower(v)
	case map[string]any:
		lowercaseValues(v)
		return v
	case []any:
		for i, item := range v {
			v[i] = lowercaseValue(item)
		}
		return v
	default:
		return value
	}
}
