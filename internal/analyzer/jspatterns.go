package analyzer

import "strings"

// EvaluateJSPatterns walks the deserialized global-state snapshot along
// each requested property chain and records what it found. String and
// number values are kept as-is; any other present value collapses to a
// boolean. Only truthy results are recorded, keyed by the pattern's
// index within its chain.
func EvaluateJSPatterns(snapshot map[string]any, patterns map[string]map[string][]string) map[string]map[string]map[int]any {
	js := make(map[string]map[string]map[int]any, len(patterns))

	for appName, chains := range patterns {
		js[appName] = make(map[string]map[int]any, len(chains))

		for chain, chainPatterns := range chains {
			js[appName][chain] = make(map[int]any)

			value := walkChain(snapshot, chain)
			value = normalize(value)

			if !truthy(value) {
				continue
			}
			for index := range chainPatterns {
				js[appName][chain][index] = value
			}
		}
	}

	return js
}

// walkChain resolves a dotted property chain against nested JSON maps.
// A missing or falsy intermediate stops the walk with nil, which
// mirrors how optional chaining over the page's window behaves.
func walkChain(snapshot map[string]any, chain string) any {
	var current any = snapshot
	for _, property := range strings.Split(chain, ".") {
		parent, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		next, ok := parent[property]
		if !ok || !truthy(next) {
			return nil
		}
		current = next
	}
	return current
}

// normalize keeps strings and numbers; everything else becomes its
// truthiness.
func normalize(value any) any {
	switch value.(type) {
	case string, float64, int:
		return value
	default:
		return truthy(value)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		// objects and arrays
		return true
	}
}
