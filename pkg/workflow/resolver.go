package workflow

import (
	"strings"

	"golang.org/x/text/cases"
)

// normalizeKey folds case and replaces spaces with underscores so a label
// like "Num Steps" matches keys like "num_steps" or "NUM_STEPS".
func normalizeKey(name string) string {
	return strings.ReplaceAll(cases.Fold().String(name), " ", "_")
}

// buildLookup indexes every exposed field under its raw field name and,
// when present, its normalized label. Positions stay in form declaration
// order regardless of how updates arrive.
func buildLookup(fields []ExposedField) map[string][]int {
	lookup := make(map[string][]int)
	for i, field := range fields {
		lookup[field.FieldName] = append(lookup[field.FieldName], i)
		if field.Label != "" {
			key := normalizeKey(field.Label)
			lookup[key] = append(lookup[key], i)
		}
	}
	return lookup
}

// binding associates one update value with one exposed field instance.
type binding struct {
	field ExposedField
	key   string
	value interface{}
}

// resolve walks the update list left to right, binding each item to the
// first not-yet-consumed field matching its key. A field position, once
// bound, is never targeted again within the same call, so repeated keys
// bind successive fields in form declaration order.
func (p *Processor) resolve(updates []Update) ([]binding, error) {
	bindings := make([]binding, 0, len(updates))
	consumed := make(map[int]bool, len(updates))

	for i, item := range updates {
		if len(item) != 1 {
			return nil, &MalformedUpdateError{Index: i, Keys: len(item)}
		}
		var key string
		var value interface{}
		for k, v := range item {
			key, value = k, v
		}

		positions, ok := p.lookup[key]
		if !ok {
			positions, ok = p.lookup[normalizeKey(key)]
		}
		if !ok {
			return nil, &UnknownFieldError{Key: key, Index: i}
		}

		target := -1
		for _, pos := range positions {
			if !consumed[pos] {
				target = pos
				break
			}
		}
		if target < 0 {
			return nil, &ExhaustedFieldError{Key: key, Index: i, Matches: len(positions)}
		}
		consumed[target] = true
		bindings = append(bindings, binding{field: p.fields[target], key: key, value: value})
	}
	return bindings, nil
}
