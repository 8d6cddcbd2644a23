package types

import (
	"fmt"
	"strings"
)

var byName = map[string]Type{
	"Any":   Any,
	"Int":   Integer,
	"Float": Float,
	"Bool":  Bool,
	"Char":  Char,
	"Null":  Null,
}

// Parse returns the type with the given canonical name, for example "Int",
// "Array[Char]" or "Union[Float,Int]".
func Parse(name string) (Type, error) {
	name = strings.TrimSpace(name)
	if t, ok := byName[name]; ok {
		return t, nil
	}
	if inner, ok := unwrap(name, "Array"); ok {
		elem, err := Parse(inner)
		if err != nil {
			return Null, err
		}
		return ArrayOf(elem), nil
	}
	if inner, ok := unwrap(name, "Union"); ok {
		parts, err := splitTopLevel(inner)
		if err != nil {
			return Null, fmt.Errorf("invalid type name %q: %w", name, err)
		}
		var members []Type
		for _, part := range parts {
			m, err := Parse(part)
			if err != nil {
				return Null, err
			}
			members = append(members, m)
		}
		return UnionOf(members...), nil
	}
	return Null, fmt.Errorf("unknown type name %q", name)
}

func unwrap(name, prefix string) (string, bool) {
	if !strings.HasPrefix(name, prefix+"[") || !strings.HasSuffix(name, "]") {
		return "", false
	}
	return name[len(prefix)+1 : len(name)-1], true
}

// splitTopLevel splits on commas that are not nested inside brackets.
func splitTopLevel(s string) ([]string, error) {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced brackets")
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets")
	}
	return append(parts, s[start:]), nil
}
