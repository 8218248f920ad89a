package hydrate

import (
	"encoding/json"
	"reflect"

	"github.com/aymerick/raymond"
	"github.com/spf13/cast"
)

// Template arguments arrive as whatever the context decoded to (JSON numbers
// are float64) or as Handlebars literals, so every numeric helper coerces its
// arguments to int first. Each helper ends with *raymond.Options so the
// engine rejects a call with the wrong number of arguments.

// add returns a + b.
func add(a, b any, _ *raymond.Options) int {
	return cast.ToInt(a) + cast.ToInt(b)
}

// sub returns a - b.
func sub(a, b any, _ *raymond.Options) int {
	return cast.ToInt(a) - cast.ToInt(b)
}

// mult returns a * b.
func mult(a, b any, _ *raymond.Options) int {
	return cast.ToInt(a) * cast.ToInt(b)
}

// div returns a / b (integer division). Returns 0 if b is 0.
func div(a, b any, _ *raymond.Options) int {
	d := cast.ToInt(b)
	if d == 0 {
		return 0
	}
	return cast.ToInt(a) / d
}

// mod returns a % b. Returns 0 if b is 0.
func mod(a, b any, _ *raymond.Options) int {
	d := cast.ToInt(b)
	if d == 0 {
		return 0
	}
	return cast.ToInt(a) % d
}

// inc returns i + 1.
func inc(i any, _ *raymond.Options) int {
	return cast.ToInt(i) + 1
}

// dec returns i - 1.
func dec(i any, _ *raymond.Options) int {
	return cast.ToInt(i) - 1
}

// eq reports whether a and b are equal, comparing as strings when the types
// differ so that 1 and "1" match.
func eq(a, b any, _ *raymond.Options) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	return cast.ToString(a) == cast.ToString(b)
}

// toJSON renders v as JSON. The output is not HTML-escaped again, but
// json.Marshal already escapes <, > and &.
func toJSON(v any, _ *raymond.Options) raymond.SafeString {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return raymond.SafeString(b)
}

// defaultValue returns val unless it is missing (nil) or the empty string, in
// which case it returns fallback. false and 0 are kept.
func defaultValue(val, fallback any, _ *raymond.Options) any {
	if val == nil {
		return fallback
	}
	if str, ok := val.(string); ok && str == "" {
		return fallback
	}
	return val
}

func helperMap() map[string]any {
	return map[string]any{
		"add":     add,
		"sub":     sub,
		"mult":    mult,
		"div":     div,
		"mod":     mod,
		"inc":     inc,
		"dec":     dec,
		"eq":      eq,
		"json":    toJSON,
		"default": defaultValue,
	}
}
