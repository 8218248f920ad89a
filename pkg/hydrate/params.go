package hydrate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Request keys read from the body or the query string.
const (
	KeyQuery         = "query"
	KeyOperationName = "operation_name"
	KeyVariables     = "variables"
	KeyProps         = "props"
)

// Params holds the hydration fields extracted from one request. Each Has*
// flag records whether the field was supplied; a supplied JSON field may
// still decode to nil (the JSON literal null).
type Params struct {
	Query            string
	HasQuery         bool
	OperationName    string
	HasOperationName bool
	Variables        any
	HasVariables     bool
	Props            any
	HasProps         bool
}

// WantsGraphQL reports whether the full GraphQL triple was supplied.
func (p Params) WantsGraphQL() bool {
	return p.HasQuery && p.HasOperationName && p.HasVariables
}

// Validate enforces that the GraphQL triple is all-or-nothing.
func (p Params) Validate() error {
	if !p.HasQuery && !p.HasOperationName && !p.HasVariables {
		return nil
	}
	var missing []string
	if !p.HasQuery {
		missing = append(missing, KeyQuery)
	}
	if !p.HasOperationName {
		missing = append(missing, KeyOperationName)
	}
	if !p.HasVariables {
		missing = append(missing, KeyVariables)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: graphql request is missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	return nil
}

// lookup returns the first value of key from body, falling back to query.
func lookup(body, query url.Values, key string) (string, bool) {
	if v, ok := body[key]; ok && len(v) > 0 {
		return v[0], true
	}
	if v, ok := query[key]; ok && len(v) > 0 {
		return v[0], true
	}
	return "", false
}

// Extract reads the hydration fields from a request body and query string,
// preferring the body. variables and props are JSON-decoded. A field that
// fails to decode is logged and treated as absent, unless strict is set, in
// which case an ErrInvalidRequest is returned.
func Extract(body, query url.Values, strict bool, logger *slog.Logger) (Params, error) {
	var p Params
	p.Query, p.HasQuery = lookup(body, query, KeyQuery)
	p.OperationName, p.HasOperationName = lookup(body, query, KeyOperationName)

	for _, f := range []struct {
		key   string
		value *any
		has   *bool
	}{
		{KeyVariables, &p.Variables, &p.HasVariables},
		{KeyProps, &p.Props, &p.HasProps},
	} {
		raw, ok := lookup(body, query, f.key)
		if !ok {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			if strict {
				return Params{}, fmt.Errorf("%w: %s is not valid JSON: %v", ErrInvalidRequest, f.key, err)
			}
			logger.Warn("Ignoring field with malformed JSON", "field", f.key, "error", err)
			continue
		}
		*f.value = v
		*f.has = true
	}

	return p, nil
}
