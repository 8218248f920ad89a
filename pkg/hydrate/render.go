package hydrate

import (
	"fmt"

	"github.com/aymerick/raymond"
)

// Hydrator renders Handlebars templates. Helpers are registered on each parsed
// template rather than globally, so a Hydrator keeps no engine state between
// renders and is safe for concurrent use.
type Hydrator struct {
	helpers map[string]any
}

// NewHydrator returns a Hydrator with the built-in helper set.
func NewHydrator() *Hydrator {
	return &Hydrator{helpers: helperMap()}
}

// Render renders source against c. Parse and execution failures are wrapped
// in ErrRender.
func (h *Hydrator) Render(source string, c Context) (string, error) {
	tpl, err := raymond.Parse(source)
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse template: %v", ErrRender, err)
	}
	tpl.RegisterHelpers(h.helpers)

	data := c.Data
	if data == nil {
		data = map[string]any{}
	}

	out, err := tpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("%w: failed to execute template: %v", ErrRender, err)
	}
	return out, nil
}
