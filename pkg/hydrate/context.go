package hydrate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/CTAG07/hxql/pkg/graphql"
)

// Fetcher sends a GraphQL request and returns the data field of the response.
// *graphql.Client satisfies it.
type Fetcher interface {
	Do(ctx context.Context, endpoint string, req graphql.Request) (json.RawMessage, error)
}

// Source records where a Context came from.
type Source int

const (
	SourceNone Source = iota
	SourceGraphQL
	SourceProps
)

func (s Source) String() string {
	switch s {
	case SourceGraphQL:
		return "graphql"
	case SourceProps:
		return "props"
	default:
		return "none"
	}
}

// Context is the value a template is rendered against.
type Context struct {
	Data   any
	Source Source
}

// BuildContext produces the render context for p.
//
// When the GraphQL triple is complete and endpoint is set, the data field of
// the GraphQL response becomes the context and props are ignored. Otherwise a
// supplied props value becomes the context; it must be a JSON object. With
// neither, the context is empty (SourceNone).
func BuildContext(ctx context.Context, f Fetcher, endpoint string, p Params) (Context, error) {
	if p.WantsGraphQL() && endpoint != "" && f != nil {
		raw, err := f.Do(ctx, endpoint, graphql.Request{
			Query:         p.Query,
			OperationName: p.OperationName,
			Variables:     p.Variables,
		})
		if err != nil {
			return Context{}, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		var data any
		if err = json.Unmarshal(raw, &data); err != nil {
			return Context{}, fmt.Errorf("%w: failed to decode graphql data: %v", ErrUpstream, err)
		}
		return Context{Data: data, Source: SourceGraphQL}, nil
	}

	if p.HasProps {
		obj, ok := p.Props.(map[string]any)
		if !ok {
			return Context{}, fmt.Errorf("%w: props must be a JSON object", ErrInvalidRequest)
		}
		return Context{Data: obj, Source: SourceProps}, nil
	}

	return Context{}, nil
}
