package hydrate

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/CTAG07/hxql/pkg/graphql"
)

// fakeFetcher records calls and replies with a fixed result.
type fakeFetcher struct {
	data     string
	err      error
	calls    int
	endpoint string
	last     graphql.Request
}

func (f *fakeFetcher) Do(_ context.Context, endpoint string, req graphql.Request) (json.RawMessage, error) {
	f.calls++
	f.endpoint = endpoint
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.data), nil
}

func graphqlParams() Params {
	return Params{
		Query:            "query Q { a }",
		HasQuery:         true,
		OperationName:    "Q",
		HasOperationName: true,
		Variables:        map[string]any{"id": "1"},
		HasVariables:     true,
	}
}

func TestBuildContext_GraphQL(t *testing.T) {
	f := &fakeFetcher{data: `{"a":1}`}
	c, err := BuildContext(context.Background(), f, "http://gql.test/graphql", graphqlParams())
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}
	if c.Source != SourceGraphQL {
		t.Errorf("source = %v, want graphql", c.Source)
	}
	if !reflect.DeepEqual(c.Data, map[string]any{"a": float64(1)}) {
		t.Errorf("data = %#v", c.Data)
	}
	if f.endpoint != "http://gql.test/graphql" {
		t.Errorf("endpoint = %q", f.endpoint)
	}
	if f.last.Query != "query Q { a }" || f.last.OperationName != "Q" {
		t.Errorf("unexpected request sent: %+v", f.last)
	}
}

func TestBuildContext_GraphQLWinsOverProps(t *testing.T) {
	p := graphqlParams()
	p.Props = map[string]any{"from": "props"}
	p.HasProps = true

	f := &fakeFetcher{data: `{"from":"graphql"}`}
	c, err := BuildContext(context.Background(), f, "http://gql.test", p)
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}
	if c.Source != SourceGraphQL || c.Data.(map[string]any)["from"] != "graphql" {
		t.Errorf("expected graphql context, got %+v", c)
	}
}

func TestBuildContext_NullDataStillWins(t *testing.T) {
	p := graphqlParams()
	p.Props = map[string]any{"from": "props"}
	p.HasProps = true

	c, err := BuildContext(context.Background(), &fakeFetcher{data: `null`}, "http://gql.test", p)
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}
	if c.Source != SourceGraphQL || c.Data != nil {
		t.Errorf("expected nil graphql context, got %+v", c)
	}
}

func TestBuildContext_NoEndpointUsesProps(t *testing.T) {
	p := graphqlParams()
	p.Props = map[string]any{"from": "props"}
	p.HasProps = true

	f := &fakeFetcher{data: `{}`}
	c, err := BuildContext(context.Background(), f, "", p)
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}
	if f.calls != 0 {
		t.Errorf("fetcher called %d times without an endpoint", f.calls)
	}
	if c.Source != SourceProps {
		t.Errorf("source = %v, want props", c.Source)
	}
}

func TestBuildContext_Props(t *testing.T) {
	tests := []struct {
		name    string
		props   any
		wantErr bool
	}{
		{"object", map[string]any{"a": float64(1)}, false},
		{"empty object", map[string]any{}, false},
		{"array", []any{float64(1), float64(2)}, true},
		{"string", "hello", true},
		{"number", float64(3), true},
		{"null", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := BuildContext(context.Background(), nil, "", Params{Props: tt.props, HasProps: true})
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Fatalf("expected ErrInvalidRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildContext failed: %v", err)
			}
			if c.Source != SourceProps || !reflect.DeepEqual(c.Data, tt.props) {
				t.Errorf("unexpected context %+v", c)
			}
		})
	}
}

func TestBuildContext_Empty(t *testing.T) {
	f := &fakeFetcher{}
	c, err := BuildContext(context.Background(), f, "http://gql.test", Params{})
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}
	if c.Source != SourceNone || c.Data != nil {
		t.Errorf("expected empty context, got %+v", c)
	}
	if f.calls != 0 {
		t.Errorf("fetcher should not be called, got %d calls", f.calls)
	}
}

func TestBuildContext_UpstreamFailure(t *testing.T) {
	tests := []struct {
		name string
		f    *fakeFetcher
	}{
		{"graphql errors", &fakeFetcher{err: &graphql.ResponseError{Errors: json.RawMessage(`[{"message":"x"}]`)}}},
		{"no data", &fakeFetcher{err: graphql.ErrNoData}},
		{"undecodable data", &fakeFetcher{data: `{`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := graphqlParams()
			p.Props = map[string]any{"fallback": true}
			p.HasProps = true
			_, err := BuildContext(context.Background(), tt.f, "http://gql.test", p)
			if !errors.Is(err, ErrUpstream) {
				t.Fatalf("expected ErrUpstream, got %v", err)
			}
		})
	}
}

func TestBuildContext_WrapsFetcherError(t *testing.T) {
	f := &fakeFetcher{err: graphql.ErrNoData}
	_, err := BuildContext(context.Background(), f, "http://gql.test", graphqlParams())
	if !errors.Is(err, graphql.ErrNoData) {
		t.Errorf("expected the fetcher error to stay inspectable, got %v", err)
	}
}
