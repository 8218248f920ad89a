package hydrate

import (
	"errors"
	"io"
	"log/slog"
	"net/url"
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestExtract_BodyTakesPrecedence(t *testing.T) {
	body := url.Values{
		KeyQuery: {"body-query"},
		KeyProps: {`{"from":"body"}`},
	}
	query := url.Values{
		KeyQuery:         {"query-query"},
		KeyOperationName: {"FromQuery"},
		KeyVariables:     {`{"id":7}`},
		KeyProps:         {`{"from":"query"}`},
	}

	p, err := Extract(body, query, false, discardLogger)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if p.Query != "body-query" {
		t.Errorf("query = %q, want body value", p.Query)
	}
	if p.OperationName != "FromQuery" || !p.HasOperationName {
		t.Errorf("operation_name should fall back to the query string, got %q", p.OperationName)
	}
	if !reflect.DeepEqual(p.Variables, map[string]any{"id": float64(7)}) {
		t.Errorf("variables = %#v", p.Variables)
	}
	if !reflect.DeepEqual(p.Props, map[string]any{"from": "body"}) {
		t.Errorf("props = %#v, want body value", p.Props)
	}
}

func TestExtract_EmptyValueIsPresent(t *testing.T) {
	p, err := Extract(url.Values{KeyQuery: {""}}, nil, false, discardLogger)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !p.HasQuery {
		t.Error("an empty query value should still count as supplied")
	}
}

func TestExtract_MalformedJSONIsAbsent(t *testing.T) {
	query := url.Values{
		KeyVariables: {`{"id":`},
		KeyProps:     {`not json`},
	}
	p, err := Extract(nil, query, false, discardLogger)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if p.HasVariables || p.Variables != nil {
		t.Errorf("malformed variables should be absent, got %#v", p.Variables)
	}
	if p.HasProps || p.Props != nil {
		t.Errorf("malformed props should be absent, got %#v", p.Props)
	}
}

func TestExtract_MalformedJSONStrict(t *testing.T) {
	for _, key := range []string{KeyVariables, KeyProps} {
		_, err := Extract(url.Values{key: {`{`}}, nil, true, discardLogger)
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("strict Extract with malformed %s: error = %v, want ErrInvalidRequest", key, err)
		}
	}
}

func TestExtract_JSONNull(t *testing.T) {
	p, err := Extract(url.Values{KeyVariables: {"null"}}, nil, false, discardLogger)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !p.HasVariables || p.Variables != nil {
		t.Errorf("null variables should be present with a nil value, got has=%v value=%#v", p.HasVariables, p.Variables)
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"none", Params{}, false},
		{"props only", Params{HasProps: true}, false},
		{"all three", Params{HasQuery: true, HasOperationName: true, HasVariables: true}, false},
		{"query only", Params{HasQuery: true}, true},
		{"operation only", Params{HasOperationName: true}, true},
		{"variables only", Params{HasVariables: true}, true},
		{"query and variables", Params{HasQuery: true, HasVariables: true}, true},
		{"missing variables", Params{HasQuery: true, HasOperationName: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestParams_AllOrNothingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		body, query := url.Values{}, url.Values{}
		var supplied int
		for _, key := range []string{KeyQuery, KeyOperationName, KeyVariables} {
			if !rapid.Bool().Draw(t, key) {
				continue
			}
			supplied++
			v := "{}"
			if key != KeyVariables {
				v = rapid.StringMatching(`[A-Za-z{} ]{0,20}`).Draw(t, key+"_value")
			}
			// Where a field arrives from must not matter.
			if rapid.Bool().Draw(t, key+"_in_body") {
				body.Set(key, v)
			} else {
				query.Set(key, v)
			}
		}

		p, err := Extract(body, query, false, discardLogger)
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		err = p.Validate()
		partial := supplied > 0 && supplied < 3
		if partial && !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("%d of 3 fields supplied, expected ErrInvalidRequest, got %v", supplied, err)
		}
		if !partial && err != nil {
			t.Fatalf("%d of 3 fields supplied, expected success, got %v", supplied, err)
		}
		if p.WantsGraphQL() != (supplied == 3) {
			t.Fatalf("WantsGraphQL() = %v with %d fields supplied", p.WantsGraphQL(), supplied)
		}
	})
}
