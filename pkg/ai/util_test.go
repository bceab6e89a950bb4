package ai

import (
	"strings"
	"testing"
)

func TestUnmarshalFlexible_ObjectVariants(t *testing.T) {
	type extraction struct {
		Name string `json:"name"`
		Type string `json:"type,omitempty"`
	}

	tests := []struct {
		name  string
		input string
		want  extraction
	}{
		{
			name:  "valid json object",
			input: `{"name":"Bitcoin"}`,
			want:  extraction{Name: "Bitcoin"},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{name: 'Bitcoin'}`,
			want:  extraction{Name: "Bitcoin"},
		},
		{
			name:  "trailing comma",
			input: `{"name":"Bitcoin",}`,
			want:  extraction{Name: "Bitcoin"},
		},
		{
			name:  "missing endbracket",
			input: `{"name":"Bitcoin`,
			want:  extraction{Name: "Bitcoin"},
		},
		{
			name:  "stringified invalid json object",
			input: `"{name: 'Bitcoin'}"`,
			want:  extraction{Name: "Bitcoin"},
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"name\": \"Bitcoin\"\n}\n",
			want:  extraction{Name: "Bitcoin"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got extraction
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got.Name != tc.want.Name || got.Type != tc.want.Type {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnmarshalFlexible_NestedExtraction(t *testing.T) {
	type rel struct {
		From string `json:"from_entity"`
		To   string `json:"to_entity"`
		Type string `json:"type"`
	}
	type result struct {
		Relationships []rel `json:"relationships"`
	}

	input := `{relationships: [{from_entity: 'Proof-of-Work', to_entity: 'Double-Spending', type: 'prevents'},]}`
	var got result
	if err := UnmarshalFlexible(input, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if len(got.Relationships) != 1 || got.Relationships[0].Type != "prevents" {
		t.Fatalf("UnmarshalFlexible() got = %+v, want one prevents relationship", got)
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	type extraction struct {
		Name string `json:"name"`
	}

	var got extraction
	err := UnmarshalFlexible("not even close to json", &got)
	if err == nil {
		t.Fatal("UnmarshalFlexible() expected error for unrecoverable input")
	}
	if !strings.Contains(err.Error(), "repair") {
		t.Fatalf("UnmarshalFlexible() error = %v, want repair failure", err)
	}
}
