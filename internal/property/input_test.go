package property

import (
	"reflect"
	"testing"
)

func TestParseInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		text     string
		typ      Type
		original any
		want     any
		wantErr  bool
	}{
		{name: "date in prose", text: "March 5, 2024", typ: Date, want: "2024-03-05"},
		{name: "date slashes", text: "2024/03/05", typ: Date, want: "2024-03-05"},
		{name: "datetime", text: "2024-03-05 14:30", typ: DateTime, want: "2024-03-05T14:30:00"},
		{name: "bad date", text: "someday", typ: Date, wantErr: true},
		{name: "number", text: "42", typ: Number, want: float64(42)},
		{name: "bad number", text: "lots", typ: Number, wantErr: true},
		{name: "not a number", text: "NaN", typ: Number, wantErr: true},
		{name: "infinite number", text: "Infinity", typ: Number, wantErr: true},
		{name: "empty clears", text: "", typ: Date, original: "2024-03-05", want: nil},
		{name: "empty list stays a list", text: "", typ: Tags, original: []any{"a"}, want: []any{}},
		{name: "tags", text: "a, b", typ: Tags, want: []any{"a", "b"}},
		{name: "text", text: "hello", typ: Text, want: "hello"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseInput(tc.text, tc.typ, tc.original)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %#v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseInput returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseInput(%q) = %#v, want %#v", tc.text, got, tc.want)
			}
		})
	}
}
