package cmd

import "testing"

func TestParseGlobals(t *testing.T) {
	tests := map[string]struct {
		args []string
		want Globals
	}{
		"none": {
			args: []string{"show"},
		},
		"long flags among subcommand flags": {
			args: []string{"card", "new", "x", "--column", "Todo", "--board", "work", "--log-level", "debug"},
			want: Globals{Board: "work", LogLevel: "debug"},
		},
		"shorthands": {
			args: []string{"-w", "personal", "-b", "reading", "boards", "list"},
			want: Globals{Workspace: "personal", Board: "reading"},
		},
		"equals form": {
			args: []string{"--board=work", "card", "delete", "-y"},
			want: Globals{Board: "work"},
		},
		"help is not an error": {
			args: []string{"--help", "-b", "work"},
			want: Globals{Board: "work"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ParseGlobals(tc.args); got != tc.want {
				t.Fatalf("ParseGlobals(%v) = %+v, want %+v", tc.args, got, tc.want)
			}
		})
	}
}
