package query

import "testing"

func TestEscapeLike(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Test%Player_", `Test\%Player\_`},
		{`\%`, `\\\%`},
		{"plain", "plain"},
		{"", ""},
		{"a_b%c", `a\_b\%c`},
	}

	for _, tc := range cases {
		if got := EscapeLike(tc.in); got != tc.want {
			t.Errorf("EscapeLike(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
