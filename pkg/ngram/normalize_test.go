package ngram

import "testing"

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "already clean", in: "hello world", want: "hello world"},
		{name: "trims", in: "  hello  ", want: "hello"},
		{name: "collapses runs", in: "a \t  b", want: "a b"},
		{name: "line breaks", in: "one\ntwo\r\nthree\r", want: "one two three"},
		{name: "only whitespace", in: " \n\t ", want: ""},
		{name: "composes", in: "e\u0301te\u0301", want: "\u00e9t\u00e9"},
		{name: "ideographic space", in: "猫は\u3000\u3000座った", want: "猫は 座った"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
			if again := Normalize(got); again != got {
				t.Errorf("Normalize is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{in: "the ", want: "the "},
		{in: "the\t\t", want: "the "},
		{in: "  the", want: "the"},
		{in: "the", want: "the"},
		{in: "   ", want: ""},
		{in: "", want: ""},
		{in: "a\nb\n", want: "a b "},
	}

	for _, tc := range testCases {
		got := NormalizePrefix(tc.in)
		if got != tc.want {
			t.Errorf("NormalizePrefix(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if again := NormalizePrefix(got); again != got {
			t.Errorf("NormalizePrefix is not idempotent: %q -> %q", got, again)
		}
	}
}
