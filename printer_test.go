package stepscript

import (
	"strings"
	"testing"
)

func fmtExpr(t *testing.T, src string) string {
	t.Helper()
	return FormatValue(evalExpr(t, src))
}

func TestFormatScalars(t *testing.T) {
	cases := []struct{ src, want string }{
		{"null", "null"},
		{"true", "true"},
		{"42", "42"},
		{"3.5", "3.5"},
		{"2.0", "2.0"}, // whole floats keep the point
		{"1e20", "1e+20"},
		{`"a\"b"`, `"a\"b"`},
		{`"tab\there"`, `"tab\there"`},
	}
	for _, c := range cases {
		if got := fmtExpr(t, c.src); got != c.want {
			t.Fatalf("%s: want %q, got %q", c.src, c.want, got)
		}
	}
}

func TestFormatShortCollectionsInline(t *testing.T) {
	if got := fmtExpr(t, "[1, 2, 3]"); got != "[1, 2, 3]" {
		t.Fatalf("got %q", got)
	}
	if got := fmtExpr(t, "[]"); got != "[]" {
		t.Fatalf("got %q", got)
	}
	if got := fmtExpr(t, "{}"); got != "{}" {
		t.Fatalf("got %q", got)
	}
	// map keys print sorted
	if got := fmtExpr(t, "{b: 2, a: 1}"); got != "{ a: 1, b: 2 }" {
		t.Fatalf("got %q", got)
	}
	// non-identifier keys are quoted
	if got := fmtExpr(t, `{"a b": 1}`); got != `{ "a b": 1 }` {
		t.Fatalf("got %q", got)
	}
}

func TestFormatLongArrayBreaks(t *testing.T) {
	got := fmtExpr(t, "range(40)")
	if !strings.Contains(got, "\n") {
		t.Fatalf("want multi-line output, got %q", got)
	}
	lines := strings.Split(got, "\n")
	if lines[0] != "[" || lines[len(lines)-1] != "]" {
		t.Fatalf("bad brackets: %q", got)
	}
	if lines[1] != "  0," {
		t.Fatalf("bad first element line: %q", lines[1])
	}
}

func TestFormatNestedIndentation(t *testing.T) {
	old := MaxInlineWidth
	MaxInlineWidth = 10
	defer func() { MaxInlineWidth = old }()

	got := fmtExpr(t, "{outer: [100, 200, 300]}")
	want := "{\n  outer: [\n    100,\n    200,\n    300\n  ]\n}"
	if got != want {
		t.Fatalf("want:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormatFunctions(t *testing.T) {
	ip := execSrc(t, "fun add(a, b)\n  return a + b\nend\nfun v(...rest)\nend")
	add, _ := ip.Globals().Get("add")
	if got := FormatValue(add); got != "<fun add(a, b)>" {
		t.Fatalf("got %q", got)
	}
	vf, _ := ip.Globals().Get("v")
	if got := FormatValue(vf); got != "<fun v(...rest)>" {
		t.Fatalf("got %q", got)
	}
	pr, _ := ip.Globals().Get("print")
	if got := FormatValue(pr); got != "<builtin print>" {
		t.Fatalf("got %q", got)
	}
}
