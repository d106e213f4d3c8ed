// printer.go — width-aware pretty printing of runtime values.
//
// FormatValue renders a Value as source-like text: arrays and maps fit on
// one line when short (MaxInlineWidth), otherwise break into an indented
// multi-line form. Map keys print in sorted order for stable output.
package stepscript

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// MaxInlineWidth is the width threshold for single-line arrays/maps.
var MaxInlineWidth = 80

const indentStep = "  "

type out struct {
	b     *strings.Builder
	depth int
}

func (o *out) write(s string) { o.b.WriteString(s) }
func (o *out) nl()            { o.b.WriteByte('\n') }
func (o *out) pad()           { o.b.WriteString(strings.Repeat(indentStep, o.depth)) }
func (o *out) withIndent(fn func()) {
	o.depth++
	fn()
	o.depth--
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	rs := []rune(s)
	if !(unicode.IsLetter(rs[0]) || rs[0] == '_') {
		return false
	}
	for _, r := range rs[1:] {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// FormatValue returns a source-like string for a runtime Value.
func FormatValue(v Value) string {
	var b strings.Builder
	o := out{b: &b}
	writeValue(&o, v)
	return b.String()
}

func writeValue(o *out, v Value) {
	switch v.Tag {
	case VTNull:
		o.write("null")

	case VTBool:
		o.write(strconv.FormatBool(v.Data.(bool)))

	case VTInt:
		o.write(strconv.FormatInt(v.Data.(int64), 10))

	case VTNum:
		s := strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		o.write(s)

	case VTStr:
		o.write(quoteString(v.Data.(string)))

	case VTArray:
		xs := v.Data.([]Value)
		if oneline := arrayOneLine(xs); oneline != "" && len(oneline) <= MaxInlineWidth {
			o.write(oneline)
			return
		}
		o.write("[")
		o.nl()
		o.withIndent(func() {
			for i, it := range xs {
				o.pad()
				writeValue(o, it)
				if i < len(xs)-1 {
					o.write(",")
				}
				o.nl()
			}
		})
		o.pad()
		o.write("]")

	case VTMap:
		mo := v.Data.(*MapObject)
		keys := append([]string(nil), mo.Keys...)
		sort.Strings(keys)

		if oneline := mapOneLine(keys, mo); oneline != "" && len(oneline) <= MaxInlineWidth {
			o.write(oneline)
			return
		}
		o.write("{")
		o.nl()
		o.withIndent(func() {
			for i, k := range keys {
				o.pad()
				o.write(mapKey(k))
				o.write(": ")
				writeValue(o, mo.Entries[k])
				if i < len(keys)-1 {
					o.write(",")
				}
				o.nl()
			}
		})
		o.pad()
		o.write("}")

	case VTFun:
		if f, ok := v.Data.(*Fun); ok && f != nil {
			if f.Native != nil {
				o.write("<builtin " + f.Name + ">")
				return
			}
			name := f.Name
			if name == "" {
				name = "fun"
			}
			o.write("<fun " + name + f.Signature() + ">")
			return
		}
		o.write("<fun>")

	default:
		o.write("<unknown>")
	}
}

func mapKey(k string) string {
	if isIdent(k) {
		return k
	}
	return quoteString(k)
}

// arrayOneLine returns "" when any element is itself multi-line.
func arrayOneLine(xs []Value) string {
	if len(xs) == 0 {
		return "[]"
	}
	parts := make([]string, 0, len(xs))
	for _, v := range xs {
		if isValueMultiline(v) {
			return ""
		}
		parts = append(parts, FormatValue(v))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func mapOneLine(keys []string, mo *MapObject) string {
	if len(keys) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := mo.Entries[k]
		if isValueMultiline(v) {
			return ""
		}
		parts = append(parts, mapKey(k)+": "+FormatValue(v))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// isValueMultiline reports whether the value would render across lines.
func isValueMultiline(v Value) bool {
	switch v.Tag {
	case VTArray, VTMap:
		return strings.Contains(FormatValue(v), "\n")
	default:
		return false
	}
}
