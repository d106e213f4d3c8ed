// builtins.go — native functions registered on the Core environment.
//
// Builtins are ordinary *Fun values with a Native implementation; they never
// produce trace events. Failures use fail(), which the caller attributes to
// the call site.
package stepscript

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

func registerBuiltins(ip *Interp) {
	natives := map[string]NativeImpl{
		"print":    biPrint,
		"len":      biLen,
		"push":     biPush,
		"pop":      biPop,
		"keys":     biKeys,
		"range":    biRange,
		"str":      biStr,
		"int":      biInt,
		"abs":      biAbs,
		"min":      biMin,
		"max":      biMax,
		"pow":      biPow,
		"floor":    biFloor,
		"sort":     biSort,
		"contains": biContains,
		"fail":     biFail,
	}
	for name, impl := range natives {
		f := &Fun{Name: name, Native: impl}
		ip.core.Define(name, Value{Tag: VTFun, Data: f})
	}
}

func wantArgs(name string, args []Value, n int) {
	if len(args) != n {
		failf("%s expects %d argument(s), got %d", name, n, len(args))
	}
}

func wantNumeric(name string, v Value) float64 {
	if !isNumeric(v) {
		failf("%s expects a number, got %s", name, tagName(v.Tag))
	}
	return numOf(v)
}

func biPrint(ip *Interp, args []Value) Value {
	parts := make([]string, len(args))
	for i, a := range args {
		if a.Tag == VTStr {
			parts[i] = a.Data.(string)
		} else {
			parts[i] = FormatValue(a)
		}
	}
	fmt.Fprintln(ip.Stdout, strings.Join(parts, " "))
	return Null
}

func biLen(ip *Interp, args []Value) Value {
	wantArgs("len", args, 1)
	switch v := args[0]; v.Tag {
	case VTStr:
		return Int(int64(len([]rune(v.Data.(string)))))
	case VTArray:
		return Int(int64(len(v.Data.([]Value))))
	case VTMap:
		return Int(int64(v.Data.(*MapObject).Len()))
	default:
		failf("len expects a string, array, or map, got %s", tagName(v.Tag))
		return Null
	}
}

// push returns a new array with the extra elements appended; the original is
// left untouched (reassign: `xs = push(xs, v)`).
func biPush(ip *Interp, args []Value) Value {
	if len(args) < 2 {
		failf("push expects an array and at least one value")
	}
	if args[0].Tag != VTArray {
		failf("push expects an array, got %s", tagName(args[0].Tag))
	}
	src := args[0].Data.([]Value)
	out := make([]Value, 0, len(src)+len(args)-1)
	out = append(out, src...)
	out = append(out, args[1:]...)
	return Arr(out)
}

// pop returns a new array without the last element (mirror of push).
func biPop(ip *Interp, args []Value) Value {
	wantArgs("pop", args, 1)
	if args[0].Tag != VTArray {
		failf("pop expects an array, got %s", tagName(args[0].Tag))
	}
	src := args[0].Data.([]Value)
	if len(src) == 0 {
		failf("pop on an empty array")
	}
	return Arr(append([]Value(nil), src[:len(src)-1]...))
}

func biKeys(ip *Interp, args []Value) Value {
	wantArgs("keys", args, 1)
	if args[0].Tag != VTMap {
		failf("keys expects a map, got %s", tagName(args[0].Tag))
	}
	mo := args[0].Data.(*MapObject)
	out := make([]Value, 0, len(mo.Keys))
	for _, k := range mo.Keys {
		out = append(out, Str(k))
	}
	return Arr(out)
}

// range(stop) / range(start, stop) / range(start, stop, step)
func biRange(ip *Interp, args []Value) Value {
	var start, stop, step int64 = 0, 0, 1
	getInt := func(v Value) int64 {
		if v.Tag != VTInt {
			failf("range expects integers, got %s", tagName(v.Tag))
		}
		return v.Data.(int64)
	}
	switch len(args) {
	case 1:
		stop = getInt(args[0])
	case 2:
		start, stop = getInt(args[0]), getInt(args[1])
	case 3:
		start, stop, step = getInt(args[0]), getInt(args[1]), getInt(args[2])
		if step == 0 {
			failf("range step must not be zero")
		}
	default:
		failf("range expects 1 to 3 arguments, got %d", len(args))
	}
	var out []Value
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, Int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, Int(i))
		}
	}
	return Arr(out)
}

func biStr(ip *Interp, args []Value) Value {
	wantArgs("str", args, 1)
	if args[0].Tag == VTStr {
		return args[0]
	}
	return Str(FormatValue(args[0]))
}

func biInt(ip *Interp, args []Value) Value {
	wantArgs("int", args, 1)
	switch v := args[0]; v.Tag {
	case VTInt:
		return v
	case VTNum:
		return Int(int64(v.Data.(float64)))
	case VTStr:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Data.(string)), 10, 64)
		if err != nil {
			failf("int: cannot parse %q", v.Data.(string))
		}
		return Int(n)
	default:
		failf("int expects a number or string, got %s", tagName(v.Tag))
		return Null
	}
}

func biAbs(ip *Interp, args []Value) Value {
	wantArgs("abs", args, 1)
	switch v := args[0]; v.Tag {
	case VTInt:
		n := v.Data.(int64)
		if n < 0 {
			n = -n
		}
		return Int(n)
	case VTNum:
		return Num(math.Abs(v.Data.(float64)))
	default:
		failf("abs expects a number, got %s", tagName(v.Tag))
		return Null
	}
}

func biMin(ip *Interp, args []Value) Value { return extremum("min", args, func(a, b float64) bool { return a < b }) }
func biMax(ip *Interp, args []Value) Value { return extremum("max", args, func(a, b float64) bool { return a > b }) }

func extremum(name string, args []Value, better func(a, b float64) bool) Value {
	if len(args) == 1 && args[0].Tag == VTArray {
		args = args[0].Data.([]Value)
	}
	if len(args) == 0 {
		failf("%s expects at least one value", name)
	}
	best := args[0]
	bestN := wantNumeric(name, best)
	for _, a := range args[1:] {
		n := wantNumeric(name, a)
		if better(n, bestN) {
			best, bestN = a, n
		}
	}
	return best
}

func biPow(ip *Interp, args []Value) Value {
	wantArgs("pow", args, 2)
	a, b := args[0], args[1]
	if a.Tag == VTInt && b.Tag == VTInt {
		base, exp := a.Data.(int64), b.Data.(int64)
		if exp < 0 {
			return Num(math.Pow(float64(base), float64(exp)))
		}
		var out int64 = 1
		for i := int64(0); i < exp; i++ {
			out *= base
		}
		return Int(out)
	}
	return Num(math.Pow(wantNumeric("pow", a), wantNumeric("pow", b)))
}

func biFloor(ip *Interp, args []Value) Value {
	wantArgs("floor", args, 1)
	return Int(int64(math.Floor(wantNumeric("floor", args[0]))))
}

// sort returns a new array; elements must be all numbers or all strings.
func biSort(ip *Interp, args []Value) Value {
	wantArgs("sort", args, 1)
	if args[0].Tag != VTArray {
		failf("sort expects an array, got %s", tagName(args[0].Tag))
	}
	src := args[0].Data.([]Value)
	out := append([]Value(nil), src...)
	allStr := true
	for _, v := range out {
		if v.Tag != VTStr {
			allStr = false
		}
		if !isNumeric(v) && v.Tag != VTStr {
			failf("sort expects numbers or strings, got %s", tagName(v.Tag))
		}
	}
	if allStr {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Data.(string) < out[j].Data.(string)
		})
	} else {
		for _, v := range out {
			if !isNumeric(v) {
				failf("sort cannot mix numbers and strings")
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return numOf(out[i]) < numOf(out[j]) })
	}
	return Arr(out)
}

func biContains(ip *Interp, args []Value) Value {
	wantArgs("contains", args, 2)
	switch v := args[0]; v.Tag {
	case VTArray:
		for _, it := range v.Data.([]Value) {
			if valueEquals(it, args[1]) {
				return Bool(true)
			}
		}
		return Bool(false)
	case VTMap:
		if args[1].Tag != VTStr {
			failf("contains on a map expects a string key")
		}
		_, ok := v.Data.(*MapObject).Get(args[1].Data.(string))
		return Bool(ok)
	case VTStr:
		if args[1].Tag != VTStr {
			failf("contains on a string expects a string")
		}
		return Bool(strings.Contains(v.Data.(string), args[1].Data.(string)))
	default:
		failf("contains expects an array, map, or string, got %s", tagName(v.Tag))
		return Null
	}
}

// fail raises a runtime error from script code.
func biFail(ip *Interp, args []Value) Value {
	msg := "failure"
	if len(args) > 0 {
		if args[0].Tag == VTStr {
			msg = args[0].Data.(string)
		} else {
			msg = FormatValue(args[0])
		}
	}
	fail(msg)
	return Null
}
