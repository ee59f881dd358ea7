package cpu

import (
	"iter"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// evalExpression does compile time $(...) evaluations, with the given
// symbols predeclared.
func evalExpression(expr string, symbols iter.Seq2[string, int64]) (value int64, err error) {
	expr = strings.TrimSpace(expr)
	if len(expr) == 0 {
		err = ErrParseExpression(expr)
		return
	}

	thread := starlark.Thread{Name: "expr"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, symbol := range symbols {
		pred[key] = starlark.MakeInt64(symbol)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}

	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		var uval uint64
		uval, ok = st_int.Uint64()
		if !ok {
			err = ErrParseExpression(expr)
			return
		}
		value = int64(uval)
	}

	return
}
