package expr

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"
)

// Number is an int or a float result. Integer arithmetic stays integral
// until a float or true division is involved.
type Number struct {
	isFloat bool
	i       int64
	f       float64
}

func Int(v int64) Number     { return Number{i: v} }
func Float(v float64) Number { return Number{isFloat: true, f: v} }

func (n Number) IsInt() bool { return !n.isFloat }

func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

// Int64 reports the integer value and whether n holds one.
func (n Number) Int64() (int64, bool) {
	return n.i, !n.isFloat
}

func (n Number) String() string {
	if !n.isFloat {
		return strconv.FormatInt(n.i, 10)
	}
	abs := math.Abs(n.f)
	if abs >= 1e16 || (abs != 0 && abs < 1e-4) {
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	}
	text := strconv.FormatFloat(n.f, 'f', -1, 64)
	if !strings.ContainsAny(text, ".e") {
		text += ".0"
	}
	return text
}

// round6 rounds floats to six decimal places through their shortest decimal
// expansion; integers pass through.
func round6(n Number) Number {
	if !n.isFloat {
		return n
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(n.f, 'f', 6, 64), 64)
	if err != nil {
		return n
	}
	return Float(rounded)
}

func checkFinite(n Number) (Number, error) {
	if n.isFloat && (math.IsInf(n.f, 0) || math.IsNaN(n.f)) {
		return Number{}, fmt.Errorf("%w: result is not a finite number", ErrArithmetic)
	}
	return n, nil
}

func negate(n Number) (Number, error) {
	if n.isFloat {
		return Float(-n.f), nil
	}
	if n.i == math.MinInt64 {
		return Number{}, fmt.Errorf("%w: integer overflow", ErrArithmetic)
	}
	return Int(-n.i), nil
}

func applyBinary(op string, left, right Number) (Number, error) {
	if left.isFloat || right.isFloat || op == "/" {
		return floatBinary(op, left.Float64(), right.Float64())
	}
	return intBinary(op, left.i, right.i)
}

func intBinary(op string, a, b int64) (Number, error) {
	overflow := fmt.Errorf("%w: integer overflow", ErrArithmetic)
	switch op {
	case "+":
		sum := a + b
		if (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum >= 0) {
			return Number{}, overflow
		}
		return Int(sum), nil
	case "-":
		diff := a - b
		if (a >= 0 && b < 0 && diff < 0) || (a < 0 && b > 0 && diff >= 0) {
			return Number{}, overflow
		}
		return Int(diff), nil
	case "*":
		product, ok := mulInt(a, b)
		if !ok {
			return Number{}, overflow
		}
		return Int(product), nil
	case "%":
		if b == 0 {
			return Number{}, fmt.Errorf("%w: integer modulo by zero", ErrArithmetic)
		}
		if b == -1 {
			return Int(0), nil
		}
		mod := a % b
		if mod != 0 && (mod < 0) != (b < 0) {
			mod += b
		}
		return Int(mod), nil
	case "**":
		if b < 0 {
			if a == 0 {
				return Number{}, fmt.Errorf("%w: zero to a negative power", ErrArithmetic)
			}
			return floatBinary(op, float64(a), float64(b))
		}
		return powInt(a, b)
	}
	return Number{}, fmt.Errorf("%w: operator %q", ErrDisallowed, op)
}

func floatBinary(op string, a, b float64) (Number, error) {
	var result float64
	switch op {
	case "+":
		result = a + b
	case "-":
		result = a - b
	case "*":
		result = a * b
	case "/":
		if b == 0 {
			return Number{}, fmt.Errorf("%w: division by zero", ErrArithmetic)
		}
		result = a / b
	case "%":
		if b == 0 {
			return Number{}, fmt.Errorf("%w: float modulo", ErrArithmetic)
		}
		result = math.Mod(a, b)
		if result != 0 && (result < 0) != (b < 0) {
			result += b
		}
	case "**":
		if a == 0 && b < 0 {
			return Number{}, fmt.Errorf("%w: zero to a negative power", ErrArithmetic)
		}
		if a < 0 && b != math.Trunc(b) {
			return Number{}, fmt.Errorf("%w: complex result", ErrArithmetic)
		}
		result = math.Pow(a, b)
	default:
		return Number{}, fmt.Errorf("%w: operator %q", ErrDisallowed, op)
	}
	return checkFinite(Float(result))
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	negative := (a < 0) != (b < 0)
	hi, lo := bits.Mul64(absUint(a), absUint(b))
	if hi != 0 {
		return 0, false
	}
	if negative {
		if lo > 1<<63 {
			return 0, false
		}
		return int64(-lo), true
	}
	if lo > math.MaxInt64 {
		return 0, false
	}
	return int64(lo), true
}

func powInt(base, exponent int64) (Number, error) {
	result := int64(1)
	for exponent > 0 {
		if exponent&1 == 1 {
			next, ok := mulInt(result, base)
			if !ok {
				return Number{}, fmt.Errorf("%w: integer overflow", ErrArithmetic)
			}
			result = next
		}
		exponent >>= 1
		if exponent > 0 {
			squared, ok := mulInt(base, base)
			if !ok {
				return Number{}, fmt.Errorf("%w: integer overflow", ErrArithmetic)
			}
			base = squared
		}
	}
	return Int(result), nil
}

func absUint(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}
