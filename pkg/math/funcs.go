package math

import "math"

// TableSize is the resolution of the periodic function tables.
const TableSize = 1024

const tableMask = TableSize - 1

// WaveFunc selects a periodic function. One period spans the argument range [0,1).
type WaveFunc uint8

// Periodic functions.
const (
	FuncSin WaveFunc = iota
	FuncSquare
	FuncTriangle
	FuncSawtooth
	FuncInverseSawtooth
	numFuncs
)

var funcNames = [...]string{"sin", "square", "triangle", "sawtooth", "inversesawtooth"}

func (f WaveFunc) String() string {
	if int(f) < len(funcNames) {
		return funcNames[f]
	}
	return "unknown"
}

// ParseWaveFunc maps a function name to a WaveFunc.
func ParseWaveFunc(name string) (WaveFunc, bool) {
	for i, n := range funcNames {
		if n == name {
			return WaveFunc(i), true
		}
	}
	return 0, false
}

var tables [numFuncs][TableSize]float32

func init() {
	for i := 0; i < TableSize; i++ {
		f := float32(i) / TableSize
		tables[FuncSin][i] = float32(math.Sin(float64(i) / (TableSize / 2) * math.Pi))
		if i < TableSize/2 {
			tables[FuncSquare][i] = -1
		} else {
			tables[FuncSquare][i] = 1
		}
		tables[FuncSawtooth][i] = f
		tables[FuncInverseSawtooth][i] = 1 - f

		n := (i + TableSize/4) & tableMask
		if n >= TableSize/2 {
			n = TableSize - n
		}
		tables[FuncTriangle][i] = float32(n-TableSize/4) / (TableSize / 4)
	}
}

// Periodic evaluates fn at x, where x is measured in periods.
func Periodic(fn WaveFunc, x float32) float32 {
	i := int(math.Floor(float64(x * TableSize)))
	return tables[fn][i&tableMask]
}

// SinPeriod is the table sine with a period of 1.
func SinPeriod(x float32) float32 {
	return Periodic(FuncSin, x)
}

// SinFrac returns sin(2*pi*n/div) from the table.
func SinFrac(n, div int) float32 {
	return tables[FuncSin][(n*TableSize/div)&tableMask]
}

// CosFrac returns cos(2*pi*n/div) from the table.
func CosFrac(n, div int) float32 {
	return tables[FuncSin][(n*TableSize/div+TableSize/4)&tableMask]
}

// Frac returns the fractional part of x.
func Frac(x float32) float32 {
	return x - float32(math.Floor(float64(x)))
}

// Clamp255 clamps an integer into the byte range.
func Clamp255(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Round rounds half away from zero.
func Round(x float32) int {
	return int(math.Round(float64(x)))
}

// Floor rounds toward negative infinity.
func Floor(x float32) int {
	return int(math.Floor(float64(x)))
}
