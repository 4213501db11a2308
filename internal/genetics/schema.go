// Package genetics implements schema-typed parameter generation for the
// training orchestrator's coordinate-descent search: default/random/mutate/
// crossover over number, int, and boolean parameters, each with its own
// mutation shape, following the usual population/elite/mutate/crossover
// generational loop generalized to a typed ParamSchema.
package genetics

// ParamKind names one of the three supported parameter shapes.
type ParamKind string

const (
	KindNumber  ParamKind = "number"
	KindInt     ParamKind = "int"
	KindBoolean ParamKind = "boolean"
)

// ParamDef is one schema entry. Only the fields relevant to Kind are used;
// the rest are zero.
type ParamDef struct {
	Kind ParamKind

	// number
	Min, Max, Default, Sigma float64

	// int
	IntMin, IntMax, IntDefault, IntStep int
	MutateRate                         float64

	// boolean
	BoolDefault bool
	// MutateRate reused for boolean flip probability.
}

// Schema maps a parameter key to its definition. Iteration for
// deterministic operations (crossover, random) always goes through Keys(),
// never Go's randomized map iteration order.
type Schema map[string]ParamDef

// Value is a number or boolean parameter value.
type Value struct {
	Num  float64
	Bool bool
	IsBool bool
}

// Params maps a schema key to its current value.
type Params map[string]Value

// Keys returns the schema's keys in a stable, sorted order so every
// consumer (random init, crossover, serialization) iterates identically
// regardless of map internals.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	insertionSort(keys)
	return keys
}

func insertionSort(keys []string) {
	for i := 1; i < len(keys); i++ {
		j := i
		for j > 0 && keys[j] < keys[j-1] {
			keys[j], keys[j-1] = keys[j-1], keys[j]
			j--
		}
	}
}

// Float returns v's numeric value regardless of kind (booleans read as 0/1).
func (v Value) Float() float64 {
	if v.IsBool {
		if v.Bool {
			return 1
		}
		return 0
	}
	return v.Num
}
