package genetics

import "github.com/clawforge/skirmish/internal/sim"

// DefaultParams maps each schema key to its declared default.
func DefaultParams(s Schema) Params {
	out := make(Params, len(s))
	for _, k := range s.Keys() {
		def := s[k]
		switch def.Kind {
		case KindNumber:
			out[k] = Value{Num: def.Default}
		case KindInt:
			out[k] = Value{Num: float64(def.IntDefault)}
		case KindBoolean:
			out[k] = Value{Bool: def.BoolDefault, IsBool: true}
		}
	}
	return out
}

// RandomParams draws a uniform value per key: uniform within [min,max] for
// number, uniform over the step grid for int, and an independent coin flip
// for boolean.
func RandomParams(s Schema, rng *sim.Stream) Params {
	out := make(Params, len(s))
	for _, k := range s.Keys() {
		def := s[k]
		switch def.Kind {
		case KindNumber:
			out[k] = Value{Num: rng.Range(def.Min, def.Max)}
		case KindInt:
			out[k] = Value{Num: float64(randomIntOnGrid(def, rng))}
		case KindBoolean:
			out[k] = Value{Bool: rng.Bool(0.5), IsBool: true}
		}
	}
	return out
}

func randomIntOnGrid(def ParamDef, rng *sim.Stream) int {
	step := def.IntStep
	if step <= 0 {
		step = 1
	}
	steps := (def.IntMax - def.IntMin) / step
	if steps < 0 {
		steps = 0
	}
	n := rng.IntRange(0, steps)
	return def.IntMin + n*step
}

// Mutate perturbs every key according to its family-typed rate/sigma:
// Gaussian for number (clamped to [min,max]), a ±step snap for int, and a
// probability-gated flip for boolean. Every result respects schema bounds.
func Mutate(s Schema, p Params, rng *sim.Stream) Params {
	out := make(Params, len(p))
	for _, k := range s.Keys() {
		def := s[k]
		cur := p[k]
		switch def.Kind {
		case KindNumber:
			sigma := def.Sigma
			v := cur.Num + rng.Gaussian()*sigma
			out[k] = Value{Num: clampF(v, def.Min, def.Max)}
		case KindInt:
			step := def.IntStep
			if step <= 0 {
				step = 1
			}
			delta := step
			if rng.Bool(0.5) {
				delta = -step
			}
			if !rng.Bool(def.MutateRate) {
				delta = 0
			}
			v := int(cur.Num) + delta
			if v < def.IntMin {
				v = def.IntMin
			}
			if v > def.IntMax {
				v = def.IntMax
			}
			out[k] = Value{Num: float64(v)}
		case KindBoolean:
			b := cur.Bool
			if rng.Bool(def.MutateRate) {
				b = !b
			}
			out[k] = Value{Bool: b, IsBool: true}
		}
	}
	return out
}

// Crossover produces a child by uniform 50/50 selection between a and b for
// each key in the schema.
func Crossover(s Schema, a, b Params, rng *sim.Stream) Params {
	out := make(Params, len(s))
	for _, k := range s.Keys() {
		if rng.Bool(0.5) {
			out[k] = a[k]
		} else {
			out[k] = b[k]
		}
	}
	return out
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
