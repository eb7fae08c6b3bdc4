// Package timing implements the timing-model composition and evaluation
// engine: components contribute delay and phase functions, a Model composes
// them into ordered pipelines, and the evaluation entry points share a
// per-call memoization scope.
package timing

import (
	"fmt"
	"math"
)

// A Phase is the accumulated pulse rotation count predicted for a set of
// observations. Rotation counts over decades exceed what one float64 can
// hold at sub-turn precision, so whole turns and the fractional turn are
// carried separately. The fraction stays in the open interval (-1, 1);
// carries move whole turns into Int.
type Phase struct {
	Int  []int64
	Frac []float64
}

// ZeroPhase returns an n-observation phase of all zeros.
func ZeroPhase(n int) Phase {
	return Phase{
		Int:  make([]int64, n),
		Frac: make([]float64, n),
	}
}

// PhaseFromSeries splits a per-observation turn count into integer and
// fractional parts.
func PhaseFromSeries(turns []float64) Phase {
	p := ZeroPhase(len(turns))
	for i, v := range turns {
		ip, fp := math.Modf(v)
		p.Int[i] = int64(ip)
		p.Frac[i] = fp
	}
	return p
}

// Len returns the number of observations the phase covers.
func (p Phase) Len() int { return len(p.Int) }

// Add sums two phases observation by observation, renormalizing the
// fractional parts. Mismatched lengths are a programming error.
func (p Phase) Add(q Phase) Phase {
	if p.Len() != q.Len() {
		panic(fmt.Sprintf("adding phases of length %d and %d", p.Len(), q.Len()))
	}

	sum := ZeroPhase(p.Len())
	for i := range sum.Int {
		sum.Int[i], sum.Frac[i] = carry(p.Int[i]+q.Int[i], p.Frac[i]+q.Frac[i])
	}
	return sum
}

// Normalized returns the phase with every fractional part carried back into
// (-1, 1).
func (p Phase) Normalized() Phase {
	out := ZeroPhase(p.Len())
	for i := range out.Int {
		out.Int[i], out.Frac[i] = carry(p.Int[i], p.Frac[i])
	}
	return out
}

// Reported returns the phase in the reporting convention: fractional parts
// shifted into [0, 1) by moving one turn out of the integer part where the
// fraction is negative.
func (p Phase) Reported() Phase {
	out := p.Normalized()
	for i := range out.Int {
		if out.Frac[i] < 0 {
			out.Frac[i]++
			out.Int[i]--
		}
	}
	return out
}

// Collapsed reduces the phase to a single float64 per observation by
// subtracting the smallest integer turn count and adding the fraction back.
// The offset keeps the values small enough that double precision holds the
// sub-turn structure; only differences across the set are meaningful.
func (p Phase) Collapsed() []float64 {
	if p.Len() == 0 {
		return nil
	}

	minInt := p.Int[0]
	for _, v := range p.Int[1:] {
		if v < minInt {
			minInt = v
		}
	}

	out := make([]float64, p.Len())
	for i := range out {
		out[i] = float64(p.Int[i]-minInt) + p.Frac[i]
	}
	return out
}

// carry folds whole turns of frac into the integer part, leaving frac in
// the open interval (-1, 1). Folding truncates rather than loops, so a
// fraction holding many whole turns normalizes in constant time.
func carry(i int64, f float64) (int64, float64) {
	if f >= 1 || f <= -1 {
		t := math.Trunc(f)
		i += int64(t)
		f -= t
	}
	return i, f
}
