// Copyright © 2023-2026 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package dp

// SizingPenalty computes the penalty of pairing a query chunk with a reference chunk.
type SizingPenalty interface {
	Penalty(querySize, refSize int) float64

	// ScaledPenalty is Penalty with a rescaled, non-integral query size.
	ScaledPenalty(querySize float64, refSize int) float64
}

// Chi2SizingPenalty is the squared standardized difference of the two sizes,
// with a standard deviation proportional to the reference size.
type Chi2SizingPenalty struct {
	SDRate float64
	MinSD  float64
}

// NewChi2SizingPenalty creates a Chi2SizingPenalty from alignment options.
func NewChi2SizingPenalty(opts *AlignOptions) *Chi2SizingPenalty {
	return &Chi2SizingPenalty{SDRate: opts.SDRate, MinSD: opts.MinSD}
}

// Penalty returns ((q-r)/sd)^2, where sd = max(SDRate*r, MinSD).
func (p *Chi2SizingPenalty) Penalty(querySize, refSize int) float64 {
	sd := p.SDRate * float64(refSize)
	if sd < p.MinSD {
		sd = p.MinSD
	}
	d := float64(querySize-refSize) / sd
	return d * d
}

// ScaledPenalty returns ((q-r)/sd)^2 of a non-integral query size.
func (p *Chi2SizingPenalty) ScaledPenalty(querySize float64, refSize int) float64 {
	sd := p.SDRate * float64(refSize)
	if sd < p.MinSD {
		sd = p.MinSD
	}
	d := (querySize - float64(refSize)) / sd
	return d * d
}

// PrecomputedSizingPenalty returns the same values as Chi2SizingPenalty,
// with sd of every reference window computed ahead.
// It is bound to one reference and must be used with sizes of its windows.
type PrecomputedSizingPenalty struct {
	chi2 Chi2SizingPenalty

	// reference size -> sd
	sds map[int]float64
}

// NewPrecomputedSizingPenalty computes sd of all windows of a reference.
func NewPrecomputedSizingPenalty(opts *AlignOptions, ref *PartialSums) *PrecomputedSizingPenalty {
	p := &PrecomputedSizingPenalty{
		chi2: Chi2SizingPenalty{SDRate: opts.SDRate, MinSD: opts.MinSD},
		sds:  make(map[int]float64, ref.Len()*(ref.MaxMisses+1)),
	}

	var end, count, size int
	var sd float64
	var ok bool
	for end = 1; end <= ref.Len(); end++ {
		for count = 1; count <= ref.MaxMisses+1 && count <= end; count++ {
			size = ref.Size(end, count)
			if _, ok = p.sds[size]; ok {
				continue
			}
			sd = p.chi2.SDRate * float64(size)
			if sd < p.chi2.MinSD {
				sd = p.chi2.MinSD
			}
			p.sds[size] = sd
		}
	}
	return p
}

// Penalty returns ((q-r)/sd)^2, computed in the same order as Chi2SizingPenalty,
// so the two give identical values. Unknown reference sizes fall back to direct computation.
func (p *PrecomputedSizingPenalty) Penalty(querySize, refSize int) float64 {
	sd, ok := p.sds[refSize]
	if !ok {
		return p.chi2.Penalty(querySize, refSize)
	}
	d := float64(querySize-refSize) / sd
	return d * d
}

// ScaledPenalty returns ((q-r)/sd)^2 of a non-integral query size.
func (p *PrecomputedSizingPenalty) ScaledPenalty(querySize float64, refSize int) float64 {
	sd, ok := p.sds[refSize]
	if !ok {
		return p.chi2.ScaledPenalty(querySize, refSize)
	}
	d := (querySize - float64(refSize)) / sd
	return d * d
}
