package layout

import "math"

// ColumnInput describes one scroll column for the size solver.
type ColumnInput struct {
	Weight    float64
	MinSize   float64
	MaxSize   float64 // 0 = unbounded
	FixedSize float64 // 0 = flexible
}

// ColumnOutput is a solved column size.
type ColumnOutput struct {
	Size        float64
	Constrained bool
}

// SolveColumnSizes distributes available space among columns proportionally
// to weight, honoring per-column min, max, and fixed sizes. When the minima
// cannot be satisfied, every column is squeezed proportionally and reported
// as constrained.
func SolveColumnSizes(columns []ColumnInput, available, gap float64) []ColumnOutput {
	count := len(columns)
	if count == 0 {
		return nil
	}

	usable := available - gap*math.Max(0, float64(count-1))

	totalMin := 0.0
	for _, c := range columns {
		totalMin += c.MinSize
	}
	if usable <= 0 || usable < totalMin {
		totalWeight := 0.0
		weights := make([]float64, count)
		for i, c := range columns {
			weights[i] = math.Max(c.Weight, 0.1)
			totalWeight += weights[i]
		}
		out := make([]ColumnOutput, count)
		for i := range columns {
			size := 1.0
			if totalWeight > 0 {
				size = math.Max(math.Max(usable, 0)*weights[i]/totalWeight, 1.0)
			}
			out[i] = ColumnOutput{Size: size, Constrained: true}
		}
		return out
	}

	sizes := make([]float64, count)
	fixed := make([]bool, count)
	for i, c := range columns {
		if c.FixedSize > 0 {
			max := c.MaxSize
			if max <= 0 {
				max = math.MaxFloat64
			}
			sizes[i] = math.Min(math.Max(c.FixedSize, c.MinSize), max)
			fixed[i] = true
		} else if c.MaxSize > 0 && c.MaxSize <= c.MinSize {
			sizes[i] = c.MinSize
			fixed[i] = true
		}
	}

	weights := make([]float64, count)
	for i, c := range columns {
		weights[i] = math.Max(c.Weight, 0.1)
	}

	// Iterate: whenever a proportional share violates a minimum, pin that
	// column at its minimum and redistribute the rest.
	for pass := 0; pass <= count; pass++ {
		used := 0.0
		totalWeight := 0.0
		for i := range columns {
			if fixed[i] {
				used += sizes[i]
			} else {
				totalWeight += weights[i]
			}
		}
		remaining := usable - used
		if totalWeight <= 0 {
			break
		}

		violated := false
		for i := range columns {
			if fixed[i] {
				continue
			}
			proposed := remaining * weights[i] / totalWeight
			if proposed < columns[i].MinSize {
				sizes[i] = columns[i].MinSize
				fixed[i] = true
				violated = true
				break
			}
		}
		if !violated {
			for i := range columns {
				if !fixed[i] {
					sizes[i] = remaining * weights[i] / totalWeight
				}
			}
			break
		}
	}

	// Clamp maxima and hand the excess to the unconstrained columns.
	excess := 0.0
	maxFixed := make([]bool, count)
	for i, c := range columns {
		if c.MaxSize > 0 && sizes[i] > c.MaxSize {
			excess += sizes[i] - c.MaxSize
			sizes[i] = c.MaxSize
			maxFixed[i] = true
		}
	}
	if excess > 0 {
		redistWeight := 0.0
		for i := range columns {
			if !maxFixed[i] && !fixed[i] {
				redistWeight += weights[i]
			}
		}
		if redistWeight > 0 {
			for i := range columns {
				if !maxFixed[i] && !fixed[i] {
					sizes[i] += excess * weights[i] / redistWeight
				}
			}
		}
	}

	out := make([]ColumnOutput, count)
	for i, size := range sizes {
		size = math.Max(size, 1.0)
		out[i] = ColumnOutput{
			Size:        size,
			Constrained: fixed[i] || maxFixed[i],
		}
	}
	return out
}
