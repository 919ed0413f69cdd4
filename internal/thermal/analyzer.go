package thermal

// Analyzer computes ROI statistics over a fixed temperature grid. It keeps
// no state between calls and is safe for concurrent use.
type Analyzer struct {
	Grid  *Grid
	Range ValidityRange
}

// NewAnalyzer returns an Analyzer for g using validity range r.
func NewAnalyzer(g *Grid, r ValidityRange) *Analyzer {
	return &Analyzer{Grid: g, Range: r}
}

// Analyze normalises rect against the grid, extracts the sub-grid, replaces
// invalid readings with Missing and computes the statistics. Degenerate or
// out-of-bounds rectangles are clamped, never rejected.
func (a *Analyzer) Analyze(rect Rect) Result {
	norm := rect.Normalize(a.Grid.Width(), a.Grid.Height())
	cleaned := Sanitize(a.Grid.Sub(norm), a.Range)
	return Compute(cleaned, norm)
}

// Summary returns whole-image statistics used for display scaling.
func (a *Analyzer) Summary(opts DisplayOptions) Summary {
	return Summarize(a.Grid, a.Range, opts)
}
