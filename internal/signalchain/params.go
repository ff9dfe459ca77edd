package signalchain

// Params holds the two adaptive filter coefficients and the moving-average
// window, re-evaluated on every Chain.Evaluate() call based on the current
// motion state and passed to Process (spec §4.C).
type Params struct {
	AlphaLP  float64
	AlphaHP  float64
	MAWindow int
}

var (
	nominalParams = Params{AlphaLP: 0.15, AlphaHP: 0.98, MAWindow: 5}
	motionParams  = Params{AlphaLP: 0.10, AlphaHP: 0.99, MAWindow: 8}
)

// paramsFor returns the nominal or motion-adjusted parameter set.
func paramsFor(motion bool) Params {
	if motion {
		return motionParams
	}
	return nominalParams
}
