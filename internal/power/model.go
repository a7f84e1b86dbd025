// Package power implements the server power and energy model shared by the
// simulator's bookkeeping and the energy-aware allocator. All functions are
// pure: a model is immutable after construction.
package power

// Model holds the power curve of one resource type. CPU power is a
// piecewise-linear interpolation over monotonically increasing utilization
// breakpoints; accelerator power is linear between idle and peak.
type Model struct {
	bins    []float64
	watts   []float64
	idleAcc float64
	peakAcc float64
}

// New builds a model from a full breakpoint table. bins must be strictly
// increasing and len(bins) == len(watts) >= 2; callers are expected to have
// validated this at config load time.
func New(bins, watts []float64, idleAcc, peakAcc float64) *Model {
	m := &Model{
		bins:    make([]float64, len(bins)),
		watts:   make([]float64, len(watts)),
		idleAcc: idleAcc,
		peakAcc: peakAcc,
	}
	copy(m.bins, bins)
	copy(m.watts, watts)
	return m
}

// NewLinear builds the default two-breakpoint curve from an idle/peak pair
func NewLinear(idleCPU, peakCPU, idleAcc, peakAcc float64) *Model {
	return New([]float64{0.0, 1.0}, []float64{idleCPU, peakCPU}, idleAcc, peakAcc)
}

// CPUPower returns the CPU power draw in watts at utilization u.
// Utilization below the lowest breakpoint clamps to the lowest power, above
// the highest breakpoint clamps to the highest; a value equal to a
// breakpoint returns that breakpoint's power exactly.
func (m *Model) CPUPower(u float64) float64 {
	return Interpolate(u, m.bins, m.watts)
}

// AccPower returns the power draw in watts of a single accelerator at
// utilization ratio rho: idle + rho * (peak - idle).
func (m *Model) AccPower(rho float64) float64 {
	return m.idleAcc + rho*(m.peakAcc-m.idleAcc)
}

// Power returns the total instantaneous draw of one server: CPU at
// utilization u plus numAcc accelerators at utilization rho.
func (m *Model) Power(u, rho float64, numAcc int) float64 {
	p := m.CPUPower(u)
	if numAcc > 0 {
		p += float64(numAcc) * m.AccPower(rho)
	}
	return p
}

// Interpolate evaluates a piecewise-linear table at u with clamping outside
// the breakpoint range. Breakpoint values are returned exactly.
func Interpolate(u float64, bins, watts []float64) float64 {
	n := len(bins)
	if n == 0 {
		return 0
	}
	if u <= bins[0] {
		return watts[0]
	}
	if u >= bins[n-1] {
		return watts[n-1]
	}
	for i := 1; i < n; i++ {
		if u == bins[i] {
			return watts[i]
		}
		if u < bins[i] {
			frac := (u - bins[i-1]) / (bins[i] - bins[i-1])
			return watts[i-1] + frac*(watts[i]-watts[i-1])
		}
	}
	return watts[n-1]
}

// EnergyKWh converts a constant draw of watts sustained for seconds into
// kilowatt-hours
func EnergyKWh(watts, seconds float64) float64 {
	return watts * seconds / 3_600_000.0
}
