package toa

// Freq is an observing frequency.
type Freq float64

// Defines the unit of frequency.
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Infinite marks a TOA that has already been corrected to infinite
// frequency, so dispersion terms vanish.
const Infinite Freq = 0

// A TOA is one pulse time-of-arrival measurement. The record is owned by
// the caller; evaluation never mutates it.
type TOA struct {
	// Time is the recorded arrival instant.
	Time MJD

	// Obs tags the observatory or reference frame the arrival was
	// recorded in.
	Obs string

	// Freq is the observing frequency.
	Freq Freq
}

// Resample builds a symmetric window of n sample instants spanning
// halfWidth seconds on either side of t, preserving the observatory and
// frequency tags. n is forced odd so that the window has a true center
// sample, which lands exactly on t.
func Resample(t TOA, halfWidth float64, n int) []TOA {
	if n < 3 {
		n = 3
	}
	if n%2 == 0 {
		n++
	}

	samples := make([]TOA, n)
	step := 2 * halfWidth / float64(n-1)
	for i := range samples {
		offset := -halfWidth + float64(i)*step
		samples[i] = TOA{
			Time: t.Time.AddSeconds(offset),
			Obs:  t.Obs,
			Freq: t.Freq,
		}
	}
	samples[n/2] = t

	return samples
}

// A TimeService converts observatory timestamps into the uniform time and
// coordinate frames that physical delay components compute in. It is an
// external collaborator: implementations carry the ephemeris and clock
// corrections, and this module never provides one.
type TimeService interface {
	// TDB converts the arrival instant of a TOA to barycentric
	// dynamical time.
	TDB(t TOA) MJD

	// ObservatoryPosition reports the observatory position for a TOA in
	// a solar-system barycentric frame, in light seconds.
	ObservatoryPosition(t TOA) (x, y, z float64)
}
