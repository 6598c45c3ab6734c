package telemetry

import "math"

// Gaussian draws from N(mean, stdDev²) using the Box-Muller transform.
func Gaussian(rng Rand, mean, stdDev float64) float64 {
	if stdDev <= 0 {
		return mean
	}
	u1 := 1 - rng.Float64() // (0, 1], keeps Log finite
	u2 := rng.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + stdDev*z
}

// Perturb adds Gaussian noise to v and clamps the result to [lo, hi].
func Perturb(rng Rand, v, stdDev, lo, hi float64) float64 {
	return clamp(Gaussian(rng, v, stdDev), lo, hi)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
