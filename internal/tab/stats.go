package tab

import "math"

// normalCDF is the standard normal cumulative distribution function.
func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// chiSquarePValue returns the upper tail probability of the chi-square
// distribution with dof degrees of freedom, i.e. Q(dof/2, stat/2), via
// the regularized incomplete gamma function.
func chiSquarePValue(stat float64, dof int) float64 {
	if stat <= 0 || dof <= 0 {
		return 1
	}
	return gammaQ(float64(dof)/2, stat/2)
}

// gammaQ computes the regularized upper incomplete gamma function Q(a, x)
// using the series expansion for x < a+1 and the continued fraction
// otherwise (Numerical Recipes gser/gcf).
func gammaQ(a, x float64) float64 {
	if x < 0 || a <= 0 {
		return 1
	}
	if x == 0 {
		return 1
	}
	if x < a+1 {
		return 1 - gammaSeriesP(a, x)
	}
	return gammaContinuedQ(a, x)
}

const (
	gammaMaxIterations = 200
	gammaEpsilon       = 3e-14
)

// gammaSeriesP evaluates P(a, x) by its series representation.
func gammaSeriesP(a, x float64) float64 {
	ap := a
	sum := 1 / a
	del := sum
	for i := 0; i < gammaMaxIterations; i++ {
		ap++
		del *= x / ap
		sum += del
		if math.Abs(del) < math.Abs(sum)*gammaEpsilon {
			break
		}
	}
	return sum * math.Exp(-x+a*math.Log(x)-gammaLn(a))
}

// gammaContinuedQ evaluates Q(a, x) by its continued fraction
// representation with modified Lentz's method.
func gammaContinuedQ(a, x float64) float64 {
	const tiny = 1e-300

	b := x + 1 - a
	c := 1 / tiny
	d := 1 / b
	h := d
	for i := 1; i <= gammaMaxIterations; i++ {
		an := -float64(i) * (float64(i) - a)
		b += 2
		d = an*d + b
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = b + an/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < gammaEpsilon {
			break
		}
	}
	return math.Exp(-x+a*math.Log(x)-gammaLn(a)) * h
}

// gammaLn is the natural log of the gamma function (Lanczos
// approximation).
func gammaLn(x float64) float64 {
	coef := [6]float64{
		76.18009172947146, -86.50532032941677, 24.01409824083091,
		-1.231739572450155, 0.1208650973866179e-2, -0.5395239384953e-5,
	}
	y := x
	tmp := x + 5.5
	tmp -= (x + 0.5) * math.Log(tmp)
	ser := 1.000000000190015
	for j := 0; j < 6; j++ {
		y++
		ser += coef[j] / y
	}
	return -tmp + math.Log(2.5066282746310005*ser/x)
}
