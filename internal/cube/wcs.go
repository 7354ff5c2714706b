package cube

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// CelestialWCS maps 1-based FITS pixel coordinates of the two spatial axes to
// equatorial coordinates in degrees. Zenithal projections (TAN, SIN, ARC,
// STG, ZEA) are supported; any other projection code is treated as a linear
// offset from the reference point.
type CelestialWCS struct {
	Projection string     // Three-letter projection code
	RefWorld   [2]float64 // CRVAL1, CRVAL2 in degrees
	RefPixel   [2]float64 // CRPIX1, CRPIX2
	CD         [2][2]float64
	LonPole    float64 // Native longitude of the celestial pole, degrees

	inv [2][2]float64
}

// NewCelestialWCS builds a transform from its reference point, pixel scale
// matrix (degrees per pixel) and projection code.
func NewCelestialWCS(projection string, refWorld, refPixel [2]float64, cd [2][2]float64) (*CelestialWCS, error) {
	det := cd[0][0]*cd[1][1] - cd[0][1]*cd[1][0]
	if det == 0 {
		return nil, errors.New("cube: singular celestial pixel matrix")
	}

	w := &CelestialWCS{
		Projection: strings.ToUpper(projection),
		RefWorld:   refWorld,
		RefPixel:   refPixel,
		CD:         cd,
		LonPole:    180,
	}
	if refWorld[1] >= 90 {
		w.LonPole = 0
	}
	w.inv = [2][2]float64{
		{cd[1][1] / det, -cd[0][1] / det},
		{-cd[1][0] / det, cd[0][0] / det},
	}
	return w, nil
}

// NewCelestialWCSFromCards reads CTYPE/CRVAL/CRPIX and CD, PC+CDELT or
// CDELT+CROTA2 keywords of axes 1 and 2.
func NewCelestialWCSFromCards(c Cards) (*CelestialWCS, error) {
	ctype1 := strings.ToUpper(c.String("CTYPE1"))
	ctype2 := strings.ToUpper(c.String("CTYPE2"))
	if !strings.HasPrefix(ctype1, "RA") || !strings.HasPrefix(ctype2, "DEC") {
		return nil, fmt.Errorf("cube: unsupported celestial axes %q/%q", ctype1, ctype2)
	}

	projection := ""
	if len(ctype1) >= 8 {
		projection = strings.TrimSpace(ctype1[5:8])
	}

	var cd [2][2]float64
	switch {
	case c.Has("CD1_1") || c.Has("CD2_2"):
		cd = [2][2]float64{
			{c.FloatOr("CD1_1", 0), c.FloatOr("CD1_2", 0)},
			{c.FloatOr("CD2_1", 0), c.FloatOr("CD2_2", 0)},
		}

	default:
		cdelt1, ok1 := c.Float("CDELT1")
		cdelt2, ok2 := c.Float("CDELT2")
		if !ok1 || !ok2 {
			return nil, errors.New("cube: celestial axes have no pixel scale")
		}

		pc := [2][2]float64{
			{c.FloatOr("PC1_1", 1), c.FloatOr("PC1_2", 0)},
			{c.FloatOr("PC2_1", 0), c.FloatOr("PC2_2", 1)},
		}
		if rota, ok := c.Float("CROTA2"); ok && !c.Has("PC1_1") {
			r := rota * deg2rad
			pc = [2][2]float64{
				{math.Cos(r), -math.Sin(r) * cdelt2 / cdelt1},
				{math.Sin(r) * cdelt1 / cdelt2, math.Cos(r)},
			}
		}
		cd = [2][2]float64{
			{cdelt1 * pc[0][0], cdelt1 * pc[0][1]},
			{cdelt2 * pc[1][0], cdelt2 * pc[1][1]},
		}
	}

	w, err := NewCelestialWCS(projection,
		[2]float64{c.FloatOr("CRVAL1", 0), c.FloatOr("CRVAL2", 0)},
		[2]float64{c.FloatOr("CRPIX1", 1), c.FloatOr("CRPIX2", 1)},
		cd)
	if err != nil {
		return nil, err
	}
	if lp, ok := c.Float("LONPOLE"); ok {
		w.LonPole = lp
	}
	return w, nil
}

// PixelScale returns the geometric mean pixel size in degrees.
func (w *CelestialWCS) PixelScale() float64 {
	return math.Sqrt(math.Abs(w.CD[0][0]*w.CD[1][1] - w.CD[0][1]*w.CD[1][0]))
}

// PixelToWorld converts 1-based pixel coordinates to RA/Dec in degrees.
func (w *CelestialWCS) PixelToWorld(px, py float64) (ra, dec float64, err error) {
	dx, dy := px-w.RefPixel[0], py-w.RefPixel[1]
	x := w.CD[0][0]*dx + w.CD[0][1]*dy
	y := w.CD[1][0]*dx + w.CD[1][1]*dy

	if !w.zenithal() {
		return w.RefWorld[0] + x/math.Cos(w.RefWorld[1]*deg2rad), w.RefWorld[1] + y, nil
	}

	r := math.Hypot(x, y)
	phi := math.Atan2(x, -y)
	theta, err := w.nativeLatitude(r)
	if err != nil {
		return 0, 0, err
	}

	ra, dec = w.nativeToCelestial(phi, theta)
	return ra, dec, nil
}

// WorldToPixel converts RA/Dec in degrees to 1-based pixel coordinates.
func (w *CelestialWCS) WorldToPixel(ra, dec float64) (px, py float64, err error) {
	var x, y float64

	if w.zenithal() {
		phi, theta := w.celestialToNative(ra, dec)
		r, err := w.nativeRadius(theta)
		if err != nil {
			return 0, 0, err
		}
		x = r * math.Sin(phi)
		y = -r * math.Cos(phi)
	} else {
		dra := math.Remainder(ra-w.RefWorld[0], 360)
		x = dra * math.Cos(w.RefWorld[1]*deg2rad)
		y = dec - w.RefWorld[1]
	}

	px = w.inv[0][0]*x + w.inv[0][1]*y + w.RefPixel[0]
	py = w.inv[1][0]*x + w.inv[1][1]*y + w.RefPixel[1]
	return px, py, nil
}

func (w *CelestialWCS) zenithal() bool {
	switch w.Projection {
	case "TAN", "SIN", "ARC", "STG", "ZEA":
		return true
	default:
		return false
	}
}

// nativeLatitude returns theta (radians) for a projection-plane radius in degrees.
func (w *CelestialWCS) nativeLatitude(r float64) (float64, error) {
	rr := r * deg2rad
	switch w.Projection {
	case "TAN":
		return math.Atan2(1, rr), nil
	case "SIN":
		if rr > 1 {
			return 0, fmt.Errorf("cube: pixel outside SIN projection boundary")
		}
		return math.Acos(rr), nil
	case "ARC":
		return math.Pi/2 - rr, nil
	case "STG":
		return math.Pi/2 - 2*math.Atan(rr/2), nil
	case "ZEA":
		if rr > 2 {
			return 0, fmt.Errorf("cube: pixel outside ZEA projection boundary")
		}
		return math.Pi/2 - 2*math.Asin(rr/2), nil
	}
	return 0, fmt.Errorf("cube: unsupported projection %q", w.Projection)
}

// nativeRadius returns the projection-plane radius in degrees for theta (radians).
func (w *CelestialWCS) nativeRadius(theta float64) (float64, error) {
	var r float64
	switch w.Projection {
	case "TAN":
		if theta <= 0 {
			return 0, fmt.Errorf("cube: position outside TAN hemisphere")
		}
		r = math.Cos(theta) / math.Sin(theta)
	case "SIN":
		if theta < 0 {
			return 0, fmt.Errorf("cube: position outside SIN hemisphere")
		}
		r = math.Cos(theta)
	case "ARC":
		r = math.Pi/2 - theta
	case "STG":
		r = 2 * math.Tan((math.Pi/2-theta)/2)
	case "ZEA":
		r = 2 * math.Sin((math.Pi/2-theta)/2)
	default:
		return 0, fmt.Errorf("cube: unsupported projection %q", w.Projection)
	}
	return r * rad2deg, nil
}

func (w *CelestialWCS) nativeToCelestial(phi, theta float64) (ra, dec float64) {
	a0, d0 := w.RefWorld[0]*deg2rad, w.RefWorld[1]*deg2rad
	dphi := phi - w.LonPole*deg2rad

	sinT, cosT := math.Sincos(theta)
	sinD0, cosD0 := math.Sincos(d0)

	x := -cosT * math.Sin(dphi)
	y := sinT*cosD0 - cosT*sinD0*math.Cos(dphi)
	z := sinT*sinD0 + cosT*cosD0*math.Cos(dphi)

	// atan2 keeps full precision close to the poles where asin does not.
	dec = math.Atan2(z, math.Hypot(x, y))
	ra = a0 + math.Atan2(x, y)

	ra = math.Mod(ra*rad2deg+360, 360)
	return ra, dec * rad2deg
}

func (w *CelestialWCS) celestialToNative(ra, dec float64) (phi, theta float64) {
	a0, d0 := w.RefWorld[0]*deg2rad, w.RefWorld[1]*deg2rad
	da := ra*deg2rad - a0

	sinD, cosD := math.Sincos(dec * deg2rad)
	sinD0, cosD0 := math.Sincos(d0)

	x := -cosD * math.Sin(da)
	y := sinD*cosD0 - cosD*sinD0*math.Cos(da)
	z := sinD*sinD0 + cosD*cosD0*math.Cos(da)

	phi = w.LonPole*deg2rad + math.Atan2(x, y)
	theta = math.Atan2(z, math.Hypot(x, y))
	return phi, theta
}
