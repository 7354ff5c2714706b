package region

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseCoord parses a coordinate pair. Sky longitudes in sexagesimal form
// ("10:21:30.5" or "10h21m30.5s") are hours; decimal values are degrees.
func parseCoord(xs, ys string, system System) (Coord, error) {
	if system == Image {
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return Coord{}, fmt.Errorf("invalid x coordinate %q", xs)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return Coord{}, fmt.Errorf("invalid y coordinate %q", ys)
		}
		return Coord{X: x, Y: y}, nil
	}

	ra, err := parseLongitude(xs)
	if err != nil {
		return Coord{}, err
	}
	dec, err := parseLatitude(ys)
	if err != nil {
		return Coord{}, err
	}
	return Coord{X: ra, Y: dec}, nil
}

func parseLongitude(s string) (float64, error) {
	switch {
	case strings.ContainsAny(s, ":h"):
		v, err := sexagesimal(s, "hms")
		if err != nil {
			return 0, fmt.Errorf("invalid right ascension %q", s)
		}
		return v * 15, nil

	default:
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "d"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid right ascension %q", s)
		}
		return v, nil
	}
}

func parseLatitude(s string) (float64, error) {
	var v float64
	var err error
	if strings.ContainsAny(s, ":m") {
		v, err = sexagesimal(s, "dms")
	} else {
		v, err = strconv.ParseFloat(strings.TrimSuffix(s, "d"), 64)
	}
	if err != nil || v < -90 || v > 90 {
		return 0, fmt.Errorf("invalid declination %q", s)
	}
	return v, nil
}

// sexagesimal parses "a:b:c" or "a<u1>b<u2>c<u3>" where units are the three
// letters of units, e.g. "hms" or "dms".
func sexagesimal(s, units string) (float64, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimLeft(s, "+-")

	var parts []string
	if strings.Contains(s, ":") {
		parts = strings.Split(s, ":")
	} else {
		parts = strings.FieldsFunc(s, func(r rune) bool {
			return strings.ContainsRune(units, r)
		})
	}
	if len(parts) == 0 || len(parts) > 3 {
		return 0, fmt.Errorf("malformed sexagesimal value %q", s)
	}

	var v float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || f < 0 {
			return 0, fmt.Errorf("malformed sexagesimal value %q", s)
		}
		v += f / math.Pow(60, float64(i))
	}
	if neg {
		v = -v
	}
	return v, nil
}

// parseSize parses a length with an optional DS9 unit suffix: " (arcsec),
// ' (arcmin), d (degrees), r (radians), p or i (pixels). Lengths without a
// unit are pixels in the image system and degrees otherwise.
func parseSize(s string, system System) (Size, error) {
	if s == "" {
		return Size{}, fmt.Errorf("empty size")
	}

	unit := s[len(s)-1]
	num := s[:len(s)-1]
	scale, pixels := 1.0, false

	switch unit {
	case '"':
		scale = 1.0 / 3600
	case '\'':
		scale = 1.0 / 60
	case 'd':
	case 'r':
		scale = 180 / math.Pi
	case 'p', 'i':
		pixels = true
	default:
		num = s
		pixels = system == Image
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v < 0 {
		return Size{}, fmt.Errorf("invalid size %q", s)
	}
	return Size{Value: v * scale, Pixels: pixels}, nil
}

func parseAngle(s string) (float64, error) {
	scale := 1.0
	switch {
	case strings.HasSuffix(s, "d"):
		s = strings.TrimSuffix(s, "d")
	case strings.HasSuffix(s, "r"):
		s = strings.TrimSuffix(s, "r")
		scale = 180 / math.Pi
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid angle %q", s)
	}
	return v * scale, nil
}
