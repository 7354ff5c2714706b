package region

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// systemNames maps DS9 coordinate system keywords to a supported system. An
// empty value marks a known but unsupported system.
var systemNames = map[string]System{
	"image":     Image,
	"physical":  Image,
	"fk5":       FK5,
	"icrs":      FK5,
	"j2000":     FK5,
	"fk4":       "",
	"b1950":     "",
	"galactic":  "",
	"ecliptic":  "",
	"linear":    "",
	"amplifier": "",
	"detector":  "",
}

// ParseFile reads a DS9 region file.
func ParseFile(path string) ([]Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening region file: %w", err)
	}
	defer f.Close()

	regions, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing region file '%s': %w", path, err)
	}
	return regions, nil
}

// Parse reads DS9 region definitions. Shapes default to the image system
// until a coordinate system keyword is seen.
func Parse(r io.Reader) ([]Region, error) {
	var (
		regions []Region
		system  = Image
		known   = true
		sysName = "image"
	)

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		content, props, _ := strings.Cut(scanner.Text(), "#")

		for _, stmt := range strings.Split(content, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}

			keyword := strings.ToLower(stmt)
			if strings.HasPrefix(keyword, "global") {
				continue
			}
			if s, ok := systemNames[keyword]; ok {
				system, known, sysName = s, s != "", keyword
				continue
			}

			if !known {
				return nil, fmt.Errorf("line %d: %w: %s", lineNo, ErrUnsupportedSystem, sysName)
			}
			reg, err := parseShape(stmt, system, lineNo)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			reg.Text = textProperty(props)
			regions = append(regions, reg)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return regions, nil
}

func parseShape(stmt string, system System, line int) (Region, error) {
	reg := Region{System: system, Line: line}

	switch stmt[0] {
	case '-':
		reg.Exclude = true
		stmt = stmt[1:]
	case '+':
		stmt = stmt[1:]
	}

	name, rest, ok := strings.Cut(stmt, "(")
	if !ok {
		return reg, fmt.Errorf("malformed shape %q", stmt)
	}
	args, _, ok := strings.Cut(rest, ")")
	if !ok {
		return reg, fmt.Errorf("unterminated shape %q", stmt)
	}
	reg.Shape = Shape(strings.ToLower(strings.TrimSpace(name)))

	fields := strings.FieldsFunc(args, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	var err error
	switch reg.Shape {
	case Circle:
		err = reg.parseArgs(fields, 1, false)
	case Ellipse, Box:
		err = reg.parseArgs(fields, 2, true)
	case Point:
		err = reg.parseArgs(fields, 0, false)
	case Polygon:
		err = reg.parsePolygon(fields)
	default:
		return reg, fmt.Errorf("%w: %s", ErrUnsupportedShape, reg.Shape)
	}
	return reg, err
}

// parseArgs reads a centre, sizes and an optional rotation angle.
func (r *Region) parseArgs(fields []string, sizes int, angle bool) error {
	want := 2 + sizes
	if len(fields) < want || (!angle && len(fields) > want) || len(fields) > want+1 {
		return fmt.Errorf("%s: unexpected number of parameters %d", r.Shape, len(fields))
	}

	c, err := parseCoord(fields[0], fields[1], r.System)
	if err != nil {
		return fmt.Errorf("%s: %w", r.Shape, err)
	}
	r.Points = []Coord{c}

	for _, f := range fields[2:want] {
		s, err := parseSize(f, r.System)
		if err != nil {
			return fmt.Errorf("%s: %w", r.Shape, err)
		}
		r.Sizes = append(r.Sizes, s)
	}

	if len(fields) > want {
		if r.Angle, err = parseAngle(fields[want]); err != nil {
			return fmt.Errorf("%s: %w", r.Shape, err)
		}
	}
	return nil
}

func (r *Region) parsePolygon(fields []string) error {
	if len(fields) < 6 || len(fields)%2 != 0 {
		return fmt.Errorf("polygon: need at least three vertices, got %d values", len(fields))
	}
	for i := 0; i < len(fields); i += 2 {
		c, err := parseCoord(fields[i], fields[i+1], r.System)
		if err != nil {
			return fmt.Errorf("polygon: %w", err)
		}
		r.Points = append(r.Points, c)
	}
	return nil
}

// textProperty extracts the text={...} property of a shape.
func textProperty(props string) string {
	i := strings.Index(props, "text=")
	if i < 0 {
		return ""
	}
	v := props[i+len("text="):]
	if v == "" {
		return ""
	}

	var end byte
	switch v[0] {
	case '{':
		end = '}'
	case '"', '\'':
		end = v[0]
	default:
		v, _, _ = strings.Cut(v, " ")
		return v
	}
	v, _, _ = strings.Cut(v[1:], string(end))
	return v
}
