package obb

import "io"

// Parser turns a vendor design file into a surface group. Parsers for
// additional formats implement this interface; the zmx package
// provides the built-in Zemax parser.
type Parser interface {
	// Extensions lists the file extensions the parser handles,
	// lowercase with the leading dot.
	Extensions() []string
	// Parse reads a design from r.
	Parse(r io.Reader) (*SurfaceGroup, error)
	// ParseFile reads a design from a file on disk.
	ParseFile(path string) (*SurfaceGroup, error)
}

// OpticalCalculator derives first-order properties from a surface
// group at a given wavelength. The optics package provides the
// built-in paraxial implementation.
type OpticalCalculator interface {
	EFL(g *SurfaceGroup, wavelengthNm float64) float64
	BFL(g *SurfaceGroup, wavelengthNm float64) float64
	NA(g *SurfaceGroup, wavelengthNm float64) float64
}
