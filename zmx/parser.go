// Package zmx parses Zemax OpticStudio sequential lens files (.zmx)
// into surface groups. The format is line oriented: a SURF line opens
// a surface block and the following keyword lines set its properties
// until the next SURF. Files exported by OpticStudio are usually
// UTF-16LE; plain UTF-8 exports are accepted too.
//
// Parsing is tolerant. Unrecognized keywords and malformed property
// lines are skipped so that files from different OpticStudio versions
// still load; only a file with no surfaces at all is rejected.
package zmx

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/opticalblackbox/obb-go"
)

// ErrNoSurfaces is returned when a file contains no SURF records.
var ErrNoSurfaces = errors.New("zmx: no surfaces found")

// Parser reads Zemax .zmx files. The zero value is ready to use.
type Parser struct{}

var _ obb.Parser = (*Parser)(nil)

// New returns a Zemax parser.
func New() *Parser {
	return &Parser{}
}

// Extensions implements obb.Parser.
func (p *Parser) Extensions() []string {
	return []string{".zmx"}
}

// ParseFile parses the .zmx file at path.
func (p *Parser) ParseFile(path string) (*obb.SurfaceGroup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("zmx: open %s: %w", path, err)
	}
	defer f.Close()
	return p.Parse(f)
}

// Parse reads a complete .zmx document from r.
func (p *Parser) Parse(r io.Reader) (*obb.SurfaceGroup, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zmx: read: %w", err)
	}
	return p.parseContent(decodeText(raw))
}

// ParseFile parses path with the default parser.
func ParseFile(path string) (*obb.SurfaceGroup, error) {
	return New().ParseFile(path)
}

// Parse reads a .zmx document from r with the default parser.
func Parse(r io.Reader) (*obb.SurfaceGroup, error) {
	return New().Parse(r)
}

func (p *Parser) parseContent(content string) (*obb.SurfaceGroup, error) {
	var (
		raws        []*rawSurface
		current     *rawSurface
		wavelengths []float64
		stopSurface *int
	)

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		keyword := strings.ToUpper(fields[0])
		if ignoredKeywords[keyword] {
			continue
		}

		switch {
		case keyword == kwSurf:
			if current != nil {
				raws = append(raws, current)
			}
			number := len(raws)
			if len(fields) > 1 {
				if n, err := strconv.Atoi(fields[1]); err == nil {
					number = n
				}
			}
			current = newRawSurface(number)

		case current != nil:
			if keyword == kwStop {
				n := current.number
				stopSurface = &n
				continue
			}
			parseProperty(current, keyword, fields)

		case keyword == kwWavm:
			if w, ok := parseWavelength(fields); ok {
				wavelengths = append(wavelengths, w)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("zmx: scan: %w", err)
	}
	if current != nil {
		raws = append(raws, current)
	}
	if len(raws) == 0 {
		return nil, ErrNoSurfaces
	}

	surfaces := make([]obb.Surface, len(raws))
	for i, raw := range raws {
		surfaces[i] = raw.build()
	}

	group, err := obb.NewSurfaceGroup(surfaces)
	if err != nil {
		return nil, fmt.Errorf("zmx: %w", err)
	}
	if len(wavelengths) > 0 {
		group.WavelengthsNm = wavelengths
		group.PrimaryWavelengthIndex = 0
	}
	group.StopSurface = stopSurface
	return group, nil
}

// parseProperty applies one keyword line to the open surface block.
// Malformed values are skipped.
func parseProperty(s *rawSurface, keyword string, fields []string) {
	if len(fields) < 2 {
		return
	}
	arg := fields[1]

	switch keyword {
	case kwType:
		s.zemaxType = strings.ToUpper(arg)
	case kwCurv:
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			s.curvature = v
		}
	case kwThic:
		s.thickness = parseThickness(arg)
	case kwGlas:
		s.material = arg
	case kwDiam:
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			s.semiDiam = v
		}
	case kwConi:
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			s.conic = v
		}
	case kwParm:
		if len(fields) < 3 {
			return
		}
		index, err := strconv.Atoi(arg)
		if err != nil {
			return
		}
		if v, err := strconv.ParseFloat(fields[2], 64); err == nil {
			s.parm[index] = v
		}
	case kwDecX:
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			s.decenterX = v
		}
	case kwDecY:
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			s.decenterY = v
		}
	case kwTiltX:
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			s.tiltX = v
		}
	case kwTiltY:
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			s.tiltY = v
		}
	}
}

// parseThickness handles the infinity spellings used for object
// distances; anything unparseable counts as zero.
func parseThickness(value string) float64 {
	if isInfinityString(value) {
		return math.Inf(1)
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseWavelength reads a WAVM line: WAVM <index> <wavelength_um>
// <weight>. Values convert from micrometers to nanometers.
func parseWavelength(fields []string) (float64, bool) {
	if len(fields) < 3 {
		return 0, false
	}
	um, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || um <= 0 {
		return 0, false
	}
	return um * 1000, true
}

// decodeText converts raw file bytes to a string. OpticStudio writes
// UTF-16LE with a BOM; older exports are plain 8-bit text.
func decodeText(raw []byte) string {
	switch {
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		return decodeUTF16LE(raw[2:])
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		return string(raw[3:])
	case looksUTF16LE(raw):
		return decodeUTF16LE(raw)
	}
	return string(raw)
}

// looksUTF16LE sniffs BOM-less UTF-16LE: ASCII-heavy content shows a
// NUL in every second byte.
func looksUTF16LE(raw []byte) bool {
	if len(raw) < 4 {
		return false
	}
	n := len(raw)
	if n > 256 {
		n = 256
	}
	var zeros int
	for i := 1; i < n; i += 2 {
		if raw[i] == 0 {
			zeros++
		}
	}
	return zeros > n/4
}

func decodeUTF16LE(raw []byte) string {
	u16 := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		u16 = append(u16, uint16(raw[i])|uint16(raw[i+1])<<8)
	}
	return string(utf16.Decode(u16))
}
