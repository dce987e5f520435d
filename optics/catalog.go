package optics

import (
	"sort"
	"strings"
)

const (
	airIndex     = 1.0
	unknownIndex = 1.5
)

// glassCatalog maps glass names to their refractive index at the
// helium d-line (587.56 nm). Values from the Schott catalog and
// common manufacturer data.
var glassCatalog = map[string]float64{
	// Schott crown glasses
	"N-BK7":    1.5168,
	"N-K5":     1.5224,
	"N-SK16":   1.6204,
	"N-SK2":    1.6074,
	"N-PSK53A": 1.6180,
	"N-SSK8":   1.6177,
	// Schott flint glasses
	"N-SF11": 1.7847,
	"N-SF6":  1.8052,
	"N-SF5":  1.6727,
	"N-SF1":  1.7174,
	"N-SF2":  1.6477,
	"SF5":    1.6727,
	"F2":     1.6200,
	// Schott lanthanum glasses
	"N-LAK22": 1.6516,
	"N-LAF2":  1.7440,
	"N-LAK9":  1.6910,
	"N-LAF7":  1.7495,
	// Schott special glasses
	"N-FK51A": 1.4866,
	"N-PK52A": 1.4970,
	// Crystals and other materials
	"SILICA":       1.4585,
	"FUSED_SILICA": 1.4585,
	"FUSEDSILICA":  1.4585,
	"CAF2":         1.4338,
	"SAPPHIRE":     1.7682,
	"MGF2":         1.3777,
	"BAF2":         1.4741,
	"ZNS":          2.3525,
	"ZNSE":         2.4028,
	"GE":           4.0026,
	"SI":           3.4223,
	// Legacy Schott names
	"BK7":   1.5168,
	"SF11":  1.7847,
	"SF6":   1.8052,
	"SK16":  1.6204,
	"LAK22": 1.6516,
}

// RefractiveIndex returns the index of a material. Empty material
// means air. Unknown materials return a nominal 1.5.
//
// Only the d-line value is stored; the wavelength argument is accepted
// for interface stability but dispersion is not modeled.
func RefractiveIndex(material string, wavelengthNm float64) float64 {
	if strings.TrimSpace(material) == "" {
		return airIndex
	}
	upper := strings.ToUpper(strings.TrimSpace(material))
	if n, ok := glassCatalog[upper]; ok {
		return n
	}
	normalized := normalizeName(upper)
	for name, n := range glassCatalog {
		if normalizeName(name) == normalized {
			return n
		}
	}
	return unknownIndex
}

// IsMaterialKnown reports whether the catalog has an entry for the
// material. Air always counts as known.
func IsMaterialKnown(material string) bool {
	if strings.TrimSpace(material) == "" {
		return true
	}
	upper := strings.ToUpper(strings.TrimSpace(material))
	if _, ok := glassCatalog[upper]; ok {
		return true
	}
	normalized := normalizeName(upper)
	for name := range glassCatalog {
		if normalizeName(name) == normalized {
			return true
		}
	}
	return false
}

// Materials lists the catalog's glass names, sorted.
func Materials() []string {
	names := make([]string, 0, len(glassCatalog))
	for name := range glassCatalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeName(name string) string {
	name = strings.ReplaceAll(name, "-", "")
	return strings.ReplaceAll(name, " ", "")
}
