package zmx

import (
	"fmt"
	"strings"

	"github.com/opticalblackbox/obb-go"
)

// Line keywords from the Zemax sequential file format.
const (
	kwSurf  = "SURF"
	kwType  = "TYPE"
	kwCurv  = "CURV"
	kwThic  = "THIC"
	kwGlas  = "GLAS"
	kwDiam  = "DIAM"
	kwConi  = "CONI"
	kwStop  = "STOP"
	kwParm  = "PARM"
	kwWavm  = "WAVM"
	kwDecX  = "DECX"
	kwDecY  = "DECY"
	kwTiltX = "TILTX"
	kwTiltY = "TILTY"
)

// surfaceTypes maps Zemax surface type names onto the supported set.
// PARAXIAL and COORDBRK collapse to standard.
var surfaceTypes = map[string]obb.SurfaceType{
	"STANDARD": obb.SurfaceStandard,
	"EVENASPH": obb.SurfaceEvenAsphere,
	"ODDASPH":  obb.SurfaceOddAsphere,
	"TOROIDAL": obb.SurfaceToroidal,
	"PARAXIAL": obb.SurfaceStandard,
	"COORDBRK": obb.SurfaceStandard,
}

// infinityStrings are the spellings Zemax uses for an infinite
// thickness or radius.
var infinityStrings = map[string]bool{
	"INFINITY": true,
	"INF":      true,
	"1.0E+10":  true,
	"1E+10":    true,
	"1E10":     true,
}

// ignoredKeywords are recognized but carry nothing the surface model
// stores.
var ignoredKeywords = map[string]bool{
	"COAT": true,
	"SQAP": true,
	"OBSC": true,
	"MIRR": true,
	"CONF": true,
	"MOFF": true,
	"MAZH": true,
	"OPDX": true,
	"COMM": true,
	"NAME": true,
	"HIDE": true,
	"SLAB": true,
}

func isInfinityString(s string) bool {
	return infinityStrings[strings.ToUpper(strings.TrimSpace(s))]
}

// parmCoeffName converts a PARM index to an aspheric coefficient name:
// PARM 1 is A2, PARM 2 is A4, and so on.
func parmCoeffName(index int) string {
	return fmt.Sprintf("A%d", index*2)
}
