package signature

import (
	"fmt"
	"strconv"
	"strings"
)

// Curve identifies a named elliptic curve. The numeric values are stored in
// archives and must not change.
type Curve uint32

const (
	CurveNone Curve = iota
	CurveSECP192R1
	CurveSECP224R1
	CurveSECP256R1
	CurveSECP384R1
	CurveSECP521R1
	CurveBP256R1
	CurveBP384R1
	CurveBP512R1
	CurveCurve25519
	CurveSECP192K1
	CurveSECP224K1
	CurveSECP256K1
	CurveCurve448
)

//nolint:gochecknoglobals
var curveNames = map[Curve]string{
	CurveNone:       "none",
	CurveSECP192R1:  "secp192r1",
	CurveSECP224R1:  "secp224r1",
	CurveSECP256R1:  "secp256r1",
	CurveSECP384R1:  "secp384r1",
	CurveSECP521R1:  "secp521r1",
	CurveBP256R1:    "bp256r1",
	CurveBP384R1:    "bp384r1",
	CurveBP512R1:    "bp512r1",
	CurveCurve25519: "curve25519",
	CurveSECP192K1:  "secp192k1",
	CurveSECP224K1:  "secp224k1",
	CurveSECP256K1:  "secp256k1",
	CurveCurve448:   "curve448",
}

//nolint:gochecknoglobals
var curveAliases = map[string]Curve{
	"p224":  CurveSECP224R1,
	"p-224": CurveSECP224R1,
	"p256":  CurveSECP256R1,
	"p-256": CurveSECP256R1,
	"p384":  CurveSECP384R1,
	"p-384": CurveSECP384R1,
	"p521":  CurveSECP521R1,
	"p-521": CurveSECP521R1,
}

func (c Curve) String() string {
	if name, ok := curveNames[c]; ok {
		return name
	}

	return fmt.Sprintf("curve(%d)", uint32(c))
}

// Supported reports whether the curve can be used for signing.
func (c Curve) Supported() bool {
	return implementation(c) != nil
}

// ParseCurve resolves a curve from its name, a common alias or its numeric id.
func ParseCurve(s string) (Curve, error) {
	name := strings.ToLower(strings.TrimSpace(s))

	for curve, n := range curveNames {
		if n == name {
			return curve, nil
		}
	}

	if curve, ok := curveAliases[name]; ok {
		return curve, nil
	}

	if id, err := strconv.ParseUint(name, 10, 32); err == nil {
		if _, ok := curveNames[Curve(id)]; ok {
			return Curve(id), nil
		}
	}

	return CurveNone, fmt.Errorf("%w: %q", ErrUnsupportedCurve, s)
}

// SupportedCurves lists the curves with an implementation, in id order.
func SupportedCurves() []Curve {
	var curves []Curve

	for c := CurveNone; c <= CurveCurve448; c++ {
		if c.Supported() {
			curves = append(curves, c)
		}
	}

	return curves
}
