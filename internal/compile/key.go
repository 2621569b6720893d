package compile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Step is a root section encoded as the last segment of a file name.
type Step string

const (
	Maturation   Step = "M"
	Elongation   Step = "E"
	CellDivision Step = "CD"
)

// CanonicalSteps returns the steps in presentation order.
func CanonicalSteps() []Step { return []Step{Maturation, Elongation, CellDivision} }

// ParseStep matches s exactly against the known steps.
func ParseStep(s string) (Step, bool) {
	switch Step(s) {
	case Maturation, Elongation, CellDivision:
		return Step(s), true
	}
	return "", false
}

// Label is the human-readable section name.
func (s Step) Label() string {
	switch s {
	case Maturation:
		return "Maturation"
	case Elongation:
		return "Elongation"
	case CellDivision:
		return "Cell Division"
	}
	return string(s)
}

// MalformedIdentifierError reports a file name that does not follow the
// <date>-...-<step> convention.
type MalformedIdentifierError struct {
	Path   string
	Reason string
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("malformed identifier %q: %s", e.Path, e.Reason)
}

// Key identifies one compiled series.
type Key struct {
	Date  string
	Param string
	Step  string
}

// String renders the key as date[-param]-step.
func (k Key) String() string {
	if k.Param == "" {
		return k.Date + "-" + k.Step
	}
	return k.Date + "-" + k.Param + "-" + k.Step
}

// Identify derives a key from the base name of path without its extension.
func Identify(path, param string) (Key, error) {
	base := filepath.Base(path)
	k, err := IdentifyStem(strings.TrimSuffix(base, filepath.Ext(base)), param)
	var me *MalformedIdentifierError
	if errors.As(err, &me) {
		me.Path = path
	}
	return k, err
}

// IdentifyStem derives a key from a file stem taken as is. The first hyphen
// segment is the date and the last is the step; the step is not validated.
func IdentifyStem(stem, param string) (Key, error) {
	segs := strings.Split(stem, "-")
	if len(segs) < 2 {
		return Key{}, &MalformedIdentifierError{Path: stem, Reason: "expected at least two hyphen-separated segments"}
	}
	date, step := segs[0], segs[len(segs)-1]
	if date == "" || step == "" {
		return Key{}, &MalformedIdentifierError{Path: stem, Reason: "empty date or step segment"}
	}
	return Key{Date: date, Param: param, Step: step}, nil
}
