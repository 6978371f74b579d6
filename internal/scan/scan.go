// Package scan classifies the text decoded by a barcode or QR scanner.
//
// Location QR codes carry "<house> > <room> > <storage>"; anything else is an
// opaque barcode. Barcode formats are not validated.
package scan

import (
	"fmt"
	"strings"

	"github.com/erazemk/shramba/internal/model"
)

// Mode is what the caller expects the scan to be.
type Mode string

// Scan modes.
const (
	// ModeBarcode treats every scan as a barcode.
	ModeBarcode Mode = "barcode"
	// ModeLocation accepts only location paths.
	ModeLocation Mode = "location"
	// ModeSmart tries a location path first and falls back to a barcode.
	ModeSmart Mode = "smart"
)

// ParseMode validates a mode name. An empty name means ModeSmart.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case "":
		return ModeSmart, nil
	case ModeBarcode, ModeLocation, ModeSmart:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown scan mode %q", model.ErrValidation, s)
	}
}

// Kind of a classified scan.
type Kind string

// Scan kinds.
const (
	KindBarcode  Kind = "barcode"
	KindLocation Kind = "location"
)

// Result is a classified scan.
type Result struct {
	Kind     Kind
	Barcode  string
	Location model.Location
}

// ParseLocation parses a location QR payload. It needs exactly three
// non-empty parts separated by " > ".
func ParseLocation(text string) (model.Location, error) {
	parts := strings.Split(strings.TrimSpace(text), model.PathSeparator)
	if len(parts) != 3 {
		return model.Location{}, fmt.Errorf("%w: not a valid location: %q", model.ErrFormat, text)
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
		if parts[i] == "" {
			return model.Location{}, fmt.Errorf("%w: not a valid location: %q", model.ErrFormat, text)
		}
	}
	return model.Location{House: parts[0], Room: parts[1], Storage: parts[2]}, nil
}

// FormatLocation returns the QR payload for a storage node.
func FormatLocation(loc model.Location) (string, error) {
	if loc.Level() != model.LevelStorage || !loc.Valid() {
		return "", fmt.Errorf("%w: QR codes are only made for storages", model.ErrValidation)
	}
	return loc.String(), nil
}

// Classify decides what a scan is under the given mode.
func Classify(text string, mode Mode) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, fmt.Errorf("%w: empty scan", model.ErrValidation)
	}

	switch mode {
	case ModeBarcode:
		return Result{Kind: KindBarcode, Barcode: text}, nil
	case ModeLocation:
		loc, err := ParseLocation(text)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: KindLocation, Location: loc}, nil
	default:
		if loc, err := ParseLocation(text); err == nil {
			return Result{Kind: KindLocation, Location: loc}, nil
		}
		return Result{Kind: KindBarcode, Barcode: text}, nil
	}
}
