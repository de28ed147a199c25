package lineread

import (
	"strconv"
	"strings"
)

// Attr is a bitmask of display attributes decoded from SGR sequences and
// grotty overstrikes.
type Attr uint16

const (
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrInvisible
)

// ColorDefault marks an unset foreground/background.
const ColorDefault = -1

// sgrLen returns the byte length of the SGR sequence starting at data[0]
// (which must be ESC), including the terminating 'm', or -1 if data does
// not hold a well-formed "ESC [ (digit|;)* m" sequence.
func sgrLen(data []byte) int {
	if len(data) < 3 || data[0] != 0x1b || data[1] != '[' {
		return -1
	}
	i := 2
	for i < len(data) {
		c := data[i]
		if c == 'm' {
			return i + 1
		}
		if c == ';' || (c >= '0' && c <= '9') {
			i++
			continue
		}
		return -1
	}
	return -1
}

// IsSGRSequence reports whether data begins with a well-formed SGR
// sequence.
func IsSGRSequence(data []byte) bool {
	return sgrLen(data) != -1
}

// pairState tracks the pending fg/bg pair being assembled while decoding
// one SGR sequence's parameters.
type pairState struct {
	fg, bg int
}

// DecodeSGR decodes the SGR sequence at data[0..] (as identified by
// sgrLen) into attribute and color updates, given the line's current
// attribute/color state. It returns the sequence's byte length (>=1) or
// -1 if data is not an SGR sequence at all.
func DecodeSGR(data []byte, attr Attr, pairFG, pairBG int) (n int, newAttr Attr, newFG, newBG int) {
	n = sgrLen(data)
	if n == -1 {
		return -1, attr, pairFG, pairBG
	}
	if n == 3 {
		// "ESC[m" — reset.
		return n, 0, ColorDefault, ColorDefault
	}

	params := string(data[2 : n-1])
	fg, bg := pairFG, pairBG
	for _, tok := range splitParams(params) {
		switch {
		case tok == "":
			attr = 0
			fg, bg = ColorDefault, ColorDefault
		case tok == "0":
			attr = 0
			fg, bg = ColorDefault, ColorDefault
		case tok == "1":
			attr |= AttrBold
		case tok == "2":
			attr |= AttrDim
		case tok == "3":
			attr |= AttrItalic
		case tok == "4":
			attr |= AttrUnderline
		case tok == "5":
			attr |= AttrBlink
		case tok == "7":
			attr |= AttrReverse
		case tok == "8":
			attr |= AttrInvisible
		case tok == "9":
			attr |= AttrUnderline // strike-through aliased to underline
		case tok == "22":
			attr &^= AttrBold | AttrDim
		case tok == "24":
			attr &^= AttrUnderline
		case isFGStandard(tok):
			fg = standardColor(tok, 30)
		case tok == "39":
			fg = ColorDefault
		case isBGStandard(tok):
			bg = standardColor(tok, 40)
		case tok == "49":
			bg = ColorDefault
		case isFGBright(tok):
			fg = standardColor(tok, 90) + 8
		case isBGBright(tok):
			bg = standardColor(tok, 100) + 8
		default:
			// 38;5;n / 48;5;n 256-color forms are handled by the caller
			// pre-scanning for the "38;5;" / "48;5;" prefix (see
			// Decode256); anything else is an unknown parameter and is
			// ignored without being logged.
		}
	}
	return n, attr, fg, bg
}

// Decode256 scans params for "38;5;n" and "48;5;n" triples, returning the
// foreground and background 256-color indexes and which of the two were
// found. When either is found, Decoder.Feed applies only these colors and
// does not run DecodeSGR on the same sequence, so its other params are
// skipped.
func Decode256(data []byte) (fg256, bg256 int, hasFG, hasBG bool) {
	n := sgrLen(data)
	if n == -1 {
		return 0, 0, false, false
	}
	toks := splitParams(string(data[2 : n-1]))
	for i := 0; i+2 < len(toks); i++ {
		if toks[i+1] != "5" {
			continue
		}
		v, err := strconv.Atoi(toks[i+2])
		if err != nil || v < 0 || v > 255 {
			continue
		}
		switch toks[i] {
		case "38":
			fg256, hasFG = v, true
		case "48":
			bg256, hasBG = v, true
		}
	}
	return
}

func splitParams(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, ";")
}

func isFGStandard(tok string) bool { return inRange(tok, 30, 37) }
func isBGStandard(tok string) bool { return inRange(tok, 40, 47) }
func isFGBright(tok string) bool   { return inRange(tok, 90, 97) }
func isBGBright(tok string) bool   { return inRange(tok, 100, 107) }

func inRange(tok string, lo, hi int) bool {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return false
	}
	return v >= lo && v <= hi
}

func standardColor(tok string, base int) int {
	v, _ := strconv.Atoi(tok)
	return v - base
}
