package docring

import "strings"

// HelpDocumentName is the synthetic document's ring name.
const HelpDocumentName = "*help*"

// helpText lists key bindings grouped by mode, built once at startup and
// injected lazily on first 'h'.
var helpText = strings.Join([]string{
	"lsp key bindings",
	"",
	"NAVIGATION",
	"   j, DOWN, wheel-down     forward one window line",
	"   k, UP, wheel-up         backward one window line",
	"   SPACE, PAGE-DOWN        forward one page",
	"   b, PAGE-UP              backward one page",
	"   g, HOME                 go to top",
	"   G, END                  go to end",
	"   <, >                    shift left/right",
	"",
	"SEARCH",
	"   /                       search forward",
	"   ?                       search backward",
	"   n                       repeat search, same direction",
	"   p                       repeat search, opposite direction",
	"   CTRL-L                  invert/toggle match alignment policy",
	"",
	"REFERENCES",
	"   TAB                     next reference",
	"   Shift-TAB               previous reference",
	"   ENTER                   open reference under cursor",
	"",
	"TABLE OF CONTENTS",
	"   T                       build/cycle/enter TOC",
	"   ENTER                   (in TOC) jump to entry",
	"",
	"MISC",
	"   m                       open a man page",
	"   a                       apropos",
	"   B                       switch to next open document",
	"   r                       reload current document",
	"   c                       kill current document",
	"   h                       this help",
	"   q                       quit / leave TOC / kill help",
	"",
}, "\n")

// NewHelpDocument builds the synthetic help document.
func NewHelpDocument() *Document {
	d := NewBuffer(HelpDocumentName, []byte(helpText))
	d.IsHelp = true
	return d
}
