package sink

import (
	"bytes"
	"encoding/xml"
)

const (
	fontHeightRatio = 0.6
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 20.0
	labelMinChars   = 3
)

// fontSize returns the largest font in [fontSizeMin, fontSizeMax] that fits
// a label of textLen characters into w x h.
func fontSize(w, h float64, textLen int) float64 {
	n := max(1, textLen)
	byHeight := h * fontHeightRatio
	byWidth := (w * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// fitLabel truncates label to what fits into w x h at size, or returns
// false when not even a few characters fit.
func fitLabel(label string, w, h, size float64) (string, bool) {
	if h < size*1.2 {
		return "", false
	}
	maxChars := int(w * fontWidthRatio / (size * fontCharWidth))
	if maxChars < labelMinChars {
		return "", false
	}
	runes := []rune(label)
	if len(runes) <= maxChars {
		return label, true
	}
	return string(runes[:maxChars-2]) + "..", true
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
