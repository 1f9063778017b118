package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	unitPattern   = regexp.MustCompile(`(?i)\b(pcs?|pieces?|units?|kits?|packs?|boxes?|sets?)\b`)
	numberPattern = regexp.MustCompile(`(?:^|[^0-9.,])(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)`)
	withUnit      = regexp.MustCompile(`(?i)(?:^|[^0-9.,])(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)\s*(pcs?|pieces?|units?|kits?|packs?|boxes?|sets?)\b`)
)

type ParsedQty struct {
	Qty    *float64
	Unit   *string
	QtyRaw *string
}

// ParseQty pulls a quantity and unit word out of free text. A number
// followed by a unit word wins over a bare number; the last bare number
// in the text wins otherwise.
func ParseQty(input string) ParsedQty {
	line := strings.ReplaceAll(input, " ", " ")

	qtyRaw := ""
	qtyToken := ""

	if wm := withUnit.FindAllStringSubmatch(line, -1); len(wm) > 0 {
		last := wm[len(wm)-1]
		qtyRaw = strings.TrimSpace(last[1] + " " + last[2])
		qtyToken = strings.TrimSpace(last[1])
	} else if nm := numberPattern.FindAllStringSubmatch(line, -1); len(nm) > 0 {
		last := nm[len(nm)-1]
		qtyRaw = strings.TrimSpace(last[1])
		qtyToken = qtyRaw
	}

	var qtyPtr *float64
	if qtyToken != "" {
		norm := strings.ReplaceAll(qtyToken, ",", "")
		if parsed, err := strconv.ParseFloat(norm, 64); err == nil {
			qtyPtr = FloatPtr(parsed)
		}
	}

	var unitPtr *string
	if um := unitPattern.FindStringSubmatch(line); len(um) > 1 {
		u := NormalizeUnit(um[1])
		unitPtr = &u
	}

	var qtyRawPtr *string
	if qtyRaw != "" {
		qtyRawPtr = &qtyRaw
	}

	return ParsedQty{Qty: qtyPtr, Unit: unitPtr, QtyRaw: qtyRawPtr}
}

// ParseQtyFirst is ParseQty with the opposite tie-break: the first
// quantity in the text wins. Used when scanning text that follows a
// product mention.
func ParseQtyFirst(input string) ParsedQty {
	line := strings.ReplaceAll(input, " ", " ")

	qtyRaw := ""
	qtyToken := ""

	if wm := withUnit.FindStringSubmatch(line); len(wm) > 0 {
		qtyRaw = strings.TrimSpace(wm[1] + " " + wm[2])
		qtyToken = strings.TrimSpace(wm[1])
	} else if nm := numberPattern.FindStringSubmatch(line); len(nm) > 0 {
		qtyRaw = strings.TrimSpace(nm[1])
		qtyToken = qtyRaw
	}

	var qtyPtr *float64
	if qtyToken != "" {
		norm := strings.ReplaceAll(qtyToken, ",", "")
		if parsed, err := strconv.ParseFloat(norm, 64); err == nil {
			qtyPtr = FloatPtr(parsed)
		}
	}

	var unitPtr *string
	if um := unitPattern.FindStringSubmatch(line); len(um) > 1 {
		u := NormalizeUnit(um[1])
		unitPtr = &u
	}

	var qtyRawPtr *string
	if qtyRaw != "" {
		qtyRawPtr = &qtyRaw
	}

	return ParsedQty{Qty: qtyPtr, Unit: unitPtr, QtyRaw: qtyRawPtr}
}

// NormalizeUnit collapses plural and abbreviated unit words to the
// singular form the catalog uses.
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch u {
	case "pc", "pcs", "piece", "pieces":
		return "piece"
	case "unit", "units":
		return "unit"
	case "kit", "kits":
		return "kit"
	case "pack", "packs":
		return "pack"
	case "box", "boxes":
		return "box"
	case "set", "sets":
		return "set"
	default:
		return u
	}
}
