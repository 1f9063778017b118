package util

import "testing"

func TestParseQty(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "qty with unit", input: "need 10 Widget Pro pieces", want: 10},
		{name: "bare number", input: "Gadget Basic x 25", want: 25},
		{name: "decimal", input: "2.5 packs of Bulk Pack", want: 2.5},
		{name: "thousand separator", input: "1,000 units please", want: 1000},
		{name: "unit wins over later number", input: "5 kits by March 20", want: 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed := ParseQty(tc.input)
			if parsed.Qty == nil {
				t.Fatalf("qty is nil")
			}
			if *parsed.Qty != tc.want {
				t.Fatalf("got %v want %v", *parsed.Qty, tc.want)
			}
		})
	}
}

func TestParseQtyUnit(t *testing.T) {
	parsed := ParseQty("2 kits for the lab")
	if parsed.Unit == nil || *parsed.Unit != "kit" {
		t.Fatalf("unit=%v", parsed.Unit)
	}
	if parsed.QtyRaw == nil || *parsed.QtyRaw != "2 kits" {
		t.Fatalf("qtyRaw=%v", parsed.QtyRaw)
	}
}

func TestParseQtyNone(t *testing.T) {
	parsed := ParseQty("no numbers here")
	if parsed.Qty != nil || parsed.QtyRaw != nil {
		t.Fatalf("expected empty parse, got %+v", parsed)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{250.0, 250.0},
		{21.375, 21.38},
		{10.004, 10.0},
		{-21.375, -21.38},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Fatalf("Round2(%v)=%v want %v", tc.in, got, tc.want)
		}
	}
}
