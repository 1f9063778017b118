package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"quoteflow/internal"
)

func fp(v float64) *float64 { return &v }

func TestValidateTiers(t *testing.T) {
	cases := []struct {
		name    string
		tiers   []internal.DiscountTier
		wantErr bool
	}{
		{
			name:  "default table",
			tiers: DefaultDiscountTiers(),
		},
		{
			name: "gap between tiers",
			tiers: []internal.DiscountTier{
				{MinAmount: 0, MaxAmount: fp(100), Discount: 0.05},
				{MinAmount: 200, MaxAmount: fp(500), Discount: 0.10},
			},
			wantErr: true,
		},
		{
			name: "first tier starts above zero",
			tiers: []internal.DiscountTier{
				{MinAmount: 50, MaxAmount: fp(500), Discount: 0.10},
			},
			wantErr: true,
		},
		{
			name: "inverted bounds",
			tiers: []internal.DiscountTier{
				{MinAmount: 0, MaxAmount: fp(100), Discount: 0.05},
				{MinAmount: 100, MaxAmount: fp(50), Discount: 0.10},
			},
			wantErr: true,
		},
		{
			name: "discount above one",
			tiers: []internal.DiscountTier{
				{MinAmount: 0, MaxAmount: fp(100), Discount: 1.5},
			},
			wantErr: true,
		},
		{
			name: "unbounded tier not last",
			tiers: []internal.DiscountTier{
				{MinAmount: 0, MaxAmount: nil, Discount: 0.05},
				{MinAmount: 100, MaxAmount: fp(500), Discount: 0.10},
			},
			wantErr: true,
		},
		{
			name:  "empty table",
			tiers: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTiers(tc.tiers)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	tmp := t.TempDir()
	cat, err := Load(filepath.Join(tmp, "missing.json"), filepath.Join(tmp, "missing_rules.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Prices) == 0 || len(cat.Tiers) != 4 {
		t.Fatalf("defaults not loaded: %d prices, %d tiers", len(cat.Prices), len(cat.Tiers))
	}
}

func TestLoadRejectsBadTierFile(t *testing.T) {
	tmp := t.TempDir()
	rulesPath := filepath.Join(tmp, "rules.json")
	blob := `{"tiers":[{"min_amount":0,"max_amount":100,"discount":0.05},{"min_amount":50,"max_amount":500,"discount":0.10}]}`
	if err := os.WriteFile(rulesPath, []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(filepath.Join(tmp, "missing.json"), rulesPath); err == nil {
		t.Fatal("expected overlapping tiers to be rejected")
	}
}

func TestIndexLongestFirst(t *testing.T) {
	idx := BuildIndex(map[string]internal.PriceEntry{
		"Widget":         {Price: 10, Unit: "piece"},
		"Premium Widget": {Price: 75, Unit: "piece"},
	})

	names := idx.Names()
	if names[0] != "Premium Widget" {
		t.Fatalf("expected longest name first, got %v", names)
	}

	canonical, entry, ok := idx.Resolve("premium widget")
	if !ok || canonical != "Premium Widget" || entry.Price != 75 {
		t.Fatalf("resolve failed: %v %v %v", canonical, entry, ok)
	}

	if _, _, ok := idx.Resolve("Custom Product"); ok {
		t.Fatal("unexpected resolve for unknown product")
	}
}
