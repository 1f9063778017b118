package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"quoteflow/internal"
)

// Catalog is the read-only pricing snapshot for one run: the product
// price list plus the ordered discount tier table. Nothing mutates it
// after Load.
type Catalog struct {
	Prices map[string]internal.PriceEntry
	Tiers  []internal.DiscountTier
}

type discountRules struct {
	Tiers []internal.DiscountTier `json:"tiers"`
}

// Load reads the price list and discount rules from the given paths,
// falling back to built-in defaults when a file does not exist. A
// malformed file or an inconsistent tier table is fatal.
func Load(priceListPath, discountRulesPath string) (Catalog, error) {
	prices, err := loadPriceList(priceListPath)
	if err != nil {
		return Catalog{}, err
	}

	tiers, err := loadDiscountTiers(discountRulesPath)
	if err != nil {
		return Catalog{}, err
	}

	if err := ValidateTiers(tiers); err != nil {
		return Catalog{}, err
	}

	return Catalog{Prices: prices, Tiers: tiers}, nil
}

func loadPriceList(path string) (map[string]internal.PriceEntry, error) {
	blob, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultPriceList(), nil
	}
	if err != nil {
		return nil, err
	}

	var prices map[string]internal.PriceEntry
	if err := json.Unmarshal(blob, &prices); err != nil {
		return nil, fmt.Errorf("parse price list %s: %w", path, err)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("price list %s is empty", path)
	}
	for name, entry := range prices {
		if entry.Price < 0 {
			return nil, fmt.Errorf("price list %s: negative price for %q", path, name)
		}
	}
	return prices, nil
}

func loadDiscountTiers(path string) ([]internal.DiscountTier, error) {
	blob, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultDiscountTiers(), nil
	}
	if err != nil {
		return nil, err
	}

	var rules discountRules
	if err := json.Unmarshal(blob, &rules); err != nil {
		return nil, fmt.Errorf("parse discount rules %s: %w", path, err)
	}
	return rules.Tiers, nil
}

// ValidateTiers checks the tier table before any email is processed: the
// intervals must cover a contiguous range starting at 0, ordered and
// non-overlapping, with at most the last tier unbounded.
func ValidateTiers(tiers []internal.DiscountTier) error {
	for i, tier := range tiers {
		if tier.Discount < 0 || tier.Discount > 1 {
			return fmt.Errorf("discount tier %d: discount %g outside [0,1]", i, tier.Discount)
		}
		if i == 0 && tier.MinAmount != 0 {
			return fmt.Errorf("discount tier 0: must start at 0, got min_amount %g", tier.MinAmount)
		}
		if tier.MinAmount < 0 {
			return fmt.Errorf("discount tier %d: negative min_amount %g", i, tier.MinAmount)
		}
		if tier.MaxAmount != nil && *tier.MaxAmount <= tier.MinAmount {
			return fmt.Errorf("discount tier %d: max_amount %g not above min_amount %g", i, *tier.MaxAmount, tier.MinAmount)
		}
		if tier.MaxAmount == nil && i != len(tiers)-1 {
			return fmt.Errorf("discount tier %d: only the last tier may be unbounded", i)
		}
		if i > 0 {
			prev := tiers[i-1]
			if prev.MaxAmount == nil || tier.MinAmount != *prev.MaxAmount {
				return fmt.Errorf("discount tier %d: min_amount %g does not continue previous tier", i, tier.MinAmount)
			}
		}
	}
	return nil
}

// DefaultPriceList is the bundled demo catalog, used when no price list
// file is configured.
func DefaultPriceList() map[string]internal.PriceEntry {
	return map[string]internal.PriceEntry{
		"Widget Pro":     {Price: 25.00, Unit: "piece", Description: "Professional-grade widget"},
		"Gadget Basic":   {Price: 15.50, Unit: "piece", Description: "Entry-level gadget"},
		"Tool Kit":       {Price: 45.00, Unit: "kit", Description: "Complete tool kit"},
		"Premium Widget": {Price: 75.00, Unit: "piece", Description: "Premium widget line"},
		"Bulk Pack":      {Price: 200.00, Unit: "pack", Description: "Bulk packaging option"},
	}
}

func DefaultDiscountTiers() []internal.DiscountTier {
	max100 := 100.0
	max500 := 500.0
	max1000 := 1000.0
	return []internal.DiscountTier{
		{MinAmount: 0, MaxAmount: &max100, Discount: 0.05},
		{MinAmount: 100, MaxAmount: &max500, Discount: 0.10},
		{MinAmount: 500, MaxAmount: &max1000, Discount: 0.15},
		{MinAmount: 1000, MaxAmount: nil, Discount: 0.20},
	}
}
