package sim

import (
	"github.com/shopspring/decimal"

	"github.com/falculator/falculator/config"
	"github.com/falculator/falculator/core"
	"github.com/falculator/falculator/item"
)

// withholdFuncFor returns the item.WithholdFunc a tick should use for the
// given tax mode. NoTax withholds nothing; FlatTax withholds
// taxPercent% of every gross amount it's handed, on both Savings interest
// and any item's cash_in, per the Config's tax_percent. AustralianComprehensive
// is accepted at the config boundary but behaves as NoTax in this core —
// it is a stub for a fuller tax engine this module doesn't implement.
func withholdFuncFor(mode config.TaxMode, taxPercent core.Money) item.WithholdFunc {
	switch mode {
	case config.TaxFlat:
		return flatTaxWithhold(taxPercent)
	default:
		return noTaxWithhold
	}
}

func noTaxWithhold(gross core.Money) (net, tax core.Money) {
	return gross, core.Zero
}

func flatTaxWithhold(taxPercent core.Money) item.WithholdFunc {
	rate := taxPercent.Decimal()
	return func(gross core.Money) (net, tax core.Money) {
		if gross.IsZero() {
			return gross, core.Zero
		}
		tax = gross.Mul(rate).Div(decimal.NewFromInt(100))
		net = gross.Sub(tax)
		return net, tax
	}
}
