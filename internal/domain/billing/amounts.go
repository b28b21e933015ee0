// Package billing reúne las reglas puras de facturación: importes, numeración y
// normalización de referencias de expediente. Sin I/O.
package billing

import "github.com/shopspring/decimal"

// DefaultTaxRate tasa de TVA por defecto (porcentaje).
var DefaultTaxRate = decimal.NewFromInt(20)

var hundred = decimal.NewFromInt(100)

// Amounts resultado del cálculo HT → TVA → TTC.
type Amounts struct {
	BaseAmount     decimal.Decimal // montant HT
	TaxRatePercent decimal.Decimal // taux TVA
	TaxAmount      decimal.Decimal // montant TVA
	TotalAmount    decimal.Decimal // montant TTC
}

// ComputeAmounts calcula TVA y TTC redondeando a 2 decimales en cada paso:
// la TVA se calcula sobre el producto sin redondear y el TTC sobre base y TVA ya redondeadas.
// decimal.Round redondea la mitad alejándose de cero (half-up para importes positivos).
func ComputeAmounts(base, ratePercent decimal.Decimal) Amounts {
	baseRounded := base.Round(2)
	tax := base.Mul(ratePercent).Div(hundred).Round(2)
	total := baseRounded.Add(tax).Round(2)
	return Amounts{
		BaseAmount:     baseRounded,
		TaxRatePercent: ratePercent,
		TaxAmount:      tax,
		TotalAmount:    total,
	}
}

// ComputeAmountsDefault aplica DefaultTaxRate.
func ComputeAmountsDefault(base decimal.Decimal) Amounts {
	return ComputeAmounts(base, DefaultTaxRate)
}

// CentsOf convierte un importe a céntimos enteros (para proveedores de pago).
func CentsOf(amount decimal.Decimal) int64 {
	return amount.Round(2).Mul(hundred).IntPart()
}
