// Package pricing computes cart totals with an optional discount offer.
//
// All arithmetic is decimal. Only the final total is rounded, to two places,
// half away from zero.
package pricing

import (
	"github.com/shopspring/decimal"

	"street-bites/pkg/domain"
)

var hundred = decimal.NewFromInt(100)

type Line struct {
	Item     domain.MenuItem `json:"item"`
	Quantity int             `json:"quantity"`
}

type QuotedLine struct {
	ItemID     string  `json:"itemId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	ListPrice  float64 `json:"listPrice"`
	UnitPrice  float64 `json:"unitPrice"`
	Subtotal   float64 `json:"subtotal"`
	Discounted bool    `json:"discounted"`
}

type Quote struct {
	Lines    []QuotedLine `json:"lines"`
	Subtotal float64      `json:"subtotal"`
	Discount float64      `json:"discount"`
	Total    float64      `json:"total"`
}

// EffectivePrice is the unit price of item once the offer, if any, is applied.
func EffectivePrice(item domain.MenuItem, offer *domain.SpecialOffer) decimal.Decimal {
	price := decimal.NewFromFloat(item.Price)
	if offer == nil || !offer.Covers(item.ID) {
		return price
	}
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(offer.Discount()).Div(hundred))
	return price.Mul(factor)
}

func Total(lines []Line, offer *domain.SpecialOffer) float64 {
	return round(sum(lines, offer))
}

func QuoteCart(lines []Line, offer *domain.SpecialOffer) Quote {
	quote := Quote{Lines: make([]QuotedLine, 0, len(lines))}
	list := decimal.Zero
	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		listPrice := decimal.NewFromFloat(line.Item.Price)
		unit := EffectivePrice(line.Item, offer)
		list = list.Add(listPrice.Mul(qty))
		quote.Lines = append(quote.Lines, QuotedLine{
			ItemID:     line.Item.ID,
			Name:       line.Item.Name,
			Quantity:   line.Quantity,
			ListPrice:  line.Item.Price,
			UnitPrice:  unit.Round(2).InexactFloat64(),
			Subtotal:   unit.Mul(qty).Round(2).InexactFloat64(),
			Discounted: !unit.Equal(listPrice),
		})
	}
	total := sum(lines, offer).Round(2)
	quote.Subtotal = round(list)
	quote.Total = total.InexactFloat64()
	quote.Discount = list.Round(2).Sub(total).InexactFloat64()
	return quote
}

func sum(lines []Line, offer *domain.SpecialOffer) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(EffectivePrice(line.Item, offer).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

func round(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
