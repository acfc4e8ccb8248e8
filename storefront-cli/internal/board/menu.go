package board

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"street-bites/pkg/domain"
	"street-bites/pkg/pricing"
)

// RenderMenu lists items in the order the server returned them, with the
// offer's price next to the listed one when it applies.
func RenderMenu(w io.Writer, items []domain.MenuItem, offer *domain.SpecialOffer) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Category", "Price", "Available")
	for _, item := range items {
		price := fmt.Sprintf("%.2f", item.Price)
		if offer != nil && offer.Covers(item.ID) {
			price += fmt.Sprintf(" -> %s", pricing.EffectivePrice(item, offer).StringFixed(2))
		}
		available := "yes"
		if !item.Available {
			available = "sold out"
		}
		if err := table.Append([]string{item.ID, item.Name, item.Category, price, available}); err != nil {
			return err
		}
	}
	return table.Render()
}

// RenderOffers lists the running offers, one per line.
func RenderOffers(w io.Writer, offers []domain.SpecialOffer) error {
	if len(offers) == 0 {
		_, err := fmt.Fprintln(w, "No offers running right now.")
		return err
	}
	for _, o := range offers {
		if _, err := fmt.Fprintf(w, "%s  %s: %s (%.0f%% off %s)\n", o.ID, o.Title, o.Description, o.Discount(), strings.Join(o.ItemIDs, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// RenderCart prints each line with its discounted subtotal and the totals.
func RenderCart(w io.Writer, cart pricing.Cart) error {
	quote := pricing.QuoteCart(cart.Lines, cart.Offer)

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Item", "Qty", "Unit", "Subtotal")
	for _, line := range quote.Lines {
		unit := fmt.Sprintf("%.2f", line.UnitPrice)
		if line.Discounted {
			unit += "*"
		}
		row := []string{line.ItemID, line.Name, fmt.Sprint(line.Quantity), unit, fmt.Sprintf("%.2f", line.Subtotal)}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	if cart.Offer != nil {
		fmt.Fprintf(w, "Offer: %s (-%.2f)\n", cart.Offer.Title, quote.Discount)
	}
	_, err := fmt.Fprintf(w, "Total: %.2f\n", quote.Total)
	return err
}
