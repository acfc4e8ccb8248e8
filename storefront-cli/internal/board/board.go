// Package board renders the kitchen's view of open orders.
package board

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"street-bites/pkg/domain"
)

// Render writes active orders oldest first, so the queue reads top down.
func Render(w io.Writer, orders []domain.Order, now time.Time) error {
	sorted := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.Active() {
			sorted = append(sorted, o)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	table := tablewriter.NewWriter(w)
	table.Header("Order", "Customer", "Items", "Total", "Status", "Waiting")
	for _, o := range sorted {
		label := o.FormattedOrderID
		if label == "" {
			label = o.ID
		}
		row := []string{
			label,
			o.CustomerName,
			describeItems(o),
			fmt.Sprintf("%.2f", o.Total),
			strings.ToUpper(string(o.Status)),
			waiting(now.Sub(o.CreatedAt)),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func describeItems(o domain.Order) string {
	parts := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, item.Name))
	}
	desc := strings.Join(parts, ", ")
	if o.Notes != "" {
		desc += " [" + o.Notes + "]"
	}
	return desc
}

func waiting(d time.Duration) string {
	if d < time.Minute {
		return "just now"
	}
	d = d.Round(time.Minute)
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}
