package pricing

import "street-bites/pkg/domain"

// Cart is a customer's in-progress selection. The applied offer is a copy;
// applying it never touches the offer record.
type Cart struct {
	Lines []Line               `json:"lines"`
	Offer *domain.SpecialOffer `json:"offer,omitempty"`
}

// Add puts one more of item in the cart.
func (c *Cart) Add(item domain.MenuItem) {
	for i := range c.Lines {
		if c.Lines[i].Item.ID == item.ID {
			c.Lines[i].Quantity++
			return
		}
	}
	c.Lines = append(c.Lines, Line{Item: item, Quantity: 1})
}

func (c *Cart) Remove(itemID string) {
	kept := c.Lines[:0]
	for _, line := range c.Lines {
		if line.Item.ID != itemID {
			kept = append(kept, line)
		}
	}
	c.Lines = kept
}

// UpdateQuantity adds delta to the line and drops it once it reaches zero.
func (c *Cart) UpdateQuantity(itemID string, delta int) {
	kept := c.Lines[:0]
	for _, line := range c.Lines {
		if line.Item.ID == itemID {
			line.Quantity += delta
		}
		if line.Quantity > 0 {
			kept = append(kept, line)
		}
	}
	c.Lines = kept
}

func (c *Cart) ApplyOffer(offer domain.SpecialOffer) {
	applied := offer
	applied.ItemIDs = append([]string(nil), offer.ItemIDs...)
	c.Offer = &applied
}

func (c *Cart) RemoveOffer() {
	c.Offer = nil
}

func (c *Cart) Clear() {
	c.Lines = nil
	c.Offer = nil
}

func (c Cart) Count() int {
	n := 0
	for _, line := range c.Lines {
		n += line.Quantity
	}
	return n
}

func (c Cart) Total() float64 {
	return Total(c.Lines, c.Offer)
}

// OrderRequest snapshots the cart into a checkout payload. Line prices are
// the listed prices; the total carries any discount.
func (c Cart) OrderRequest(customerName, notes, deviceID string) domain.PlaceOrderRequest {
	total := c.Total()
	req := domain.PlaceOrderRequest{
		CustomerName: customerName,
		Items:        make([]domain.PlaceOrderLine, 0, len(c.Lines)),
		Total:        &total,
		Notes:        notes,
		DeviceID:     deviceID,
	}
	for _, line := range c.Lines {
		price := line.Item.Price
		qty := line.Quantity
		req.Items = append(req.Items, domain.PlaceOrderLine{
			ID:       line.Item.ID,
			Name:     line.Item.Name,
			Price:    &price,
			Quantity: &qty,
		})
	}
	return req
}
