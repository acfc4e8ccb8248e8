package service

import (
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(orderID string) ([]byte, error)
}

// PickupQRGenerator encodes the public order status page as a PNG the
// customer shows at the hatch.
type PickupQRGenerator struct {
	BaseURL string
	Size    int
}

func (g PickupQRGenerator) Link(orderID string) string {
	return strings.TrimRight(g.BaseURL, "/") + "/order?id=" + url.QueryEscape(orderID)
}

func (g PickupQRGenerator) Generate(orderID string) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(g.Link(orderID), qrcode.Medium, size)
}
