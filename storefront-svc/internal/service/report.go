package service

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"street-bites/pkg/domain"
)

const reportWindowDays = 7

type ReportRow struct {
	OrderID      string         `json:"orderId"`
	Date         string         `json:"date"`
	Time         string         `json:"time"`
	CustomerName string         `json:"customerName"`
	Quantities   map[string]int `json:"quantities"`
	Total        float64        `json:"total"`
}

// Report is a sales sheet with one column per item name seen in the
// covered orders.
type Report struct {
	From    time.Time   `json:"from"`
	Columns []string    `json:"columns"`
	Rows    []ReportRow `json:"rows"`
}

type ReportService struct {
	orders OrderRepository
	zone   *time.Location
	now    func() time.Time
}

func NewReportService(orders OrderRepository, zone *time.Location) *ReportService {
	if zone == nil {
		zone = time.Local
	}
	return &ReportService{orders: orders, zone: zone, now: time.Now}
}

func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// RecentOrders returns the last seven days of orders, newest first.
func (s *ReportService) RecentOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.ListOrdersSince(ctx, s.now().AddDate(0, 0, -reportWindowDays))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *ReportService) Weekly(ctx context.Context) (*Report, error) {
	orders, err := s.RecentOrders(ctx)
	if err != nil {
		return nil, err
	}
	report := BuildReport(orders, s.zone)
	report.From = s.now().AddDate(0, 0, -reportWindowDays)
	return report, nil
}

// BuildReport collects the item columns in a first pass over all orders,
// then fills one row per order.
func BuildReport(orders []domain.Order, zone *time.Location) *Report {
	seen := make(map[string]struct{})
	for _, o := range orders {
		for _, item := range o.Items {
			seen[item.Name] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for name := range seen {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	rows := make([]ReportRow, 0, len(orders))
	for _, o := range orders {
		quantities := make(map[string]int, len(o.Items))
		for _, item := range o.Items {
			quantities[item.Name] += item.Quantity
		}
		id := o.FormattedOrderID
		if id == "" {
			id = o.ID
		}
		created := o.CreatedAt.In(zone)
		rows = append(rows, ReportRow{
			OrderID:      id,
			Date:         created.Format("2006-01-02"),
			Time:         created.Format("15:04:05"),
			CustomerName: o.CustomerName,
			Quantities:   quantities,
			Total:        o.Total,
		})
	}
	return &Report{Columns: columns, Rows: rows}
}

func (s *ReportService) WriteCSV(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)

	header := []string{"Order ID", "Date", "Time", "Customer Name"}
	for _, name := range report.Columns {
		header = append(header, spreadsheetSafe(name))
	}
	header = append(header, "Total Amount")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range report.Rows {
		record := make([]string, 0, len(header))
		record = append(record, row.OrderID, row.Date, row.Time, spreadsheetSafe(row.CustomerName))
		for _, name := range report.Columns {
			cell := ""
			if qty, ok := row.Quantities[name]; ok && qty > 0 {
				cell = strconv.Itoa(qty)
			}
			record = append(record, cell)
		}
		record = append(record, strconv.FormatFloat(row.Total, 'f', 2, 64))
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// spreadsheetSafe quotes free text that a spreadsheet would otherwise
// evaluate as a formula.
func spreadsheetSafe(cell string) string {
	if cell != "" && strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}

var _ ReportServiceInterface = (*ReportService)(nil)
