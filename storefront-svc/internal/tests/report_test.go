package tests

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"street-bites/pkg/domain"
	"street-bites/storefront-svc/internal/mocks"
	"street-bites/storefront-svc/internal/service"
)

func reportOrders() []domain.Order {
	return []domain.Order{
		{
			ID: "1792000000000", FormattedOrderID: "ORD_20261014_001", CustomerName: "Ana",
			CreatedAt: time.Date(2026, 10, 14, 12, 5, 9, 0, time.UTC), Total: 19.5,
			Items: []domain.OrderItem{
				{ID: "s1", Name: "Street Burger", Quantity: 1},
				{ID: "d1", Name: "Lemonade", Quantity: 2},
				{ID: "s1", Name: "Street Burger", Quantity: 2},
			},
		},
		{
			ID: "1792089000000", CustomerName: "Ben",
			CreatedAt: time.Date(2026, 10, 15, 18, 30, 0, 0, time.UTC), Total: 7,
			Items: []domain.OrderItem{{ID: "j1", Name: "Apple Juice", Quantity: 1}},
		},
	}
}

func TestBuildReport(t *testing.T) {
	report := service.BuildReport(reportOrders(), time.UTC)

	assert.Equal(t, []string{"Apple Juice", "Lemonade", "Street Burger"}, report.Columns)
	require.Len(t, report.Rows, 2)

	first := report.Rows[0]
	assert.Equal(t, "ORD_20261014_001", first.OrderID)
	assert.Equal(t, "2026-10-14", first.Date)
	assert.Equal(t, "12:05:09", first.Time)
	assert.Equal(t, 3, first.Quantities["Street Burger"])
	assert.Equal(t, 2, first.Quantities["Lemonade"])

	assert.Equal(t, "1792089000000", report.Rows[1].OrderID)
}

func TestReportService_WriteCSV(t *testing.T) {
	svc := service.NewReportService(nil, time.UTC)
	report := service.BuildReport(reportOrders(), time.UTC)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(&buf, report))

	expected := "Order ID,Date,Time,Customer Name,Apple Juice,Lemonade,Street Burger,Total Amount\n" +
		"ORD_20261014_001,2026-10-14,12:05:09,Ana,,2,3,19.50\n" +
		"1792089000000,2026-10-15,18:30:00,Ben,1,,,7.00\n"
	assert.Equal(t, expected, buf.String())
}

func TestReportService_WriteCSV_Empty(t *testing.T) {
	svc := service.NewReportService(nil, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(&buf, service.BuildReport(nil, time.UTC)))
	assert.Equal(t, "Order ID,Date,Time,Customer Name,Total Amount\n", buf.String())
}

func TestReportService_WriteCSV_QuotesFormulaCells(t *testing.T) {
	tests := []struct {
		name     string
		customer string
		want     string
	}{
		{name: "equals", customer: "=1+1", want: "'=1+1"},
		{name: "plus", customer: "+4412345", want: "'+4412345"},
		{name: "minus", customer: "-2+3", want: "'-2+3"},
		{name: "at", customer: "@SUM(A1)", want: "'@SUM(A1)"},
		{name: "tab", customer: "\t=1", want: "'\t=1"},
		{name: "plain name untouched", customer: "Ana-Maria", want: "Ana-Maria"},
		{name: "empty", customer: "", want: ""},
	}

	svc := service.NewReportService(nil, time.UTC)
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			report := &service.Report{
				Columns: []string{"Lemonade"},
				Rows: []service.ReportRow{{
					OrderID: "ORD_20261015_001", Date: "2026-10-15", Time: "09:00:00",
					CustomerName: testCase.customer, Quantities: map[string]int{"Lemonade": 1}, Total: 3,
				}},
			}

			var buf bytes.Buffer
			require.NoError(t, svc.WriteCSV(&buf, report))

			lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
			require.Len(t, lines, 2)
			assert.Equal(t, "ORD_20261015_001,2026-10-15,09:00:00,"+testCase.want+",1,3.00", lines[1])
		})
	}
}

func TestReportService_WriteCSV_QuotesFormulaColumns(t *testing.T) {
	svc := service.NewReportService(nil, time.UTC)
	report := &service.Report{Columns: []string{"=cmd", "Lemonade"}}

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(&buf, report))
	assert.Equal(t, "Order ID,Date,Time,Customer Name,'=cmd,Lemonade,Total Amount\n", buf.String())
}

func TestReportService_RecentOrders(t *testing.T) {
	store := mocks.NewStore(t)
	svc := service.NewReportService(store, time.UTC).WithClock(clock)

	store.On("ListOrdersSince", mock.Anything, fixedNow.AddDate(0, 0, -7)).Return(reportOrders(), nil).Once()

	orders, err := svc.RecentOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "Ben", orders[0].CustomerName)
	assert.Equal(t, "Ana", orders[1].CustomerName)
}

func TestReportService_Weekly(t *testing.T) {
	store := mocks.NewStore(t)
	svc := service.NewReportService(store, time.UTC).WithClock(clock)

	store.On("ListOrdersSince", mock.Anything, mock.Anything).Return(reportOrders(), nil).Once()

	report, err := svc.Weekly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixedNow.AddDate(0, 0, -7), report.From)
	assert.Equal(t, "1792089000000", report.Rows[0].OrderID)
	assert.Len(t, report.Columns, 3)
}
