package services

import (
	"context"
	"fmt"
	"time"

	"repairbox/internal/models"
	"repairbox/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var repairOrderExportHeaders = []string{
	"Order", "Tracking ID", "Booking Date", "Customer", "Contact", "Brand", "Device",
	"Status", "Priority", "Service", "Priority Charge", "Tax", "Grand Total", "Paid", "Payment Status",
	"Expected Completion",
}

// ExportRepairOrders writes every order matching filter to a workbook. The
// filter's paging is ignored.
func ExportRepairOrders(ctx context.Context, orders repository.RepairOrderRepository, filter repository.RepairOrderFilter) (*excelize.File, string, error) {
	filter.Page, filter.PageSize = 0, 0
	list, _, err := orders.List(ctx, filter)
	if err != nil {
		return nil, "", fmt.Errorf("list repair orders: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Repair Orders"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for i, h := range repairOrderExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, o := range list {
		writeOrderRow(f, sheet, i+2, &o)
	}

	widths := []float64{10, 12, 18, 22, 16, 12, 20, 20, 12, 12, 14, 10, 12, 10, 16, 18}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("repair_orders_%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}

func writeOrderRow(f *excelize.File, sheet string, row int, o *models.RepairOrder) {
	money := func(col string, v decimal.Decimal) {
		f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), v.InexactFloat64())
	}
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), o.DisplayName())
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), o.TrackingID)
	f.SetCellValue(sheet, fmt.Sprintf("C%d", row), o.BookingDate.Format("2006-01-02 15:04"))
	f.SetCellValue(sheet, fmt.Sprintf("D%d", row), o.CustomerName)
	f.SetCellValue(sheet, fmt.Sprintf("E%d", row), o.ContactNumber)
	f.SetCellValue(sheet, fmt.Sprintf("F%d", row), o.BrandName)
	f.SetCellValue(sheet, fmt.Sprintf("G%d", row), o.DeviceName)
	f.SetCellValue(sheet, fmt.Sprintf("H%d", row), o.Status)
	f.SetCellValue(sheet, fmt.Sprintf("I%d", row), o.Priority)
	money("J", o.TotalServiceAmount)
	money("K", o.PriorityCharge)
	money("L", o.TaxAmount)
	money("M", o.GrandTotal)
	money("N", o.PaidAmount)
	f.SetCellValue(sheet, fmt.Sprintf("O%d", row), o.PaymentStatus)
	if o.ExpectedCompletion != nil {
		f.SetCellValue(sheet, fmt.Sprintf("P%d", row), o.ExpectedCompletion.Format("2006-01-02 15:04"))
	}
}
