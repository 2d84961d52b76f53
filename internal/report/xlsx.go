// Package report renders back-office tables as xlsx workbooks.
package report

import (
	"io"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/MikeMC777/geezshoe/internal/customer"
	"github.com/MikeMC777/geezshoe/internal/product"
	"github.com/MikeMC777/geezshoe/internal/sales"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	timeLayout  = "2006-01-02 15:04:05"
)

func WriteProducts(w io.Writer, products []product.Product) error {
	file, sheet, err := newSheet("Products",
		"ID", "Name", "Stock", "Price", "Effective price", "Discount", "Sizes", "Active", "Updated")
	if err != nil {
		return err
	}
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetInt(p.ItemNumber)
		row.AddCell().SetFloat(p.Price.InexactFloat64())
		row.AddCell().SetFloat(p.EffectivePrice().InexactFloat64())
		row.AddCell().SetValue(p.DiscountLabel)
		row.AddCell().SetValue(strings.Join(p.Sizes, ","))
		row.AddCell().SetBool(p.IsActive)
		row.AddCell().SetValue(p.UpdatedAt.Format(timeLayout))
	}
	return file.Write(w)
}

func WriteSales(w io.Writer, rows []sales.Sale) error {
	file, sheet, err := newSheet("Sales", "Product ID", "Product", "Quantity sold", "Updated")
	if err != nil {
		return err
	}
	for _, s := range rows {
		row := sheet.AddRow()
		row.AddCell().SetValue(s.ProductID)
		row.AddCell().SetValue(s.ProductName)
		row.AddCell().SetInt(s.QuantitySold)
		row.AddCell().SetValue(s.UpdatedAt.Format(timeLayout))
	}
	return file.Write(w)
}

func WriteCustomers(w io.Writer, rows []customer.Customer) error {
	file, sheet, err := newSheet("Customers", "Phone", "Name", "Items purchased", "Updated")
	if err != nil {
		return err
	}
	for _, c := range rows {
		row := sheet.AddRow()
		row.AddCell().SetValue(c.Phone)
		row.AddCell().SetValue(c.Name)
		row.AddCell().SetInt(c.TotalItemsPurchased)
		row.AddCell().SetValue(c.UpdatedAt.Format(timeLayout))
	}
	return file.Write(w)
}

func newSheet(name string, headers ...string) (*xlsx.File, *xlsx.Sheet, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(name)
	if err != nil {
		return nil, nil, err
	}
	header := sheet.AddRow()
	for _, h := range headers {
		header.AddCell().SetValue(h)
	}
	return file, sheet, nil
}
