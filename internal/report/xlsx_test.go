package report

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/MikeMC777/geezshoe/internal/product"
	"github.com/MikeMC777/geezshoe/internal/sales"
)

func TestWriteProducts(t *testing.T) {
	disc := decimal.NewFromInt(80)
	var buf bytes.Buffer
	err := WriteProducts(&buf, []product.Product{
		{ID: "p1", Name: "Runner", ItemNumber: 4, Price: decimal.NewFromInt(100), Discount: true, DiscountPrice: &disc, Sizes: []string{"41", "42"}, IsActive: true},
	})
	require.NoError(t, err)

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	rows := f.Sheets[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "Name", rows[0].Cells[1].String())
	assert.Equal(t, "Runner", rows[1].Cells[1].String())
	assert.Equal(t, "80", rows[1].Cells[4].Value)
	assert.Equal(t, "41,42", rows[1].Cells[6].String())
}

func TestWriteSales_HeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSales(&buf, []sales.Sale{}))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, f.Sheets[0].Rows, 1)
}
