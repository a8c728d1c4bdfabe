package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDecodeCSV(t *testing.T) {
	t.Run("Semicolon with decimal commas", func(t *testing.T) {
		data := []byte("Código;Descrição;Qtd;Preço Unit\nA1;Parafuso;10;19,99\n")

		g, err := Decode("stock.csv", data)

		require.NoError(t, err)
		assert.Equal(t, Grid{
			{"Código", "Descrição", "Qtd", "Preço Unit"},
			{"A1", "Parafuso", "10", "19,99"},
		}, g)
	})

	t.Run("Comma with quoted decimal", func(t *testing.T) {
		data := []byte("code,name,price\nA1,Widget,\"19,99\"\n")

		g, err := Decode("stock.csv", data)

		require.NoError(t, err)
		assert.Equal(t, []string{"A1", "Widget", "19,99"}, g[1])
	})

	t.Run("Tab separated", func(t *testing.T) {
		g, err := Decode("stock.txt", []byte("code\tqty\nA1\t3\n"))

		require.NoError(t, err)
		assert.Equal(t, []string{"code", "qty"}, g[0])
	})

	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		g, err := Decode("stock.csv", []byte("\xEF\xBB\xBFcode;qty\nA1;3"))

		require.NoError(t, err)
		assert.Equal(t, "code", g[0][0])
	})

	t.Run("Windows-1252 is transcoded", func(t *testing.T) {
		data := []byte("C\xf3digo;Descri\xe7\xe3o\n1;P\xe3o\n")

		g, err := Decode("legacy.csv", data)

		require.NoError(t, err)
		assert.Equal(t, []string{"Código", "Descrição"}, g[0])
		assert.Equal(t, "Pão", g[1][1])
	})

	t.Run("Ragged rows are kept", func(t *testing.T) {
		g, err := Decode("stock.csv", []byte("Inventário 2024\n\ncode;name;qty\nA1;X;1\n"))

		require.NoError(t, err)
		// encoding/csv drops the blank line
		require.Len(t, g, 3)
		assert.Len(t, g[0], 1)
		assert.Len(t, g[1], 3)
	})

	t.Run("Stray quote tolerated", func(t *testing.T) {
		g, err := Decode("stock.csv", []byte("code;name\nA1;Tubo 3\" PVC\n"))

		require.NoError(t, err)
		assert.Equal(t, `Tubo 3" PVC`, g[1][1])
	})
}

func TestDecode_Errors(t *testing.T) {
	t.Run("Empty data", func(t *testing.T) {
		_, err := Decode("stock.csv", nil)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Only blank cells", func(t *testing.T) {
		_, err := Decode("stock.csv", []byte(";;\n ; ;\n"))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Unknown extension", func(t *testing.T) {
		_, err := Decode("stock.ods", []byte("x"))
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("Corrupt workbook", func(t *testing.T) {
		_, err := Decode("stock.xlsx", []byte("not a zip"))
		assert.ErrorIs(t, err, ErrInvalidSpreadsheet)
	})
}

func TestDecodeXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	// First sheet stays empty; the decoder must skip it.
	_, err := f.NewSheet("Stock")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Stock", "A1", &[]any{"Código", "Descrição", "Qtd"}))
	require.NoError(t, f.SetSheetRow("Stock", "A2", &[]any{"A1", "Parafuso", 10}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	g, err := Decode("Inventario.XLSX", buf.Bytes())

	require.NoError(t, err)
	require.Len(t, g, 2)
	assert.Equal(t, []string{"Código", "Descrição", "Qtd"}, g[0])
	assert.Equal(t, []string{"A1", "Parafuso", "10"}, g[1])
}

func TestDecodeXLSX_FormattedNumbersStayRaw(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Código", "Qtd", "Preço Unit"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"A1", 1250, 1234.5}))
	style, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "C2", style))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	g, err := Decode("stock.xlsx", buf.Bytes())

	require.NoError(t, err)
	require.Len(t, g, 2)
	assert.Equal(t, []string{"A1", "1250", "1234.5"}, g[1])
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{".csv", ".txt", ".xlsm", ".xlsx"}, Extensions())
	assert.True(t, IsSpreadsheet("a.CSV"))
	assert.False(t, IsSpreadsheet("scan.pdf"))

	assert.Panics(t, func() { Register(".csv", decodeCSV) })
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want rune
	}{
		{"semicolon", "a;b;c\n1;2;3", ';'},
		{"comma", "a,b,c\n1,2,3", ','},
		{"tab", "a\tb\n1\t2", '\t'},
		{"decimal commas lose to semicolons", "a;b\n1,5;2,5", ';'},
		{"quoted commas ignored", "a;b\n\"1,5\";\"2,5\"", ';'},
		{"single column", "abc\ndef", ';'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sniffDelimiter([]byte(tt.in)))
		})
	}
}
