package importer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const header = "Date,Symbol,Action,Quantity,Price,Account,Fee CAD,Fee USD\n"

func TestCSVParser_Parse(t *testing.T) {
	data, err := os.ReadFile("../../testdata/transactions.csv")
	require.NoError(t, err)

	p := &CSVParser{Columns: DefaultColumns()}
	rows, err := p.Parse(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 9)

	first := rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "2021-03-01", first.Date)
	assert.Equal(t, "XEQT.TO", first.Symbol)
	assert.Equal(t, "BUY", first.Action)
	assert.Equal(t, "10", first.Quantity)
	assert.Equal(t, "5", first.FeePrimary)
	assert.Equal(t, "", first.FeeSecondary)

	// Quoted thousands separator survives CSV decoding.
	assert.Equal(t, "1,000", rows[4].Quantity)
	assert.Equal(t, "9.99", rows[4].FeeSecondary)
}

func TestCSVParser_ColumnOrderIndependent(t *testing.T) {
	data := "Account,Action,Symbol,Date,Price,Quantity,Fee USD,Fee CAD\nMARGIN,BUY,VFV.TO,2024-01-02,99.5,3,,1\n"
	p := &CSVParser{Columns: DefaultColumns()}
	rows, err := p.Parse(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "MARGIN", rows[0].Account)
	assert.Equal(t, "VFV.TO", rows[0].Symbol)
	assert.Equal(t, "99.5", rows[0].Price)
	assert.Equal(t, "1", rows[0].FeePrimary)
}

func TestCSVParser_MissingColumn(t *testing.T) {
	p := &CSVParser{Columns: DefaultColumns()}
	_, err := p.Parse(strings.NewReader("Date,Symbol,Action,Quantity,Price,Account,Fee CAD\n2024-01-02,X,BUY,1,1,A,\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "Fee USD"`)
}

func TestCSVParser_HeaderOnly(t *testing.T) {
	p := &CSVParser{Columns: DefaultColumns()}
	rows, err := p.Parse(strings.NewReader(header))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestCSVParser_CustomFeeColumns(t *testing.T) {
	cols := Columns{FeePrimary: "Fee EUR", FeeSecondary: "Fee GBP"}
	p := &CSVParser{Columns: cols}
	rows, err := p.Parse(strings.NewReader("Date,Symbol,Action,Quantity,Price,Account,Fee EUR,Fee GBP\n2024-01-02,X,BUY,1,1,A,,3\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "3", rows[0].FeeSecondary)
}

func TestXLSXParser_Parse(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Date", "Symbol", "Action", "Quantity", "Price", "Account", "Fee CAD", "Fee USD"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"2024-02-01", "XIU.TO", "BUY", "20", "31.2", "RRSP", "", "4.95"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"2024-03-01", "XIU.TO", "DIV", "", "12.5", "RRSP"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	p := &XLSXParser{Columns: DefaultColumns()}
	rows, err := p.Parse(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "XIU.TO", rows[0].Symbol)
	assert.Equal(t, "4.95", rows[0].FeeSecondary)
	// Trailing empty cells are trimmed by the workbook reader.
	assert.Equal(t, "", rows[1].FeePrimary)
	assert.Equal(t, "", rows[1].FeeSecondary)
	assert.Equal(t, 3, rows[1].Line)
}

func TestXLSXParser_UnknownSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	p := &XLSXParser{Columns: DefaultColumns(), Sheet: "Trades"}
	_, err = p.Parse(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Trades")
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := DefaultRegistry(DefaultColumns(), "")
	assert.NotNil(t, r.Get("CSV"))
	assert.NotNil(t, r.Get("Xlsx"))
}

func TestRegistry_ForFile(t *testing.T) {
	r := DefaultRegistry(DefaultColumns(), "")
	assert.Equal(t, "csv", r.ForFile("2024.CSV").Format())
	assert.Equal(t, "xlsx", r.ForFile("/tmp/book.xlsx").Format())
	assert.Nil(t, r.ForFile("notes.txt"))
	assert.Nil(t, r.ForFile("README"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&CSVParser{})
	assert.Panics(t, func() { r.Register(&CSVParser{}) })
}

func TestRegistry_ParseFile(t *testing.T) {
	r := DefaultRegistry(DefaultColumns(), "")
	rows, err := r.ParseFile("../../testdata/transactions.csv")
	require.NoError(t, err)
	assert.Len(t, rows, 9)

	_, err = r.ParseFile("../../testdata/missing.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parser")
}

func TestScan_FindsTransactionFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2023.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024.xlsx"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("data"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, processedDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, processedDir, "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "2023.csv", files[0].Name)
	assert.Equal(t, "2024.xlsx", files[1].Name)
	assert.Equal(t, int64(4), files[0].Size)
}

func TestScan_MissingDir(t *testing.T) {
	files, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024.csv"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "2024.csv"))

	_, err := os.Stat(filepath.Join(dir, "2024.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "processed", "2024.csv"))
	assert.NoError(t, err)
}
