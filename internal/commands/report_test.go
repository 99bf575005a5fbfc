package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// importedProject returns a project that has imported testdata/transactions.csv.
func importedProject(t *testing.T) (string, string) {
	t.Helper()
	dir, cfgPath := initProject(t)
	out, err := runBasis(t, "import", absTestdata(t), "--config", cfgPath)
	require.NoError(t, err, out)
	return dir, cfgPath
}

func TestReport_Raw(t *testing.T) {
	_, cfgPath := importedProject(t)

	out, err := runBasis(t, "report", "--raw", "--config", cfgPath)
	require.NoError(t, err, out)

	assert.Contains(t, out, "| 2021 | XEQT.TO | TFSA | 0.00 | 50.00 |")
	assert.Contains(t, out, "| 2022 | XEQT.TO | TFSA | 150.00 | 0.00 |")
	assert.Contains(t, out, "| 2023 | AAPL | RRSP | 7900.00 | 0.00 |")
	assert.Contains(t, out, "| 2022 | RRSP | 11.49 |")
	assert.Contains(t, out, "| 2023 | TFSA | 4.95 |")
	assert.Contains(t, out, "| AAPL | RRSP | 600 | 150.25 | 90150.00 | 2023-04-04 |")
	assert.Contains(t, out, "| DLR.TO | TFSA | 100 | 13.50 | 1350.00 | 2023-01-12 |")
	assert.NotContains(t, out, "| XEQT.TO | TFSA | 0 |")
}

func TestReport_Year(t *testing.T) {
	_, cfgPath := importedProject(t)

	out, err := runBasis(t, "report", "--raw", "--year", "2023", "--config", cfgPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "| 2023 | AAPL | RRSP | 7900.00 | 0.00 |")
	assert.NotContains(t, out, "| 2022 |")
}

func TestReport_Rendered(t *testing.T) {
	_, cfgPath := importedProject(t)

	out, err := runBasis(t, "report", "--style", "notty", "--config", cfgPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Holdings")
	assert.Contains(t, out, "90150.00")
}

func TestReport_MissingLedger(t *testing.T) {
	dir := t.TempDir()

	out, err := runBasis(t, "report", "--config", filepath.Join(dir, "basis.yaml"))
	require.Error(t, err)
	assert.Contains(t, out, "opening ledger")
}

func TestExport(t *testing.T) {
	dir, cfgPath := importedProject(t)
	dst := filepath.Join(dir, "ledger.csv")

	out, err := runBasis(t, "export", "--out", dst, "--config", cfgPath)
	require.NoError(t, err, out)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 10, "header + 9 snapshots")
	assert.True(t, strings.HasPrefix(lines[0], "sequence_number,record_date,symbol"))
	assert.Equal(t, "0,2022-05-20,AAPL,RRSP,BUY,1000,150.25,9.99,0,0", lines[1])
	assert.True(t, strings.HasPrefix(lines[3], "2,2023-04-04,AAPL,RRSP,SELL,600,150.25,"))
	assert.True(t, strings.HasSuffix(lines[3], ",7900,0"))
	assert.Equal(t, "8,2022-11-03,XEQT.TO,TFSA,SELL,0,0,12,150,50", lines[9])
}

func TestHistory(t *testing.T) {
	_, cfgPath := importedProject(t)

	out, err := runBasis(t, "history", "XEQT.TO", "TFSA", "--config", cfgPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Realized gain")
	assert.Contains(t, out, "150.0000")
	assert.Contains(t, out, "150.00")
	assert.Equal(t, 3, strings.Count(out, "2021-"))
	assert.Equal(t, 2, strings.Count(out, "2022-"))
}

func TestHistory_UnknownPosition(t *testing.T) {
	_, cfgPath := importedProject(t)

	out, err := runBasis(t, "history", "MSFT", "RRSP", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, out, "no history for MSFT:RRSP")
}
