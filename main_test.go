package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonsonwune/nestrank/config"
)

func writeSheet(t *testing.T, dir string, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("RegNo,Bio Marks,Chem Marks,Math Marks,Phy Marks,Category,PWD-Status,JK-Status\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "C%d,%d,%d,%d,%d,GEN,no,no\n", i, i, i, i, i)
	}
	path := filepath.Join(dir, "provisional.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	color.NoColor = true
	dir := t.TempDir()

	cfg := config.Default()
	cfg.InputPath = writeSheet(t, dir, 40)
	cfg.OutputPath = filepath.Join(dir, "output_results.csv")
	cfg.DBDriver = "sqlite"
	cfg.DBDSN = filepath.Join(dir, "results.db")
	cfg.Label = "provisional"
	return cfg
}

func TestRunProcess(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.SaveSnapshot = true

	var out bytes.Buffer
	require.NoError(t, runProcess(ctx, cfg, &out))
	assert.Contains(t, out.String(), "FINAL SUMMARY")
	assert.Contains(t, out.String(), "SMAS SCORES ACROSS CATEGORIES")

	f, err := os.Open(cfg.OutputPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 41)

	header := rows[0]
	genCol := -1
	for i, h := range header {
		if h == "Gen-rank" {
			genCol = i
		}
	}
	require.NotEqual(t, -1, genCol)

	top := rows[40]
	assert.Equal(t, "C40", top[0])
	assert.Equal(t, "1", top[genCol])
	assert.Equal(t, "", rows[1][genCol], "bottom candidate is not ranked")

	var report bytes.Buffer
	require.NoError(t, runReport(ctx, cfg, &report))
	assert.Contains(t, report.String(), `Snapshot "provisional"`)
	assert.Contains(t, report.String(), "Total candidates processed: 40")
}

func TestRunReport_NoSnapshot(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	require.NoError(t, runReport(context.Background(), cfg, &out))
	assert.Contains(t, out.String(), "No ranking snapshot")
}

func TestRunSMAS(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	require.NoError(t, runSMAS(context.Background(), cfg, &out))
	assert.Contains(t, out.String(), "4.10", "top-100 mean of 1..40 is 20.5, GEN multiplier 0.20")
	assert.Contains(t, out.String(), "Computed from 40 candidates")
}

func TestRunProcess_MissingInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.InputPath = filepath.Join(t.TempDir(), "missing.csv")

	err := runProcess(context.Background(), cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessCommand_FormatFlagIgnoresCase(t *testing.T) {
	for _, k := range []string{"NEST_INPUT", "NEST_OUTPUT", "NEST_FORMAT", "NEST_SAVE_SNAPSHOT", "RESULTS_DB_DRIVER"} {
		t.Setenv(k, "")
	}
	color.NoColor = true
	dir := t.TempDir()
	in := writeSheet(t, dir, 40)
	out := filepath.Join(dir, "results.json")

	rootCmd.SetArgs([]string{"process", "--input", in, "--output", out, "--format", "JSON"})
	rootCmd.SetOut(&bytes.Buffer{})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	assert.Len(t, rows, 40)
}
