package cmd

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

const sampleExport = `Campaign performance
Jan 1, 2024 - Jan 31, 2024
Campaign,Conversions,Cost / conv.,CTR,Clicks,Conv. rate,Budget
Alpha,40,7.00,2.0%,500,--,1000
Beta,98,6.00,4.0%,--,--,1000
Gamma,150,4.00,4.0%,--,--,1000
Broken,--,5.00,3.0%,10,--,1000
Total: Account,100,5.00,3.00%,5000,2.00%,10000
`

// runCmd is a helper to execute the root command with args and capture stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func execCmd(args ...string) (string, error) {
	// Reset sticky flags that may persist Changed state across invocations
	for _, fs := range []*pflag.FlagSet{recommendCmd.Flags(), recommendBatchCmd.Flags(), serveCmd.Flags()} {
		resetFlags(fs)
	}
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeExport(t *testing.T, dir, name string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(sampleExport), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return p
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return recs
}

func TestCLI_RecommendWritesCSVAndSavesRun(t *testing.T) {
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	defer os.Setenv("HOME", oldHome)
	os.Setenv("HOME", home)

	in := writeExport(t, home, "ads.csv")
	outPath := filepath.Join(home, "out", "recs.csv")
	out := runCmd(t, "recommend", in, "-o", outPath, "--save")
	if !strings.Contains(out, "✓ Wrote 3 recommendations") {
		t.Fatalf("missing confirmation: %q", out)
	}
	if !strings.Contains(out, "✓ Saved run ") {
		t.Fatalf("missing saved run line: %q", out)
	}

	recs := readCSV(t, outPath)
	if len(recs) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(recs))
	}
	want := [][2]string{{"Beta", "1100.00"}, {"Gamma", "1200.00"}, {"Alpha", "800.00"}}
	for i, w := range want {
		if recs[i+1][0] != w[0] || recs[i+1][2] != w[1] {
			t.Fatalf("row %d = %v, want %v", i+1, recs[i+1][:3], w)
		}
	}

	// the run is listed and can be shown by ID prefix
	list := runCmd(t, "runs", "list")
	if !strings.Contains(list, in) || !strings.Contains(list, "(3 rows: +1 ~1 -1)") {
		t.Fatalf("unexpected runs list: %q", list)
	}
	id := strings.Fields(strings.TrimPrefix(list, "- "))[0]
	show := runCmd(t, "runs", "show", id[:8])
	if !strings.Contains(show, `"id": "`+id+`"`) || !strings.Contains(show, `"campaign": "Gamma"`) {
		t.Fatalf("unexpected runs show output: %q", show)
	}

	runCmd(t, "runs", "delete", id)
	if list := runCmd(t, "runs", "list"); !strings.Contains(list, "(no runs)") {
		t.Fatalf("expected no runs after delete, got %q", list)
	}
}

func TestCLI_RecommendMarkdownToStdout(t *testing.T) {
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	defer os.Setenv("HOME", oldHome)
	os.Setenv("HOME", home)

	in := writeExport(t, home, "ads.csv")
	out := runCmd(t, "recommend", in, "--glyphs")
	for _, s := range []string{"[RUN SUMMARY]", "Source: account_total", "[WARNINGS]", "[RECOMMENDATIONS]", "🟨 Slight Increase"} {
		if !strings.Contains(out, s) {
			t.Fatalf("stdout missing %q:\n%s", s, out)
		}
	}
}

func TestCLI_RecommendSchemaError(t *testing.T) {
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	defer os.Setenv("HOME", oldHome)
	os.Setenv("HOME", home)

	p := filepath.Join(home, "bad.csv")
	if err := os.WriteFile(p, []byte("Campaign,Conversions\nA,1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := execCmd("recommend", p, "--skip-rows", "0")
	if err == nil || !strings.Contains(err.Error(), "missing required column") {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestCLI_ConfigSetChangesRules(t *testing.T) {
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	defer os.Setenv("HOME", oldHome)
	os.Setenv("HOME", home)

	runCmd(t, "config", "set", "increase_factor", "1.5")
	if show := runCmd(t, "config", "show"); !strings.Contains(show, "increase_factor: 1.5") {
		t.Fatalf("config show missing value: %q", show)
	}
	if _, err := execCmd("config", "set", "decrease_factor", "abc"); err == nil {
		t.Fatalf("expected invalid float error")
	}

	in := writeExport(t, home, "ads.csv")
	outPath := filepath.Join(home, "recs.json")
	runCmd(t, "recommend", in, "-o", outPath)
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(b), `"suggested_budget": 1500`) {
		t.Fatalf("increase factor not applied:\n%s", b)
	}
}

func TestCLI_RecommendBatchAvoidsOverwrite(t *testing.T) {
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	defer os.Setenv("HOME", oldHome)
	os.Setenv("HOME", home)

	writeExport(t, filepath.Join(home, "d1"), "ads.csv")
	writeExport(t, filepath.Join(home, "d2"), "ads.csv")
	outDir := filepath.Join(home, "out")

	out := runCmd(t, "recommend-batch", filepath.Join(home, "d*", "ads.csv"), "--out-dir", outDir, "--format", "xlsx")
	if !strings.Contains(out, "[1/2] Processing ads.csv...") || !strings.Contains(out, "[2/2] Processing ads.csv...") {
		t.Fatalf("missing progress lines: %q", out)
	}
	for _, name := range []string{"ads_recommendations.xlsx", "ads_recommendations__2.xlsx"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestCLI_RecommendBatchContinuesPastFailures(t *testing.T) {
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	defer os.Setenv("HOME", oldHome)
	os.Setenv("HOME", home)

	good := writeExport(t, home, "good.csv")
	bad := filepath.Join(home, "bad.csv")
	if err := os.WriteFile(bad, []byte("x\ny\nCampaign\nA\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := execCmd("recommend-batch", good, bad, "--quiet")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 files failed: bad.csv") {
		t.Fatalf("expected batch failure summary, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, "good_recommendations.csv")); err != nil {
		t.Fatalf("good file not written: %v", err)
	}
}

func TestCLI_ConfigSetKeepsRuntimeOverridesOut(t *testing.T) {
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	defer os.Setenv("HOME", oldHome)
	os.Setenv("HOME", home)
	t.Setenv("ADBUDGET_INCREASE_FACTOR", "1.9")
	defer func() { debug = false }()

	runCmd(t, "--debug", "config", "set", "glyphs", "true")
	debug = false

	b, err := os.ReadFile(filepath.Join(home, ".adbudget", "config.yaml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	saved := string(b)
	for _, s := range []string{"glyphs: true", "log_level: info", "increase_factor: 1.2"} {
		if !strings.Contains(saved, s) {
			t.Fatalf("saved config missing %q:\n%s", s, saved)
		}
	}
	if strings.Contains(saved, "log_level: debug") || strings.Contains(saved, "1.9") {
		t.Fatalf("runtime overrides persisted:\n%s", saved)
	}
}
