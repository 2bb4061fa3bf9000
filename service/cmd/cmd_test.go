package cmd

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the developer's environment and .env out of the command under test
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL",
		"ALPHAVANTAGE_API_KEY",
		"PORTFOLIO_RISK_FREQUENCY",
		"PORTFOLIO_RISK_DELIMITER",
		"PORTFOLIO_RISK_SERVER_PORT",
		"PORTFOLIO_RISK_SERVER_HOST",
		"PORTFOLIO_RISK_LOG_LEVEL",
		"PORTFOLIO_RISK_LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("PORTFOLIO_RISK_LOG_LEVEL", "error")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, command subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(command.Name(), flag.ContinueOnError)
	command.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return command.Execute(context.Background(), f)
}

const prices = `date,A,B
2024-01-01,100,50
2024-01-02,110,55
2024-01-03,121,60.5
`

func TestAnalyze_WeightsFlag(t *testing.T) {
	isolate(t)
	path := writeFile(t, "prices.csv", prices)

	var out bytes.Buffer
	status := execute(t, &analyzeCmd{out: &out}, "-file", path, "-weights", "0.5,0.5")
	require.Equal(t, subcommands.ExitSuccess, status, out.String())

	assert.Contains(t, out.String(), "=== Portfolio Risk & Return Calculator ===")
	assert.Contains(t, out.String(), "Loaded 3 days of prices for 2 assets.")
	assert.Contains(t, out.String(), "  A: 2520.00%")
	assert.Contains(t, out.String(), "Sum of weights entered: 1.0000")
	assert.NotContains(t, out.String(), "Warning")
	assert.Contains(t, out.String(), "Expected annual return: 2520.00%")
	assert.Contains(t, out.String(), "Annual volatility (risk): 0.00%")
	assert.NotContains(t, out.String(), "Recorded as run")
}

func TestAnalyze_PromptsAndNormalizes(t *testing.T) {
	isolate(t)
	path := writeFile(t, "prices.csv", strings.ReplaceAll(prices, ",", ";"))

	var out bytes.Buffer
	cmd := &analyzeCmd{in: strings.NewReader("0.3\n0.3\n"), out: &out}
	status := execute(t, cmd, "-file", path, "-delimiter", ";", "-matrix")
	require.Equal(t, subcommands.ExitSuccess, status, out.String())

	assert.Contains(t, out.String(), "Weight for B (as decimal, e.g. 0.3): ")
	assert.Contains(t, out.String(), "Sum of weights entered: 0.6000")
	assert.Contains(t, out.String(), "Warning: weights do not sum exactly to 1.0. They will be normalised.")
	assert.Contains(t, out.String(), "  A: 50.00%")
	assert.Contains(t, out.String(), "Correlation:")
}

func TestAnalyze_Failures(t *testing.T) {
	isolate(t)

	cases := []struct {
		name  string
		file  string
		in    string
		args  []string
		check subcommands.ExitStatus
	}{
		{"missing file", filepath.Join(t.TempDir(), "missing.csv"), "", nil, subcommands.ExitFailure},
		{"two rows", writeFile(t, "short.csv", "date,A\n1,10\n2,11\n"), "", []string{"-weights", "1"}, subcommands.ExitFailure},
		{"bad price", writeFile(t, "bad.csv", "date,A\n1,10\n2,x\n3,12\n"), "", []string{"-weights", "1"}, subcommands.ExitFailure},
		{"bad weight", writeFile(t, "ok.csv", prices), "0.5 abc", nil, subcommands.ExitFailure},
		{"weight count", writeFile(t, "ok2.csv", prices), "", []string{"-weights", "1"}, subcommands.ExitFailure},
		{"no weights", writeFile(t, "ok3.csv", prices), "", nil, subcommands.ExitFailure},
		{"bad delimiter", writeFile(t, "ok4.csv", prices), "", []string{"-delimiter", ";;"}, subcommands.ExitUsageError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := &analyzeCmd{in: strings.NewReader(tc.in), out: &out}
			status := execute(t, cmd, append([]string{"-file", tc.file}, tc.args...)...)
			assert.Equal(t, tc.check, status, out.String())
		})
	}
}

func TestAnalyze_ConfigFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, "prices.csv", prices)
	cfg := writeFile(t, "config.toml", "[analysis]\nmin_observations = 4\n")

	old := *configPath
	*configPath = cfg
	defer func() { *configPath = old }()

	status := execute(t, &analyzeCmd{out: &bytes.Buffer{}}, "-file", path, "-weights", "0.5,0.5")
	assert.Equal(t, subcommands.ExitFailure, status)
}

func TestFetch_RequiresApiKey(t *testing.T) {
	isolate(t)

	assert.Equal(t, subcommands.ExitUsageError, execute(t, &fetchCmd{}))
	assert.Equal(t, subcommands.ExitFailure, execute(t, &fetchCmd{}, "-symbols", "IBM,MSFT"))
}

func TestHistory_RequiresDatabase(t *testing.T) {
	isolate(t)

	assert.Equal(t, subcommands.ExitUsageError, execute(t, &historyCmd{}))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &historyCmd{}, "-id", "not-a-uuid"))
	assert.Equal(t, subcommands.ExitFailure, execute(t, &historyCmd{}, "-id", "6f1c7a52-4d8e-4d4f-9a53-2a1b3c4d5e6f"))
}
