package commands_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankmint/internal/category"
	"github.com/cleared-dev/bankmint/internal/config"
	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/store"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "bankmint-test-*")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(tmpDir, "bankmint")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/bankmint")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		_ = os.RemoveAll(tmpDir)
		panic("failed to build binary: " + err.Error())
	}

	code := m.Run()
	_ = os.RemoveAll(tmpDir)
	os.Exit(code)
}

func runBankmint(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "BANKMINT_LOG_LEVEL=warn")
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// runBankmintEnv runs the binary without inherited BANKMINT_* variables.
func runBankmintEnv(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "BANKMINT_") {
			cmd.Env = append(cmd.Env, kv)
		}
	}
	cmd.Env = append(cmd.Env, env...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// initProject creates a project and returns its directory.
func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runBankmint(t, "init", dir, "--name", "Test Biz")
	require.NoError(t, err, out)
	return dir
}

func copyTestdata(t *testing.T, name, dst string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}

func openStore(t *testing.T, dir string) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(dir, "data", "bankmint.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := initProject(t)

	expectedDirs := []string{
		"data",
		"logs",
		"import",
		filepath.Join("import", "processed"),
		"categories",
	}
	for _, d := range expectedDirs {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	_, err := os.Stat(filepath.Join(dir, "data", "bankmint.db"))
	assert.NoError(t, err, "database should exist")
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runBankmint(t, "init", dir, "--name", "My Company", "--currency", "EUR")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "My Company", cfg.Business.Name)
	assert.Equal(t, "EUR", cfg.Business.Currency)
	assert.Equal(t, 6, cfg.Forecast.DefaultWeeks)
}

func TestInit_Categories(t *testing.T) {
	dir := initProject(t)

	catalog, err := category.Load(dir)
	require.NoError(t, err)
	assert.Len(t, catalog.All(), len(category.Defaults()))
}

func TestInit_RefusesExistingProject(t *testing.T) {
	dir := initProject(t)
	out, err := runBankmint(t, "init", dir, "--name", "Again")
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestInit_RequiresName(t *testing.T) {
	_, err := runBankmint(t, "init", t.TempDir())
	assert.Error(t, err)
}

func TestImport_FileThenDuplicate(t *testing.T) {
	dir := initProject(t)
	csv := filepath.Join("..", "..", "testdata", "chase_checking.csv")

	out, err := runBankmint(t, "import", csv, "--data-dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Import: chase_checking.csv")
	assert.Contains(t, out, "Imported")

	out, err = runBankmint(t, "import", csv, "--data-dir", dir)
	require.NoError(t, err, out)

	st := openStore(t, dir)
	txns, err := st.ListTransactions(context.Background(), store.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txns, 6)

	ups, err := st.ListUploads(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, ups, 2)
	assert.Equal(t, 0, ups[0].Imported)
	assert.Equal(t, 6, ups[0].Duplicates)
}

func TestImport_ScansImportDir(t *testing.T) {
	dir := initProject(t)
	copyTestdata(t, "office_supplies.csv", filepath.Join(dir, "import", "office_supplies.csv"))

	out, err := runBankmint(t, "import", "--data-dir", dir)
	require.NoError(t, err, out)

	_, err = os.Stat(filepath.Join(dir, "import", "office_supplies.csv"))
	assert.True(t, os.IsNotExist(err), "file should be moved out of import/")
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "office_supplies.csv"))
	assert.NoError(t, err)

	st := openStore(t, dir)
	txns, err := st.ListTransactions(context.Background(), store.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, category.OfficeExpenses, txns[0].Category)
}

func TestImport_EmptyImportDir(t *testing.T) {
	dir := initProject(t)
	out, err := runBankmint(t, "import", "--data-dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "No CSV files")
}

func TestImport_MissingDescriptionFails(t *testing.T) {
	dir := initProject(t)
	csv := filepath.Join("..", "..", "testdata", "missing_description.csv")

	out, err := runBankmint(t, "import", csv, "--data-dir", dir)
	require.Error(t, err)
	assert.Contains(t, out, "missing")

	st := openStore(t, dir)
	txns, err := st.ListTransactions(context.Background(), store.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestCorrect_LearnsVendor(t *testing.T) {
	dir := initProject(t)
	csv := filepath.Join(dir, "widgets.csv")
	require.NoError(t, os.WriteFile(csv, []byte("Date,Description,Amount\n"+
		"2025-01-05,Zenith Widgets,-320.00\n"+
		"2025-02-05,Zenith Widgets,-310.00\n"+
		"2025-03-05,Zenith Widgets,-305.00\n"), 0o644))

	out, err := runBankmint(t, "import", csv, "--data-dir", dir)
	require.NoError(t, err, out)

	st := openStore(t, dir)
	txns, err := st.ListTransactions(context.Background(), store.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txns, 3)

	for i, txn := range txns {
		out, err = runBankmint(t, "correct", txn.ID, category.Equipment, "--data-dir", dir)
		require.NoError(t, err, out)
		if i == len(txns)-1 {
			assert.Contains(t, out, `learned vendor "zenith widgets"`)
		}
	}

	rules, err := st.ListRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, model.SourceMemory, rules[0].Source)

	out, err = runBankmint(t, "suggest", "ZENITH WIDGETS INV 77", "--data-dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, category.Equipment)
	assert.Contains(t, out, "memory")
}

func TestCorrect_UnknownTransaction(t *testing.T) {
	dir := initProject(t)
	out, err := runBankmint(t, "correct", "txn_nope", category.Meals, "--data-dir", dir)
	require.Error(t, err)
	assert.Contains(t, out, "not found")
}

func TestRules_AddListDelete(t *testing.T) {
	dir := initProject(t)

	out, err := runBankmint(t, "rules", "add", "starbucks|coffee", category.Meals, "--data-dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Created rule")

	out, err = runBankmint(t, "rules", "list", "--data-dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "starbucks|coffee")

	st := openStore(t, dir)
	rules, err := st.ListRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 1)

	out, err = runBankmint(t, "rules", "delete", rules[0].ID, "--data-dir", dir)
	require.NoError(t, err, out)

	out, err = runBankmint(t, "rules", "list", "--data-dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "No rules.")
}

func TestRules_AddInvalidRegex(t *testing.T) {
	dir := initProject(t)

	out, err := runBankmint(t, "rules", "add", "([a-z", category.Meals, "--data-dir", dir)
	require.Error(t, err)
	assert.Contains(t, out, "invalid rule")

	st := openStore(t, dir)
	rules, err := st.ListRules(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestForecast_InvalidWeeks(t *testing.T) {
	dir := initProject(t)
	out, err := runBankmint(t, "forecast", "--weeks", "5", "--data-dir", dir)
	require.Error(t, err)
	assert.Contains(t, out, "weeks")
}

func TestForecast_Renders(t *testing.T) {
	dir := initProject(t)
	out, err := runBankmint(t, "import", filepath.Join("..", "..", "testdata", "chase_checking.csv"), "--data-dir", dir)
	require.NoError(t, err, out)

	out, err = runBankmint(t, "forecast", "--weeks", "4", "--data-dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Cash Forecast: 4 weeks")
	assert.Contains(t, out, "Insufficient history")
	assert.Contains(t, out, "Scenarios")
	assert.Contains(t, out, "Weekly projection")
}

func TestPatterns_NoneFound(t *testing.T) {
	dir := initProject(t)
	out, err := runBankmint(t, "patterns", "--data-dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "No recurring patterns found.")
}

func TestHistory_ListsImports(t *testing.T) {
	dir := initProject(t)
	out, err := runBankmint(t, "import", filepath.Join("..", "..", "testdata", "office_supplies.csv"), "--data-dir", dir)
	require.NoError(t, err, out)

	out, err = runBankmint(t, "history", "--data-dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "office_supplies.csv")
	assert.Contains(t, out, "default")
}

func TestVersion(t *testing.T) {
	out, err := runBankmint(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "bankmint version")
}

func TestLogging_FromEnvFile(t *testing.T) {
	tests := []struct {
		name     string
		env      []string
		wantLogs bool
	}{
		{"env file level and format", nil, true},
		{"process env wins over env file", []string{"BANKMINT_LOG_LEVEL=error"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := initProject(t)
			envFile := filepath.Join(t.TempDir(), "bankmint.env")
			require.NoError(t, os.WriteFile(envFile, []byte("BANKMINT_LOG_LEVEL=info\nBANKMINT_LOG_FORMAT=json\n"), 0o644))

			out, err := runBankmintEnv(t, tt.env, "rules", "add", "uber", category.Travel,
				"--match-type", "contains", "--priority", "0", "--env-file", envFile, "--data-dir", dir)
			require.NoError(t, err, out)
			assert.Contains(t, out, "Created rule")
			if tt.wantLogs {
				assert.Contains(t, out, `"message":"rule created"`)
				assert.Contains(t, out, `"op":"create_rule"`)
				assert.Contains(t, out, `"command":"add"`)
			} else {
				assert.NotContains(t, out, "rule created")
			}

			st := openStore(t, dir)
			rules, err := st.ListRules(context.Background())
			require.NoError(t, err)
			require.Len(t, rules, 1)
			assert.Equal(t, 0, rules[0].Priority)
		})
	}
}
