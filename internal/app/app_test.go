package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staats/staats/internal/catalog"
	"github.com/staats/staats/internal/config"
	"github.com/staats/staats/internal/export"
	"github.com/staats/staats/internal/recode"
	"github.com/staats/staats/pkg/types"
)

// seedProject writes a small but complete project catalog and response
// file into dir and returns a configuration pointing at them.
func seedProject(t *testing.T, dir string) *config.Config {
	t.Helper()
	ctx := context.Background()

	cat, err := catalog.Open(filepath.Join(dir, "project.db"))
	require.NoError(t, err)
	defer cat.Close()

	schema := types.NewDataMap()
	schema.Add(&types.Question{
		Name:  "Gender",
		Kind:  types.SingleChoice,
		Title: "Gender",
		Codes: map[int]string{1: "Male", 2: "Female"},
	})
	schema.Add(&types.Question{
		Name:  "Pref",
		Kind:  types.SingleChoice,
		Title: "Preferred brand",
		Codes: map[int]string{1: "Brand X", 2: "Brand Y"},
	})
	schema.Add(&types.Question{Name: "Age", Kind: types.Numeric, Title: "Age"})
	require.NoError(t, cat.SaveDataMap(ctx, schema))

	require.NoError(t, cat.SaveRecodes(ctx, []recode.Def{{
		Name:    "AgeGroup",
		Title:   "Age group",
		Kind:    "single",
		Formula: "1: [\"Age\"] < 40\n2: [\"Age\"] >= 40",
		Codes:   map[int]string{1: "Under 40", 2: "40 and over"},
	}}))

	require.NoError(t, cat.SaveFilters(ctx, []types.Filter{
		{Name: "Adults", Formula: "[\"Age\"] >= 18"},
	}))

	require.NoError(t, cat.SavePlans(ctx, []types.TabPlan{{
		Name:       "Main",
		FilterName: "Adults",
		Tabs: []types.TabDefinition{
			{Title: "Pref by gender", RowVariable: "Pref", ColumnVariable: "Gender"},
			{Title: "Pref by age group", RowVariable: "Pref", ColumnVariable: "AgeGroup"},
		},
	}}))

	csvPath := filepath.Join(dir, "responses.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"Gender,Pref,Age\n"+
			"1,1,25\n"+
			"1,2,45\n"+
			"2,1,31\n"+
			"2,2,52\n"+
			"1,1,38\n"+
			"2,2,60\n"), 0644))

	cfg := config.DefaultConfig()
	cfg.DataDir = dir
	cfg.Input.Path = csvPath
	cfg.Resolve()
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := seedProject(t, dir)

	p, err := New(cfg)
	require.NoError(t, err)

	runDir, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.DirExists(t, runDir)

	csvOut := filepath.Join(runDir, "Main.csv")
	require.FileExists(t, csvOut)
	raw, err := os.ReadFile(csvOut)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Pref by gender")
	assert.Contains(t, string(raw), "Pref by age group")

	archive, err := export.ReadArchive(filepath.Join(runDir, "Main.staats"))
	require.NoError(t, err)
	assert.Equal(t, "Main", archive.Plan)
	require.Len(t, archive.Results, 2)
	assert.NotEmpty(t, archive.Fingerprint)
}

func TestRunPublishesToLocalStorage(t *testing.T) {
	dir := t.TempDir()
	cfg := seedProject(t, dir)
	cfg.Storage.Type = "local"

	p, err := New(cfg)
	require.NoError(t, err)

	runDir, err := p.Run(context.Background())
	require.NoError(t, err)

	runID := filepath.Base(runDir)
	published := filepath.Join(cfg.Storage.Path, "runs", runID, "Main.csv")
	assert.FileExists(t, published)
}

func TestValidateReportsBadReferences(t *testing.T) {
	dir := t.TempDir()
	cfg := seedProject(t, dir)

	ctx := context.Background()
	cat, err := catalog.Open(cfg.Project.Path)
	require.NoError(t, err)
	require.NoError(t, cat.SavePlans(ctx, []types.TabPlan{{
		Name:       "Broken",
		FilterName: "NoSuchFilter",
		Tabs: []types.TabDefinition{
			{Title: "Bad tab", RowVariable: "Missing", ColumnVariable: "Gender", ClassName: "NoSuchClass"},
		},
	}}))
	require.NoError(t, cat.Close())

	p, err := New(cfg)
	require.NoError(t, err)

	problems, err := p.Validate(ctx)
	require.NoError(t, err)
	assert.Len(t, problems, 3)
}

func TestRunFailsOnInvalidProject(t *testing.T) {
	dir := t.TempDir()
	cfg := seedProject(t, dir)

	ctx := context.Background()
	cat, err := catalog.Open(cfg.Project.Path)
	require.NoError(t, err)
	require.NoError(t, cat.SaveFilters(ctx, []types.Filter{
		{Name: "Broken", Formula: "no conditions here"},
	}))
	require.NoError(t, cat.Close())

	p, err := New(cfg)
	require.NoError(t, err)

	_, err = p.Run(ctx)
	assert.ErrorContains(t, err, "validation failed")
}

func TestPlanFileName(t *testing.T) {
	assert.Equal(t, "Main", planFileName("Main"))
	assert.Equal(t, "Wave_1_EU", planFileName("Wave 1/EU"))
	assert.Equal(t, "plan", planFileName(""))
}
