// Package app wires the pipeline together: it loads the project catalog
// and the response data, applies recodes, validates every definition,
// generates all planned tables and writes the run outputs.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/staats/staats/internal/catalog"
	"github.com/staats/staats/internal/class"
	"github.com/staats/staats/internal/config"
	"github.com/staats/staats/internal/export"
	"github.com/staats/staats/internal/filter"
	"github.com/staats/staats/internal/formula"
	"github.com/staats/staats/internal/ingest"
	"github.com/staats/staats/internal/observability"
	"github.com/staats/staats/internal/recode"
	"github.com/staats/staats/internal/storage"
	"github.com/staats/staats/internal/tab"
	"github.com/staats/staats/pkg/types"
)

// Pipeline runs a survey project end to end.
type Pipeline struct {
	cfg   *config.Config
	usage *observability.Usage
}

// New creates a pipeline with the given configuration.
func New(cfg *config.Config) (*Pipeline, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}
	return &Pipeline{cfg: cfg, usage: observability.NewUsage()}, nil
}

// project bundles everything loaded from the catalog.
type project struct {
	schema  *types.DataMap
	recodes *recode.Engine
	filters *filter.Engine
	classes *class.Engine
	plans   []types.TabPlan
}

// Run executes one full pipeline run and returns the run's output
// directory.
func (p *Pipeline) Run(ctx context.Context) (string, error) {
	runID := uuid.NewString()
	started := time.Now()
	log.Printf("run %s starting (project %s)", runID, p.cfg.Project.Path)

	proj, err := p.loadProject(ctx)
	if err != nil {
		return "", err
	}

	data, err := p.loadData(ctx, proj.schema)
	if err != nil {
		return "", err
	}
	fingerprint := ingest.Fingerprint(data)
	log.Printf("run %s loaded %d rows, %d columns (fingerprint %s)",
		runID, data.Len(), data.NumColumns(), fingerprint)

	if problems := validateProject(proj); len(problems) > 0 {
		for _, problem := range problems {
			log.Printf("ERROR: %v", problem)
		}
		return "", fmt.Errorf("project validation failed with %d problem(s)", len(problems))
	}

	if err := proj.recodes.CalculateAll(data, proj.schema); err != nil {
		return "", err
	}
	log.Printf("run %s applied %d recode(s)", runID, proj.recodes.Len())
	p.recordUsage(proj)

	engine := tab.NewEngine(proj.schema, proj.filters, proj.classes)
	engine.SetAlpha(p.cfg.Tabulation.Alpha)
	engine.SetConcurrency(p.cfg.Tabulation.Concurrency)

	runDir := filepath.Join(p.cfg.Output.Dir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	mode := displayMode(p.cfg.Output.Display)
	for _, plan := range proj.plans {
		plan := plan
		results, err := engine.GenerateBatch(ctx, data, &plan)
		if err != nil {
			return "", err
		}

		csvPath := filepath.Join(runDir, planFileName(plan.Name)+".csv")
		if err := export.WriteCSVFile(csvPath, results, mode); err != nil {
			return "", err
		}
		log.Printf("run %s plan %q: %d table(s) written to %s", runID, plan.Name, len(results), csvPath)

		if p.cfg.Output.Archive {
			archivePath := filepath.Join(runDir, planFileName(plan.Name)+".staats")
			archive := &export.Archive{
				RunID:       runID,
				CreatedAt:   started,
				Fingerprint: fingerprint,
				Plan:        plan.Name,
				Results:     results,
			}
			if err := export.WriteArchive(archivePath, archive); err != nil {
				return "", err
			}
		}
	}

	if err := p.publish(ctx, runDir, runID); err != nil {
		return "", err
	}

	for _, stats := range p.usage.Top(5) {
		log.Printf("run %s usage: %s referenced %d time(s)", runID, stats.Variable, stats.Frequency)
	}
	log.Printf("run %s finished in %s", runID, time.Since(started).Round(time.Millisecond))
	return runDir, nil
}

// Validate loads the project and reports every definition problem
// without touching the response data.
func (p *Pipeline) Validate(ctx context.Context) ([]error, error) {
	proj, err := p.loadProject(ctx)
	if err != nil {
		return nil, err
	}
	return validateProject(proj), nil
}

func (p *Pipeline) loadProject(ctx context.Context) (*project, error) {
	cat, err := catalog.Open(p.cfg.Project.Path)
	if err != nil {
		return nil, err
	}
	defer cat.Close()

	schema, err := cat.LoadDataMap(ctx)
	if err != nil {
		return nil, err
	}

	recodes := recode.NewEngine()
	defs, err := cat.LoadRecodes(ctx)
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		if err := recodes.AddDef(def); err != nil {
			return nil, err
		}
	}

	filters := filter.NewEngine()
	filterDefs, err := cat.LoadFilters(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range filterDefs {
		filters.Add(f)
	}

	classes := class.NewEngine()
	classDefs, err := cat.LoadClasses(ctx)
	if err != nil {
		return nil, err
	}
	for _, cl := range classDefs {
		classes.Add(cl)
	}

	plans, err := cat.LoadPlans(ctx)
	if err != nil {
		return nil, err
	}

	return &project{
		schema:  schema,
		recodes: recodes,
		filters: filters,
		classes: classes,
		plans:   plans,
	}, nil
}

func (p *Pipeline) loadData(ctx context.Context, schema *types.DataMap) (*types.Dataset, error) {
	switch p.cfg.Input.Type {
	case "sqlite":
		return ingest.ReadSQLite(ctx, p.cfg.Input.Path, p.cfg.Input.Table, schema)
	default:
		return ingest.ReadCSV(p.cfg.Input.Path, schema)
	}
}

// validateProject collects every definition problem across recodes,
// filters, classes and plans so a single validation run reports them
// all.
func validateProject(proj *project) []error {
	var problems []error
	problems = append(problems, proj.recodes.Validate(proj.schema)...)
	problems = append(problems, proj.filters.Validate(proj.schema)...)
	problems = append(problems, proj.classes.Validate()...)
	problems = append(problems, validatePlans(proj)...)
	return problems
}

// validatePlans checks that every plan and tab references registered
// entities. Variable kinds are checked at generation time against the
// post-recode schema.
func validatePlans(proj *project) []error {
	known := func(variable string) bool {
		if _, ok := proj.schema.Lookup(variable); ok {
			return true
		}
		_, ok := proj.recodes.Get(variable)
		return ok
	}

	var problems []error
	for _, plan := range proj.plans {
		if plan.FilterName != "" {
			if _, ok := proj.filters.Get(plan.FilterName); !ok {
				problems = append(problems, fmt.Errorf("plan %q: filter %q not registered", plan.Name, plan.FilterName))
			}
		}
		if plan.WeightVar != "" && !known(plan.WeightVar) {
			problems = append(problems, fmt.Errorf("plan %q: weight variable %q unknown", plan.Name, plan.WeightVar))
		}
		for _, def := range plan.Tabs {
			if !known(def.RowVariable) {
				problems = append(problems, fmt.Errorf("plan %q tab %q: row variable %q unknown", plan.Name, def.Title, def.RowVariable))
			}
			if !known(def.ColumnVariable) {
				problems = append(problems, fmt.Errorf("plan %q tab %q: column variable %q unknown", plan.Name, def.Title, def.ColumnVariable))
			}
			if def.FilterName != "" {
				if _, ok := proj.filters.Get(def.FilterName); !ok {
					problems = append(problems, fmt.Errorf("plan %q tab %q: filter %q not registered", plan.Name, def.Title, def.FilterName))
				}
			}
			if def.ClassName != "" {
				if _, ok := proj.classes.Get(def.ClassName); !ok {
					problems = append(problems, fmt.Errorf("plan %q tab %q: class %q not registered", plan.Name, def.Title, def.ClassName))
				}
			}
			if def.WeightVariable != "" && !known(def.WeightVariable) {
				problems = append(problems, fmt.Errorf("plan %q tab %q: weight variable %q unknown", plan.Name, def.Title, def.WeightVariable))
			}
		}
	}
	return problems
}

// recordUsage notes every variable referenced by the project's
// definitions and plans.
func (p *Pipeline) recordUsage(proj *project) {
	for _, name := range proj.filters.Names() {
		f, _ := proj.filters.Get(name)
		conds, _, err := formula.Parse(f.Formula)
		if err != nil {
			continue
		}
		for _, cond := range conds {
			p.usage.Record(cond.Variable, string(cond.Op))
		}
	}
	for _, name := range proj.recodes.Names() {
		r, _ := proj.recodes.Get(name)
		for _, variable := range r.Variables() {
			p.usage.Record(variable, "")
		}
	}
	for _, plan := range proj.plans {
		for _, def := range plan.Tabs {
			p.usage.Record(def.RowVariable, "")
			p.usage.Record(def.ColumnVariable, "")
		}
	}
}

// publish pushes the run directory to the configured store.
func (p *Pipeline) publish(ctx context.Context, runDir, runID string) error {
	var store storage.ObjectStorage
	switch p.cfg.Storage.Type {
	case "local":
		local, err := storage.NewLocalStorage(p.cfg.Storage.Path)
		if err != nil {
			return err
		}
		store = local
	case "s3":
		s3store, err := storage.NewS3Storage(ctx, p.cfg.Storage.S3.Bucket, storage.S3Config{
			Region:   p.cfg.Storage.S3.Region,
			Endpoint: p.cfg.Storage.S3.Endpoint,
		})
		if err != nil {
			return err
		}
		store = s3store
	default:
		return nil
	}

	if err := storage.PublishDir(ctx, store, runDir, "runs/"+runID); err != nil {
		return err
	}
	log.Printf("run %s published to %s storage", runID, p.cfg.Storage.Type)
	return nil
}

func displayMode(display string) types.DisplayMode {
	switch display {
	case "horizontal":
		return types.DisplayHorizontal
	case "both":
		return types.DisplayBoth
	default:
		return types.DisplayVertical
	}
}

// planFileName turns a plan name into a safe file stem.
func planFileName(name string) string {
	stem := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if stem == "" {
		return "plan"
	}
	return stem
}
