// Package pipeline runs the full generation sequence: template loading,
// spec traversal, optional ticket mirroring, and the two renderers. The
// stages run strictly in order; the first failing stage aborts the run
// and files already written stay as they are.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joergschultzelutter/openapi-to-robot-framework-datadriver-testgenerator/internal/jira"
	"github.com/joergschultzelutter/openapi-to-robot-framework-datadriver-testgenerator/internal/matrix"
	"github.com/joergschultzelutter/openapi-to-robot-framework-datadriver-testgenerator/internal/robot"
	"github.com/joergschultzelutter/openapi-to-robot-framework-datadriver-testgenerator/internal/templates"
	"github.com/joergschultzelutter/openapi-to-robot-framework-datadriver-testgenerator/internal/walker"
	"go.uber.org/zap"
)

// Error taxonomy of a run. Every failure wraps exactly one of these.
var (
	ErrInputMissing    = errors.New("input file missing")
	ErrParseFailure    = errors.New("cannot parse OpenAPI description")
	ErrTemplateMissing = errors.New("mandatory template missing")
	ErrSinkFailure     = errors.New("cannot write output")
	ErrTrackerFailure  = errors.New("tracker mirroring failed")
)

// IncludesFileName is the fixed name of the generated resource file.
const IncludesFileName = "includes.resource"

// Options configures one generation run.
type Options struct {
	SpecFile    string
	OutputName  string
	OutputDir   string
	TemplateDir string

	AddExampleData bool

	// JiraAccessKey enables ticket mirroring when non-empty.
	JiraAccessKey string
	JiraServerURL string
}

// Run executes the pipeline. Mirroring runs before the renderers so the
// created ticket keys end up in the tags of both artifacts.
func Run(opts Options, log *zap.Logger) error {
	log.Info("PASS 1 - read test generator output templates",
		zap.String("templateDir", opts.TemplateDir))

	renderSet, err := templates.LoadRenderSet(opts.TemplateDir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTemplateMissing, err)
	}

	var ticketSet templates.TicketSet
	if opts.JiraAccessKey != "" {
		if ticketSet, err = templates.LoadTicketSet(opts.TemplateDir); err != nil {
			return fmt.Errorf("%w: %v", ErrTemplateMissing, err)
		}
	}

	if info, err := os.Stat(opts.SpecFile); err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInputMissing, opts.SpecFile)
	}

	if err := ensureOutputDir(opts.OutputDir, log); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkFailure, err)
	}

	log.Info("PASS 2 - parse OpenAPI file", zap.String("specFile", opts.SpecFile))

	w, err := walker.Load(opts.SpecFile)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	model, err := w.Walk()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	log.Debug("OpenAPI walk successful",
		zap.Strings("servers", model.Servers),
		zap.Strings("variables", model.Variables),
		zap.Int("testCases", len(model.Cases)))

	if opts.JiraAccessKey != "" {
		log.Info("PASS 3 - create Jira tickets")
		client := jira.NewClient(opts.JiraServerURL, opts.JiraAccessKey, log)
		mirrored, err := client.Mirror(model.Cases, ticketSet, opts.SpecFile)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTrackerFailure, err)
		}
		model.Cases = mirrored
	} else {
		log.Info("skipping PASS 3 - no Jira access credentials provided")
	}

	excelPath := filepath.Join(opts.OutputDir, opts.OutputName+".xlsx")
	log.Info("PASS 4 - generate Excel file", zap.String("path", excelPath))

	renderer := matrix.NewRenderer(matrix.DefaultStyle())
	dims, err := renderer.WriteFile(model, opts.AddExampleData, excelPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSinkFailure, err)
	}
	log.Debug("Excel matrix written", zap.Int("rows", dims.Rows), zap.Int("cols", dims.Cols))

	// One timestamp per run so the includes and test suite headers agree.
	now := time.Now()

	includesPath := filepath.Join(opts.OutputDir, IncludesFileName)
	log.Info("PASS 5 - generate Robot Framework includes file", zap.String("path", includesPath))
	err = writeRendered(includesPath, func(out io.Writer) error {
		return robot.RenderIncludes(out, model.Servers, renderSet.Includes, opts.SpecFile, now)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSinkFailure, err)
	}

	robotPath := filepath.Join(opts.OutputDir, opts.OutputName+".robot")
	log.Info("PASS 6 - generate Robot Framework test case file", zap.String("path", robotPath))
	err = writeRendered(robotPath, func(out io.Writer) error {
		return robot.RenderScript(out, model, renderSet, opts.SpecFile, now)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSinkFailure, err)
	}

	return nil
}

// ensureOutputDir creates the output directory when absent. An existing
// path that is not a directory is an error.
func ensureOutputDir(dir string, log *zap.Logger) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", dir)
		}
		return nil
	}

	log.Info("output directory does not exist, creating it", zap.String("dir", dir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory %s: %w", dir, err)
	}
	return nil
}

// writeRendered creates the target file and streams one renderer into it.
func writeRendered(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create output file %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
