package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/DjordjeVuckovic/probe-report/internal/corpus"
	"github.com/DjordjeVuckovic/probe-report/internal/dataset"
	"github.com/DjordjeVuckovic/probe-report/internal/probe"
	"github.com/DjordjeVuckovic/probe-report/internal/report"
	"github.com/DjordjeVuckovic/probe-report/internal/results"
	"github.com/DjordjeVuckovic/probe-report/internal/runspec"
	"github.com/DjordjeVuckovic/probe-report/internal/task"
	"github.com/google/uuid"
)

type Runner struct {
	spec    *runspec.RunSpec
	probe   probe.Probe
	source  *dataset.Source
	storers []results.Storer
	now     func() time.Time
}

func New(spec *runspec.RunSpec, p probe.Probe, source *dataset.Source, storers ...results.Storer) *Runner {
	return &Runner{
		spec:    spec,
		probe:   p,
		source:  source,
		storers: storers,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run evaluates the probe and writes every report into the run's output directory:
// dimension overlap first, then correlations, then attachment scores.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	tasks, err := task.ParseAll(r.spec.Tasks)
	if err != nil {
		return nil, err
	}
	if err := r.source.Reader().Require(r.spec.Languages, r.spec.Tasks); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:      uuid.New(),
		Experiment: r.spec.ExperimentName(),
		OutDir:     r.spec.OutDir(),
		CreatedAt:  r.now(),
	}
	if err := os.MkdirAll(res.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	opts := report.Options{Threshold: r.spec.ProbeThreshold, DropParts: r.spec.DropPartsValue()}
	res.Gated, res.DropParts = opts.Gated(), opts.DropParts
	test := report.NewReporter(r.probe, r.source, dataset.ModeTest, opts)
	train := report.NewReporter(r.probe, r.source, dataset.ModeTrain, opts)

	slog.Info("Starting probe report",
		"run_id", res.RunID,
		"out_dir", res.OutDir,
		"languages", r.spec.Languages,
		"tasks", r.spec.Tasks,
		"gated", opts.Gated(),
		"drop_parts", opts.DropParts)

	if opts.Gated() && r.spec.DropParts == nil {
		if err := r.dimensionality(ctx, test, tasks, res); err != nil {
			return nil, fmt.Errorf("selected dimensionality: %w", err)
		}
	}

	var probing, control []task.Task
	for _, t := range tasks {
		if t.IsControl() {
			control = append(control, t)
		} else {
			probing = append(probing, t)
		}
	}
	if len(probing) > 0 {
		if err := r.correlation(ctx, test, probing, res); err != nil {
			return nil, fmt.Errorf("%s correlation: %w", dataset.ModeTest, err)
		}
	}
	if len(control) > 0 {
		if err := r.correlation(ctx, train, control, res); err != nil {
			return nil, fmt.Errorf("%s correlation: %w", dataset.ModeTrain, err)
		}
	}

	if slices.Contains(r.spec.Tasks, task.DepDistance) {
		if err := r.attachment(ctx, test, res); err != nil {
			return nil, err
		}
	}

	if err := r.store(ctx, res); err != nil {
		return nil, err
	}

	slog.Info("Probe report finished", "run_id", res.RunID, "files", len(res.Files()), "records", len(res.Records))
	return res, nil
}

func (r *Runner) dimensionality(ctx context.Context, base *report.Reporter, tasks []task.Task, res *Result) error {
	dr := report.NewSelectedDimensionalityReporter(base, r.spec.Languages, tasks)
	matrices := report.DimensionMatrices{}
	if err := dr.Compute(ctx, matrices); err != nil {
		return err
	}
	entries, err := dr.Write(res.OutDir, matrices)
	if err != nil {
		return err
	}
	res.add(base.Mode(), entries)
	return nil
}

func (r *Runner) correlation(ctx context.Context, base *report.Reporter, tasks []task.Task, res *Result) error {
	cr, err := report.NewCorrelationReporter(base, r.spec.Languages, tasks, r.spec.Correlation)
	if err != nil {
		return err
	}
	computed := report.CorrelationResults{}
	if err := cr.Compute(ctx, computed); err != nil {
		return err
	}
	entries, err := cr.Write(res.OutDir, computed)
	if err != nil {
		return err
	}
	res.add(base.Mode(), entries)
	return nil
}

func (r *Runner) attachment(ctx context.Context, base *report.Reporter, res *Result) error {
	punct, err := r.punctuationMasks(base.Mode())
	if err != nil {
		return err
	}

	if slices.Contains(r.spec.Tasks, task.DepDepth) {
		depths := report.Depths{}
		if err := report.NewDependencyDepthReporter(base, r.spec.Languages).Compute(ctx, depths); err != nil {
			return fmt.Errorf("dependency depths: %w", err)
		}
		if err := r.attachmentScore(ctx, report.NewUASReporter(base, r.spec.Languages, punct, depths), res); err != nil {
			return err
		}
	}

	return r.attachmentScore(ctx, report.NewUASReporter(base, r.spec.Languages, punct, nil), res)
}

func (r *Runner) attachmentScore(ctx context.Context, ur *report.UASReporter, res *Result) error {
	scores := report.AttachmentResults{}
	if err := ur.Compute(ctx, scores); err != nil {
		return fmt.Errorf("%s: %w", ur.Metric(), err)
	}
	entries, err := ur.Write(res.OutDir, scores)
	if err != nil {
		return fmt.Errorf("%s: %w", ur.Metric(), err)
	}
	res.add(ur.Mode(), entries)
	return nil
}

// punctuationMasks reads the CoNLL-U source of the dep_distance data of every language.
func (r *Runner) punctuationMasks(mode string) (report.PunctuationMasks, error) {
	masks := report.PunctuationMasks{}
	for _, group := range r.spec.Languages {
		for _, lang := range dataset.SplitGroup(group) {
			if _, ok := masks[lang]; ok {
				continue
			}
			path, err := r.source.Reader().ConllPath(mode, lang, task.DepDistance)
			if err != nil {
				return nil, err
			}
			sentences, err := corpus.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read %s conll: %w", lang, err)
			}
			masks[lang] = corpus.PunctuationMasks(sentences)
			slog.Debug("Loaded punctuation masks", "language", lang, "sentences", len(sentences), "path", path)
		}
	}
	return masks, nil
}

func (r *Runner) store(ctx context.Context, res *Result) error {
	for _, s := range r.storers {
		if err := s.SaveBulk(ctx, res.Records); err != nil {
			return fmt.Errorf("save results: %w", err)
		}
	}
	return nil
}
