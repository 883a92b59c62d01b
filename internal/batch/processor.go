package batch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/calibtools/dcc-convert/constants"
	"github.com/calibtools/dcc-convert/internal/assemble"
	"github.com/calibtools/dcc-convert/internal/common"
	"github.com/calibtools/dcc-convert/internal/dccxml"
	"github.com/calibtools/dcc-convert/internal/ingest"
	"github.com/calibtools/dcc-convert/internal/validate"
)

// Outcome is the per-document result of a batch run: success with an output
// path, or failure with a reason. A batch never fails fast.
type Outcome struct {
	JobID             uuid.UUID
	SourcePath        string
	OutputPath        string
	CertificateNumber string
	Status            constants.JobStatus
	Error             string
	Warnings          []string
	Findings          []string
	Duration          time.Duration
}

// Processor runs the full pipeline (text extraction, assembly, validation,
// serialization) for single files or whole directories.
type Processor struct {
	source     *ingest.Source
	assembler  *assemble.Assembler
	serializer *dccxml.Serializer
	store      *Store
	workers    int
	docTimeout time.Duration
	logger     *slog.Logger
}

func NewProcessor(source *ingest.Source, assembler *assemble.Assembler, serializer *dccxml.Serializer, store *Store, cfg common.BatchConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Processor{
		source:     source,
		assembler:  assembler,
		serializer: serializer,
		store:      store,
		workers:    cfg.Workers,
		docTimeout: cfg.DocTimeout,
		logger:     logger,
	}
}

// ProcessFile runs one document through the pipeline and writes the DCC XML
// to outPath.
func (p *Processor) ProcessFile(ctx context.Context, path, outPath string, ov assemble.Overrides, opts dccxml.Options) Outcome {
	if p.docTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.docTimeout)
		defer cancel()
	}
	start := time.Now()
	out := Outcome{
		JobID:      uuid.New(),
		SourcePath: path,
		Status:     constants.JobStatusFailed,
	}

	hash, err := hashFile(path)
	if err != nil {
		out.Error = err.Error()
		out.Duration = time.Since(start)
		return out
	}
	format := constants.MapExtToFormat(filepath.Ext(path))
	p.recordStart(ctx, out.JobID, path, hash, format)

	res, err := p.source.Text(ctx, path)
	out.Warnings = append(out.Warnings, res.Warnings...)
	if err != nil {
		return p.finish(ctx, out, start, fmt.Errorf("extract text: %w", err))
	}
	p.recordStatus(ctx, out.JobID, constants.JobStatusTextOK)

	cert, warnings, err := p.assembler.Assemble(res.Text, path, ov)
	out.Warnings = append(out.Warnings, warnings...)
	if err != nil {
		return p.finish(ctx, out, start, fmt.Errorf("assemble: %w", err))
	}
	out.CertificateNumber = cert.CertificateNumber
	out.Findings = validate.Certificate(cert)
	p.recordStatus(ctx, out.JobID, constants.JobStatusAssembled)

	if err := p.serializer.WriteFile(cert, outPath, opts); err != nil {
		return p.finish(ctx, out, start, fmt.Errorf("serialize: %w", err))
	}
	out.OutputPath = outPath
	out.Status = constants.JobStatusSucceeded
	return p.finish(ctx, out, start, nil)
}

// ProcessDirectory walks root, runs every supported document through the
// pipeline with a bounded worker pool, and returns one outcome per document.
// Identical file content is processed once per run.
func (p *Processor) ProcessDirectory(ctx context.Context, root, outDir string, ov assemble.Overrides, opts dccxml.Options) ([]Outcome, error) {
	paths, err := collectInputs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var (
		mu       sync.Mutex
		outcomes = make([]Outcome, 0, len(paths))
		seen     = make(map[string]string) // content hash -> first path
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			hash, hashErr := hashFile(path)
			if hashErr == nil {
				mu.Lock()
				first, dup := seen[hash]
				if !dup {
					seen[hash] = path
				}
				mu.Unlock()
				if dup {
					mu.Lock()
					outcomes = append(outcomes, Outcome{
						JobID:      uuid.New(),
						SourcePath: path,
						Status:     constants.JobStatusDuplicate,
						Error:      fmt.Sprintf("identical content already processed from %s", first),
					})
					mu.Unlock()
					return nil
				}
			}

			// a failed document is an outcome, never an aborted batch
			o := p.ProcessFile(gctx, path, outputPath(outDir, path), ov, opts)
			mu.Lock()
			outcomes = append(outcomes, o)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].SourcePath < outcomes[j].SourcePath })

	succeeded := 0
	for _, o := range outcomes {
		if o.Status == constants.JobStatusSucceeded {
			succeeded++
		}
	}
	p.logger.Info("batch.run.done",
		"root", root,
		"documents", len(outcomes),
		"succeeded", succeeded,
	)
	return outcomes, nil
}

func (p *Processor) finish(ctx context.Context, out Outcome, start time.Time, err error) Outcome {
	if err != nil {
		out.Error = err.Error()
		out.Status = constants.JobStatusFailed
		p.logger.Error("batch.document.failed", "path", out.SourcePath, "error", err)
	}
	out.Duration = time.Since(start)
	if p.store != nil {
		if dbErr := p.store.Finish(ctx, out.JobID, out); dbErr != nil {
			p.logger.Warn("batch.store.finish_failed", "job_id", out.JobID.String(), "error", dbErr)
		}
	}
	return out
}

func (p *Processor) recordStart(ctx context.Context, id uuid.UUID, path, hash, format string) {
	if p.store == nil {
		return
	}
	if err := p.store.Start(ctx, id, path, hash, format); err != nil {
		p.logger.Warn("batch.store.start_failed", "job_id", id.String(), "error", err)
	}
}

func (p *Processor) recordStatus(ctx context.Context, id uuid.UUID, status constants.JobStatus) {
	if p.store == nil {
		return
	}
	if err := p.store.SetStatus(ctx, id, status); err != nil {
		p.logger.Warn("batch.store.status_failed", "job_id", id.String(), "error", err)
	}
}

// collectInputs walks root and returns every supported, non-hidden file.
func collectInputs(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if isHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func outputPath(outDir, sourcePath string) string {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, stem+".dcc.xml")
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
