package core

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Fuabioo/unsheet/internal/catalog"
	"github.com/Fuabioo/unsheet/internal/errors"
	"github.com/Fuabioo/unsheet/internal/security"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Result records one extraction.
type Result struct {
	Code     string        `json:"code"`
	Archive  string        `json:"archive"`
	Folder   string        `json:"folder"`
	Duration time.Duration `json:"duration_ns"`
	Stats    *ExtractStats `json:"stats,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Report describes a driver run. Completed lists finished extractions in
// order; Failed is the extraction that stopped the run, if any.
type Report struct {
	RunID     string        `json:"run_id"`
	Extractor string        `json:"extractor"`
	WorkDir   string        `json:"workdir"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Completed []Result      `json:"completed"`
	Failed    *Result       `json:"failed,omitempty"`
}

// OK reports whether every selected entry was extracted.
func (r *Report) OK() bool {
	return r.Failed == nil
}

// Driver extracts catalog entries one after another and stops at the first
// failure.
type Driver struct {
	WorkDir   string
	Extractor Extractor
	Logger    *zap.Logger

	// LockPath, when set, is flocked for the whole run.
	LockPath    string
	LockTimeout time.Duration
}

// NewDriver creates a Driver without locking.
func NewDriver(workDir string, ex Extractor, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		WorkDir:     workDir,
		Extractor:   ex,
		Logger:      logger,
		LockTimeout: 10 * time.Second,
	}
}

// NewDriverFromConfig wires a Driver from cfg, locking the workdir through
// a lock file under dataDir.
func NewDriverFromConfig(cfg *Config, dataDir string, logger *zap.Logger) (*Driver, error) {
	ex, err := NewExtractor(cfg)
	if err != nil {
		return nil, err
	}

	lockPath, err := LockPath(dataDir, cfg.Extract.WorkDir)
	if err != nil {
		return nil, err
	}

	d := NewDriver(cfg.Extract.WorkDir, ex, logger)
	d.LockPath = lockPath
	d.LockTimeout = cfg.Extract.LockTimeout
	return d, nil
}

// Run extracts each entry's archive into its folder, in order. The report is
// returned even on error and covers everything attempted.
func (d *Driver) Run(ctx context.Context, entries []catalog.Entry) (*Report, error) {
	started := time.Now()
	report := &Report{
		RunID:     uuid.New().String(),
		Extractor: d.Extractor.Name(),
		WorkDir:   d.WorkDir,
		StartedAt: started,
		Completed: []Result{},
	}
	defer func() { report.Duration = time.Since(started) }()

	log := d.Logger.With(zap.String("run_id", report.RunID))

	if d.LockPath != "" {
		lock, err := AcquireExclusive(ctx, d.LockPath, d.LockTimeout)
		if err != nil {
			if stderrors.Is(err, ErrLockTimeout) {
				return report, errors.Locked(d.WorkDir)
			}
			return report, fmt.Errorf("failed to lock workdir: %w", err)
		}
		log.Debug("workdir locked", zap.String("lock", lock.Path()))
		defer func() {
			if err := lock.Release(); err != nil {
				log.Warn("failed to release lock", zap.Error(err))
			}
		}()
	}

	log.Debug("run started",
		zap.String("extractor", report.Extractor),
		zap.String("workdir", d.WorkDir),
		zap.Int("entries", len(entries)))

	for _, entry := range entries {
		res, err := d.extractOne(ctx, entry)
		if err != nil {
			res.Error = err.Error()
			report.Failed = &res
			log.Error("extraction failed",
				zap.String("code", entry.Code),
				zap.String("archive", entry.Archive),
				zap.String("folder", entry.Folder),
				zap.Duration("duration", res.Duration),
				zap.Error(err))
			return report, errors.ExtractFailed(entry.Archive, err)
		}

		report.Completed = append(report.Completed, res)
		fields := []zap.Field{
			zap.String("code", entry.Code),
			zap.String("archive", entry.Archive),
			zap.String("folder", entry.Folder),
			zap.Duration("duration", res.Duration),
		}
		if res.Stats != nil {
			fields = append(fields, zap.Int("files", res.Stats.Files), zap.Uint64("bytes", res.Stats.Bytes))
		}
		log.Info("extracted", fields...)
	}

	return report, nil
}

func (d *Driver) extractOne(ctx context.Context, entry catalog.Entry) (Result, error) {
	res := Result{Code: entry.Code, Archive: entry.Archive, Folder: entry.Folder}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := security.ValidateCode(entry.Code); err != nil {
		return res, err
	}
	if err := security.ValidateFolderName(entry.Folder); err != nil {
		return res, err
	}

	archive := filepath.Join(d.WorkDir, entry.Archive)
	dest := filepath.Join(d.WorkDir, entry.Folder)

	start := time.Now()
	stats, err := d.Extractor.Extract(ctx, archive, dest)
	res.Duration = time.Since(start)
	res.Stats = stats
	return res, err
}
