package core

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Fuabioo/unsheet/internal/catalog"
	"github.com/Fuabioo/unsheet/internal/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recordingExtractor records calls and fails on the configured archives.
type recordingExtractor struct {
	mu       sync.Mutex
	calls    []string
	failOn   map[string]error
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (r *recordingExtractor) Name() string { return "recording" }

func (r *recordingExtractor) Extract(ctx context.Context, archivePath, destDir string) (*ExtractStats, error) {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	if n > r.maxSeen.Load() {
		r.maxSeen.Store(n)
	}

	r.mu.Lock()
	r.calls = append(r.calls, filepath.Base(archivePath)+"->"+filepath.Base(destDir))
	r.mu.Unlock()

	time.Sleep(time.Millisecond)
	return nil, r.failOn[filepath.Base(archivePath)]
}

// writeArchives places a placeholder file for each entry's archive in dir.
func writeArchives(t *testing.T, dir string, entries []catalog.Entry) {
	t.Helper()
	for _, e := range entries {
		require.NoError(t, os.WriteFile(filepath.Join(dir, e.Archive), []byte("sheet "+e.Code), 0644))
	}
}

// writeZipArchives places a real zip for each entry holding README-<code>.md.
func writeZipArchives(t *testing.T, dir string, entries []catalog.Entry) {
	t.Helper()
	for _, e := range entries {
		createTestZip(t, filepath.Join(dir, e.Archive), map[string]string{
			"README-" + e.Code + ".md": "# " + e.Folder,
		})
	}
}

func TestDriver_RunsEveryEntryInOrder(t *testing.T) {
	rec := &recordingExtractor{}
	d := NewDriver(t.TempDir(), rec, zaptest.NewLogger(t))

	report, err := d.Run(context.Background(), catalog.Entries())
	require.NoError(t, err)
	assert.True(t, report.OK())

	var want []string
	for _, e := range catalog.Entries() {
		want = append(want, e.Archive+"->"+e.Folder)
	}
	assert.Equal(t, want, rec.calls)
	assert.Equal(t, int32(1), rec.maxSeen.Load(), "extractions must not overlap")

	require.Len(t, report.Completed, 11)
	assert.Equal(t, "10", report.Completed[8].Code)
	assert.Equal(t, "desision-tree", report.Completed[8].Folder)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "recording", report.Extractor)
}

func TestDriver_StopsAtFirstFailure(t *testing.T) {
	boom := fmt.Errorf("boom")
	rec := &recordingExtractor{failOn: map[string]error{
		"sheet06.zip": boom,
		"sheet12.zip": fmt.Errorf("never reached"),
	}}
	d := NewDriver(t.TempDir(), rec, zaptest.NewLogger(t))

	report, err := d.Run(context.Background(), catalog.Entries())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeExtractFailed))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "sheet06.zip")

	assert.Len(t, rec.calls, 5, "01,02,03,04 then the failing 06")
	assert.Equal(t, "sheet06.zip->svm", rec.calls[4])

	require.NotNil(t, report.Failed)
	assert.False(t, report.OK())
	assert.Equal(t, "06", report.Failed.Code)
	assert.Contains(t, report.Failed.Error, "boom")
	assert.Len(t, report.Completed, 4)
}

func TestDriver_ReportShape(t *testing.T) {
	rec := &recordingExtractor{failOn: map[string]error{"sheet03.zip": fmt.Errorf("bad")}}
	work := t.TempDir()
	d := NewDriver(work, rec, nil)

	entries, err := catalog.Select("01", "03", "04")
	require.NoError(t, err)

	report, err := d.Run(context.Background(), entries)
	require.Error(t, err)

	want := &Report{
		Extractor: "recording",
		WorkDir:   work,
		Completed: []Result{{Code: "01", Archive: "sheet01.zip", Folder: "bayes-decision"}},
		Failed:    &Result{Code: "03", Archive: "sheet03.zip", Folder: "fisher-discriminant", Error: "bad"},
	}
	opts := []cmp.Option{
		cmpopts.IgnoreFields(Report{}, "RunID", "StartedAt", "Duration"),
		cmpopts.IgnoreFields(Result{}, "Duration"),
	}
	if diff := cmp.Diff(want, report, opts...); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestDriver_RejectsUnsafeFolder(t *testing.T) {
	rec := &recordingExtractor{}
	d := NewDriver(t.TempDir(), rec, nil)

	_, err := d.Run(context.Background(), []catalog.Entry{{Code: "99", Archive: "sheet99.zip", Folder: "../outside"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeExtractFailed))
	assert.Empty(t, rec.calls)
}

func TestDriver_RejectsMalformedCode(t *testing.T) {
	rec := &recordingExtractor{}
	d := NewDriver(t.TempDir(), rec, nil)

	_, err := d.Run(context.Background(), []catalog.Entry{{Code: "1x", Archive: "sheet1x.zip", Folder: "bayes-decision"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeExtractFailed))
	assert.Contains(t, err.Error(), "1x")
	assert.Empty(t, rec.calls)
}

func TestDriver_CancelledContext(t *testing.T) {
	rec := &recordingExtractor{}
	d := NewDriver(t.TempDir(), rec, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := d.Run(ctx, catalog.Entries())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.calls)
	assert.Equal(t, "01", report.Failed.Code)
}

func TestDriver_EmptySelection(t *testing.T) {
	rec := &recordingExtractor{}
	report, err := NewDriver(t.TempDir(), rec, nil).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Empty(t, report.Completed)
}

func TestDriver_ToolAllArchives(t *testing.T) {
	tool, callLog := writeFakeUnzip(t)
	work := t.TempDir()
	writeArchives(t, work, catalog.Entries())

	d := NewDriver(work, &ToolExtractor{Tool: tool}, zaptest.NewLogger(t))
	report, err := d.Run(context.Background(), catalog.Entries())
	require.NoError(t, err)
	require.Len(t, report.Completed, 11)

	for _, e := range catalog.Entries() {
		assert.FileExists(t, filepath.Join(work, e.Folder, e.Archive))
	}

	calls := readCalls(t, callLog)
	require.Len(t, calls, 11)
	assert.Equal(t, filepath.Join(work, "sheet01.zip")+" -d "+filepath.Join(work, "bayes-decision"), calls[0])
	assert.Equal(t, filepath.Join(work, "sheet13.zip")+" -d "+filepath.Join(work, "kernel-ridge-regression"), calls[10])
}

func TestDriver_ToolMissingArchiveFailsFast(t *testing.T) {
	tool, callLog := writeFakeUnzip(t)
	work := t.TempDir()
	writeArchives(t, work, catalog.Entries())
	require.NoError(t, os.Remove(filepath.Join(work, "sheet07.zip")))

	d := NewDriver(work, &ToolExtractor{Tool: tool}, zaptest.NewLogger(t))
	report, err := d.Run(context.Background(), catalog.Entries())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeExtractFailed))

	var toolErr *ToolError
	require.True(t, stderrors.As(err, &toolErr))
	assert.Equal(t, 9, toolErr.ExitCode)
	assert.Contains(t, toolErr.Stderr, "sheet07.zip")

	assert.Len(t, readCalls(t, callLog), 6, "no invocation after the failing one")
	assert.Equal(t, "07", report.Failed.Code)
	for _, folder := range []string{"neural-networks-1", "neural-networks-2", "desision-tree", "clustering", "kernel-ridge-regression"} {
		assert.NoDirExists(t, filepath.Join(work, folder))
	}
	assert.DirExists(t, filepath.Join(work, "svm"))
}

func TestDriver_ToolCorruptArchive(t *testing.T) {
	tool, callLog := writeFakeUnzip(t)
	work := t.TempDir()
	writeArchives(t, work, catalog.Entries())
	require.NoError(t, os.WriteFile(filepath.Join(work, "sheet01.zip"), []byte("corrupt"), 0644))

	d := NewDriver(work, &ToolExtractor{Tool: tool}, nil)
	_, err := d.Run(context.Background(), catalog.Entries())
	require.Error(t, err)

	var toolErr *ToolError
	require.True(t, stderrors.As(err, &toolErr))
	assert.Equal(t, 3, toolErr.ExitCode)
	assert.Len(t, readCalls(t, callLog), 1)
}

func TestDriver_NativeAllArchives(t *testing.T) {
	work := t.TempDir()
	writeZipArchives(t, work, catalog.Entries())

	d := NewDriver(work, &NativeExtractor{Limits: DefaultConfig().ToSecurityLimits()}, zaptest.NewLogger(t))
	report, err := d.Run(context.Background(), catalog.Entries())
	require.NoError(t, err)

	for _, res := range report.Completed {
		require.NotNil(t, res.Stats, res.Code)
		assert.Equal(t, 1, res.Stats.Files)
		assert.Equal(t, uint64(len("# "+res.Folder)), res.Stats.Bytes)
	}

	for _, e := range catalog.Entries() {
		got, err := os.ReadFile(filepath.Join(work, e.Folder, "README-"+e.Code+".md"))
		require.NoError(t, err)
		assert.Equal(t, "# "+e.Folder, string(got))
	}

	// A second run over the extracted folders succeeds and changes nothing.
	_, err = d.Run(context.Background(), catalog.Entries())
	require.NoError(t, err)
}

func TestDriver_NativeCorruptArchiveFailsFast(t *testing.T) {
	work := t.TempDir()
	writeZipArchives(t, work, catalog.Entries())
	require.NoError(t, os.WriteFile(filepath.Join(work, "sheet09.zip"), []byte("not a zip"), 0644))

	d := NewDriver(work, &NativeExtractor{Limits: DefaultConfig().ToSecurityLimits()}, nil)
	report, err := d.Run(context.Background(), catalog.Entries())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeExtractFailed))
	assert.True(t, errors.Has(err, errors.CodeZipInvalid))

	assert.Len(t, report.Completed, 7)
	assert.DirExists(t, filepath.Join(work, "neural-networks-1"))
	assert.NoDirExists(t, filepath.Join(work, "neural-networks-2"))
	assert.NoDirExists(t, filepath.Join(work, "desision-tree"))
}

func TestDriver_LockContention(t *testing.T) {
	dataDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Extract.Mode = ModeNative
	cfg.Extract.WorkDir = t.TempDir()
	cfg.Extract.LockTimeout = 200 * time.Millisecond

	d, err := NewDriverFromConfig(cfg, dataDir, nil)
	require.NoError(t, err)

	held, err := AcquireExclusive(context.Background(), d.LockPath, time.Second)
	require.NoError(t, err)
	defer held.Release()

	_, err = d.Run(context.Background(), catalog.Entries())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeLocked))
}

func TestNewDriverFromConfig(t *testing.T) {
	dataDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Extract.WorkDir = t.TempDir()
	cfg.Extract.LockTimeout = 3 * time.Second

	d, err := NewDriverFromConfig(cfg, dataDir, nil)
	require.NoError(t, err)

	assert.Equal(t, cfg.Extract.WorkDir, d.WorkDir)
	assert.Equal(t, 3*time.Second, d.LockTimeout)
	assert.Equal(t, LocksDir(dataDir), filepath.Dir(d.LockPath))
	assert.IsType(t, &ToolExtractor{}, d.Extractor)
}
