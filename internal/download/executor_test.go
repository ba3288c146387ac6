package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/QuesoDad/DownloadAllOfIt/internal/config"
	ioutils "github.com/QuesoDad/DownloadAllOfIt/internal/io"
	"github.com/QuesoDad/DownloadAllOfIt/internal/model"
	"github.com/QuesoDad/DownloadAllOfIt/internal/ytdlp"
)

type fakeEngine struct {
	meta        *model.Metadata
	extractErr  error
	downloadErr error

	downloadCalls []ytdlp.DownloadRequest
}

func (f *fakeEngine) Extract(ctx context.Context, url string) (*model.Metadata, error) {
	return f.meta, f.extractErr
}

func (f *fakeEngine) Download(ctx context.Context, req ytdlp.DownloadRequest, onProgress func(float64), cancelled func() bool) error {
	f.downloadCalls = append(f.downloadCalls, req)
	if f.downloadErr != nil {
		return f.downloadErr
	}
	if onProgress != nil {
		onProgress(50)
		onProgress(100)
	}
	return nil
}

type fakeLedger struct {
	entries map[string]string
	records []string
}

func (f *fakeLedger) Lookup(url string) (string, bool, error) {
	path, ok := f.entries[url]
	return path, ok, nil
}

func (f *fakeLedger) Record(url, path, title string) error {
	if f.entries == nil {
		f.entries = map[string]string{}
	}
	f.entries[url] = path
	f.records = append(f.records, url)
	return nil
}

type fakePost struct {
	calls []string
}

func (f *fakePost) Run(ctx context.Context, mediaPath string, meta *model.Metadata, originalURL string) {
	f.calls = append(f.calls, mediaPath)
}

type fakeFetcher struct{}

func (fakeFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	return nil, errors.New("no thumbnails in tests")
}

func newTestExecutor(t *testing.T, engine *fakeEngine, ledger *fakeLedger) (*Executor, *fakePost, string) {
	t.Helper()
	root := t.TempDir()
	post := &fakePost{}
	executor := &Executor{
		settings:   config.DefaultSettings(),
		engine:     engine,
		ledger:     ledger,
		thumbs:     fakeFetcher{},
		images:     ioutils.NewImageService(),
		post:       post,
		outputRoot: root,
	}
	return executor, post, root
}

func sampleMeta() *model.Metadata {
	return &model.Metadata{
		Title:      "Some Video",
		Channel:    "Some Channel",
		UploadDate: "20231115",
		Timestamp:  1700000000,
	}
}

func TestExecute_Success(t *testing.T) {
	engine := &fakeEngine{meta: sampleMeta()}
	ledger := &fakeLedger{}
	executor, post, root := newTestExecutor(t, engine, ledger)

	result := executor.Execute(context.Background(), Item{URL: "https://example.com/v"}, nil)

	if result.Outcome != OutcomeDownloaded {
		t.Fatalf("Outcome = %v, reason %q", result.Outcome, result.Reason)
	}
	wantPath := filepath.Join(root, "Some Channel", "Some Video.mp4")
	if result.OutputPath != wantPath {
		t.Errorf("OutputPath = %q, want %q", result.OutputPath, wantPath)
	}
	if len(engine.downloadCalls) != 1 {
		t.Fatalf("engine.Download called %d times", len(engine.downloadCalls))
	}
	if got := engine.downloadCalls[0].OutputBase; got != filepath.Join(root, "Some Channel", "Some Video") {
		t.Errorf("OutputBase = %q", got)
	}
	if len(post.calls) != 1 || post.calls[0] != wantPath {
		t.Errorf("post-processing calls = %v", post.calls)
	}
	if len(ledger.records) != 1 {
		t.Errorf("ledger records = %v, want one record after success", ledger.records)
	}
}

func TestExecute_PlaylistAndYearSubfolders(t *testing.T) {
	engine := &fakeEngine{meta: sampleMeta()}
	executor, _, root := newTestExecutor(t, engine, &fakeLedger{})
	executor.settings.UseYearSubfolders = true

	result := executor.Execute(context.Background(),
		Item{URL: "u", Playlist: "My List"}, nil)

	want := filepath.Join(root, "Some Channel", "My List", "2023", "Some Video.mp4")
	if result.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", result.OutputPath, want)
	}
	if _, err := os.Stat(filepath.Dir(want)); err != nil {
		t.Errorf("destination dir not created: %v", err)
	}
}

func TestExecute_SkipWhenLedgerHasURL(t *testing.T) {
	engine := &fakeEngine{meta: sampleMeta()}
	ledger := &fakeLedger{entries: map[string]string{"u": "/old/path.mp4"}}
	executor, post, _ := newTestExecutor(t, engine, ledger)

	result := executor.Execute(context.Background(), Item{URL: "u"}, nil)

	if result.Outcome != OutcomeSkipped {
		t.Fatalf("Outcome = %v", result.Outcome)
	}
	if result.OutputPath != "/old/path.mp4" {
		t.Errorf("OutputPath = %q, want ledger path", result.OutputPath)
	}
	if len(engine.downloadCalls) != 0 {
		t.Error("skipped item must not reach the engine")
	}
	if len(post.calls) != 0 {
		t.Error("skipped item must not be post-processed")
	}
}

func TestExecute_SkipWhenFileExists(t *testing.T) {
	engine := &fakeEngine{meta: sampleMeta()}
	executor, _, root := newTestExecutor(t, engine, &fakeLedger{})

	existing := filepath.Join(root, "Some Channel", "Some Video.mp4")
	if err := os.MkdirAll(filepath.Dir(existing), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(existing, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	result := executor.Execute(context.Background(), Item{URL: "u"}, nil)

	if result.Outcome != OutcomeSkipped {
		t.Fatalf("Outcome = %v", result.Outcome)
	}
	if len(engine.downloadCalls) != 0 {
		t.Error("existing file must not be re-downloaded")
	}
}

func TestExecute_CancelledBeforeStart(t *testing.T) {
	engine := &fakeEngine{meta: sampleMeta()}
	executor, _, _ := newTestExecutor(t, engine, &fakeLedger{})

	result := executor.Execute(context.Background(), Item{URL: "u"}, func() bool { return true })

	if result.Outcome != OutcomeCancelled {
		t.Errorf("Outcome = %v", result.Outcome)
	}
	if len(engine.downloadCalls) != 0 {
		t.Error("cancelled item must not reach the engine")
	}
}

func TestExecute_CancelledDuringTransfer(t *testing.T) {
	engine := &fakeEngine{meta: sampleMeta(), downloadErr: ytdlp.ErrCancelled}
	ledger := &fakeLedger{}
	executor, post, _ := newTestExecutor(t, engine, ledger)

	result := executor.Execute(context.Background(), Item{URL: "u"}, nil)

	if result.Outcome != OutcomeCancelled {
		t.Fatalf("Outcome = %v", result.Outcome)
	}
	if len(post.calls) != 0 {
		t.Error("cancelled item must not be post-processed")
	}
	if len(ledger.records) != 0 {
		t.Error("cancelled item must not be recorded")
	}
}

func TestExecute_PrivateVideo(t *testing.T) {
	engine := &fakeEngine{extractErr: errors.New("ERROR: Private video")}
	executor, _, _ := newTestExecutor(t, engine, &fakeLedger{})

	result := executor.Execute(context.Background(), Item{URL: "u"}, nil)

	if result.Outcome != OutcomeFailed {
		t.Fatalf("Outcome = %v", result.Outcome)
	}
	if result.Reason != model.ReasonPrivate {
		t.Errorf("Reason = %q", result.Reason)
	}
}

func TestExecute_MetadataUnavailable(t *testing.T) {
	engine := &fakeEngine{extractErr: errors.New("network unreachable")}
	executor, _, _ := newTestExecutor(t, engine, &fakeLedger{})

	result := executor.Execute(context.Background(), Item{URL: "u"}, nil)

	if result.Outcome != OutcomeFailed || result.Reason != model.ReasonPrivate {
		t.Errorf("Outcome = %v, Reason = %q", result.Outcome, result.Reason)
	}
}

func TestExecute_TransferFailure(t *testing.T) {
	engine := &fakeEngine{meta: sampleMeta(), downloadErr: fmt.Errorf("exit status 1 | ERROR: Video unavailable")}
	ledger := &fakeLedger{}
	executor, _, _ := newTestExecutor(t, engine, ledger)

	result := executor.Execute(context.Background(), Item{URL: "u"}, nil)

	if result.Outcome != OutcomeFailed {
		t.Fatalf("Outcome = %v", result.Outcome)
	}
	if result.Reason != model.ReasonPrivate {
		t.Errorf("Reason = %q", result.Reason)
	}
	if len(ledger.records) != 0 {
		t.Error("failed item must not be recorded")
	}
}

func TestExecute_ProgressForwarded(t *testing.T) {
	engine := &fakeEngine{meta: sampleMeta()}
	executor, _, _ := newTestExecutor(t, engine, &fakeLedger{})

	var percents []float64
	executor.callbacks.OnProgress = func(p float64) { percents = append(percents, p) }

	executor.Execute(context.Background(), Item{URL: "u"}, nil)

	if len(percents) != 2 || percents[1] != 100 {
		t.Errorf("percents = %v", percents)
	}
}
