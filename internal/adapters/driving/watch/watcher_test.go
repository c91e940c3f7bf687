package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driving"
)

// recordingCoordinator records the batches it is asked to run.
type recordingCoordinator struct {
	mu       sync.Mutex
	existing []string
	runs     []string
	failOn   string
}

func (c *recordingCoordinator) Run(_ context.Context, batch string, _ driving.RunOptions) (*domain.BatchReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = append(c.runs, batch)
	if batch == c.failOn {
		return nil, errors.New("batch locked")
	}
	return &domain.BatchReport{Batch: batch, Total: 1, Persisted: 1}, nil
}

func (c *recordingCoordinator) RunAll(context.Context, driving.RunOptions) ([]*domain.BatchReport, error) {
	return nil, nil
}

func (c *recordingCoordinator) Batches(context.Context) ([]string, error) {
	return c.existing, nil
}

func (c *recordingCoordinator) Status() driving.BatchStatus {
	return driving.BatchStatus{}
}

func (c *recordingCoordinator) Runs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.runs...)
}

func readyOnly(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".ready")
}

// startWatcher runs w in the background and waits until it is watching.
func startWatcher(t *testing.T, w *Watcher) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-w.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("watcher never became ready")
	}
	return cancel, done
}

func TestWatcher_RunsNewBatch(t *testing.T) {
	root := t.TempDir()
	coord := &recordingCoordinator{}
	var mu sync.Mutex
	var reports []*domain.BatchReport
	w := New(Config{
		Root:    root,
		IsBatch: readyOnly,
		Settle:  20 * time.Millisecond,
		OnReport: func(r *domain.BatchReport) {
			mu.Lock()
			defer mu.Unlock()
			reports = append(reports, r)
		},
	}, coord)

	cancel, done := startWatcher(t, w)

	require.NoError(t, os.Mkdir(filepath.Join(root, "batch-01.ready"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "batch-02.tmp"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "file.ready"), []byte("x"), 0o600))

	assert.Eventually(t, func() bool {
		return len(coord.Runs()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"batch-01.ready"}, coord.Runs())
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reports, 1)
	assert.Equal(t, "batch-01.ready", reports[0].Batch)
}

func TestWatcher_SkipsExistingByDefault(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "old.ready"), 0o755))
	coord := &recordingCoordinator{existing: []string{"old.ready"}}
	w := New(Config{Root: root, IsBatch: readyOnly, Settle: 20 * time.Millisecond}, coord)

	cancel, done := startWatcher(t, w)
	require.NoError(t, os.Mkdir(filepath.Join(root, "new.ready"), 0o755))

	assert.Eventually(t, func() bool {
		return len(coord.Runs()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"new.ready"}, coord.Runs())
}

func TestWatcher_RunExisting(t *testing.T) {
	root := t.TempDir()
	coord := &recordingCoordinator{existing: []string{"a.ready", "b.ready"}}
	w := New(Config{Root: root, IsBatch: readyOnly, RunExisting: true, Settle: 20 * time.Millisecond}, coord)

	cancel, done := startWatcher(t, w)

	assert.Eventually(t, func() bool {
		return len(coord.Runs()) == 2
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"a.ready", "b.ready"}, coord.Runs())
}

func TestWatcher_FailedBatchKeepsWatching(t *testing.T) {
	root := t.TempDir()
	coord := &recordingCoordinator{failOn: "bad.ready"}
	w := New(Config{Root: root, IsBatch: readyOnly, Settle: 20 * time.Millisecond}, coord)

	cancel, done := startWatcher(t, w)

	require.NoError(t, os.Mkdir(filepath.Join(root, "bad.ready"), 0o755))
	assert.Eventually(t, func() bool {
		return len(coord.Runs()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Mkdir(filepath.Join(root, "good.ready"), 0o755))
	assert.Eventually(t, func() bool {
		return len(coord.Runs()) == 2
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "DNorm_OUTPUT", "PUBMED")
	w := New(Config{Root: root}, &recordingCoordinator{})

	cancel, done := startWatcher(t, w)
	cancel()
	require.NoError(t, <-done)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWatcher_NilCoordinator(t *testing.T) {
	w := New(Config{Root: t.TempDir()}, nil)

	err := w.Run(context.Background())

	assert.Error(t, err)
}

func TestWatcher_HandleEvent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "b1.ready"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, ".b2.ready"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.ready"), []byte("x"), 0o600))
	w := New(Config{Root: root, IsBatch: readyOnly}, &recordingCoordinator{})

	tests := []struct {
		name     string
		path     string
		op       fsnotify.Op
		wantName string
		want     action
	}{
		{"created batch", filepath.Join(root, "b1.ready"), fsnotify.Create, "b1.ready", actionCreated},
		{"hidden batch", filepath.Join(root, ".b2.ready"), fsnotify.Create, "", actionNone},
		{"file not dir", filepath.Join(root, "f.ready"), fsnotify.Create, "", actionNone},
		{"wrong suffix", filepath.Join(root, "b1"), fsnotify.Create, "", actionNone},
		{"removed batch", filepath.Join(root, "gone.ready"), fsnotify.Remove, "gone.ready", actionRemoved},
		{"renamed away", filepath.Join(root, "b1.ready"), fsnotify.Rename, "b1.ready", actionRemoved},
		{"nested path", filepath.Join(root, "b1.ready", "doc.xml"), fsnotify.Create, "", actionNone},
		{"chmod", filepath.Join(root, "b1.ready"), fsnotify.Chmod, "", actionNone},
		{"created vanished", filepath.Join(root, "never.ready"), fsnotify.Create, "", actionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, act := w.handleEvent(fsnotify.Event{Name: tt.path, Op: tt.op})

			assert.Equal(t, tt.want, act)
			assert.Equal(t, tt.wantName, name)
		})
	}
}
