package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWritesSnapshotAndPDF(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "report.md")
	require.NoError(t, os.WriteFile(input, []byte("# Report\n\n"+strings.Repeat("A paragraph of text.\n\n", 80)), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pageflow.yaml"), []byte("title: Report\n"), 0644))

	opts := options{
		input:      input,
		configPath: filepath.Join(dir, "pageflow.yaml"),
		snapshot:   filepath.Join(dir, "out", "report.json"),
		pdf:        defaultOutput(input),
	}
	require.NoError(t, run(opts))

	data, err := os.ReadFile(opts.snapshot)
	require.NoError(t, err)
	var snap struct {
		Pages []struct {
			ID      int    `json:"id"`
			Content string `json:"content"`
		} `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Greater(t, len(snap.Pages), 1)
	assert.Contains(t, snap.Pages[0].Content, "<h1>Report</h1>")

	pdf, err := os.ReadFile(filepath.Join(dir, "report.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestRunReportsErrors(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, run(options{input: filepath.Join(dir, "missing.html")}))

	input := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(input, []byte("hello"), 0644))
	cfg := filepath.Join(dir, "pageflow.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("pagination:\n  split_ratio: 2\n"), 0644))
	assert.Error(t, run(options{input: input, configPath: cfg}))
}

func TestDefaultOutput(t *testing.T) {
	assert.Equal(t, "docs/report.pdf", defaultOutput("docs/report.md"))
	assert.Equal(t, "notes.pdf", defaultOutput("notes"))
	assert.Equal(t, "output.pdf", defaultOutput("https://example.com/page.html"))
}

func TestWatcherCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "doc.html")
	other := filepath.Join(dir, "other.html")
	require.NoError(t, os.WriteFile(target, []byte("<p>a</p>"), 0644))

	var calls atomic.Int32
	w, err := NewWatcher([]string{target, ""}, func(string) error {
		calls.Add(1)
		return nil
	}, false)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte("<p>b</p>"), 0644))
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(3 * settleDelay)
	assert.Equal(t, int32(1), calls.Load())
}
