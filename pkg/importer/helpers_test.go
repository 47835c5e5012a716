package importer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/rolodex/pkg/nickname"
)

func TestDownloadFile(t *testing.T) {
	content := "hello world"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(content))
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "test.txt")
	if err := downloadFile(context.Background(), ts.URL, dest); err != nil {
		t.Fatalf("downloadFile: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != content {
		t.Errorf("content = %q, want %q", string(data), content)
	}
}

func TestDownloadFile_Retry(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "retry.txt")
	if err := downloadFile(context.Background(), ts.URL, dest); err != nil {
		t.Fatalf("downloadFile with retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDownloadFile_AllFail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "fail.txt")
	err := downloadFile(context.Background(), ts.URL, dest)
	if err == nil {
		t.Error("expected error after all retries exhausted")
	}
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	m := &nickname.Manifest{
		ID:       "test-table",
		Version:  "2026-08",
		Locale:   "en",
		Source:   "test",
		License:  "CC0",
		DataFile: "data.csv",
		Format:   nickname.FormatSpec{Delimiter: ","},
	}

	if err := writeManifest(dir, m); err != nil {
		t.Fatalf("writeManifest: %v", err)
	}

	// Verify the file was written and can be parsed back.
	loaded, err := nickname.LoadManifest(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if loaded.ID != "test-table" {
		t.Errorf("ID = %q, want test-table", loaded.ID)
	}
	if loaded.DataFile != "data.csv" {
		t.Errorf("DataFile = %q, want data.csv", loaded.DataFile)
	}
	if loaded.Locale != "en" {
		t.Errorf("Locale = %q, want en", loaded.Locale)
	}
}

func TestMergePairs(t *testing.T) {
	pairs := [][2]string{
		{"Robert", "Bob"},
		{"Bob", "Bobby"},
		{"William", "Bill"},
		{"Orphan", "Orphan"}, // self-pair collapses to a singleton
	}

	clusters := mergePairs(pairs)
	if len(clusters) != 2 {
		t.Fatalf("clusters = %v, want 2", clusters)
	}
	// Transitively connected names share one cluster; output is sorted.
	if len(clusters[0]) != 2 || clusters[0][0] != "Bill" || clusters[0][1] != "William" {
		t.Errorf("cluster 0 = %v, want [Bill William]", clusters[0])
	}
	want := []string{"Bob", "Bobby", "Robert"}
	got := clusters[1]
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("cluster 1 = %v, want %v", got, want)
	}
}
