package importer

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/rolodex/pkg/nickname"
)

func init() {
	Register(&githubNicknamesAdapter{})
}

// githubNicknamesAdapter imports the carltonnorthern nickname lists: one
// line per cluster, canonical name first, interchangeable nicknames after.
// The source format is already cluster-shaped, so the transform is mostly
// validation and cleanup.
type githubNicknamesAdapter struct{}

func (a *githubNicknamesAdapter) ID() string      { return "github-nicknames-en" }
func (a *githubNicknamesAdapter) TableID() string { return "nicknames-en" }
func (a *githubNicknamesAdapter) Locale() string  { return "en" }
func (a *githubNicknamesAdapter) Description() string {
	return "English nickname clusters (carltonnorthern/nicknames)"
}
func (a *githubNicknamesAdapter) DefaultURL() string {
	return "https://raw.githubusercontent.com/carltonnorthern/nicknames/master/names.csv"
}
func (a *githubNicknamesAdapter) License() string { return "Apache-2.0" }

func (a *githubNicknamesAdapter) Import(ctx context.Context, sourceURL, outputDir string) error {
	dlDir := filepath.Join(outputDir, "_download")
	if err := ensureDir(dlDir); err != nil {
		return err
	}
	defer os.RemoveAll(dlDir)

	csvPath := filepath.Join(dlDir, "names.csv")
	fmt.Printf("  downloading %s...\n", sourceURL)
	if err := downloadFile(ctx, sourceURL, csvPath); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	src, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	var clusters [][]string
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var names []string
		for _, cell := range strings.Split(line, ",") {
			if cell = strings.TrimSpace(cell); cell != "" {
				names = append(names, cell)
			}
		}
		// A single name clusters with nothing.
		if len(names) >= 2 {
			clusters = append(clusters, names)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	fmt.Printf("  %d nickname clusters\n", len(clusters))
	return writeTable(a, sourceURL, outputDir, clusters)
}

// writeTable writes data.csv + manifest.yaml for an adapter's clusters.
func writeTable(a Adapter, sourceURL, outputDir string, clusters [][]string) error {
	tableDir := filepath.Join(outputDir, a.TableID())
	if err := ensureDir(tableDir); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(tableDir, "data.csv"))
	if err != nil {
		return fmt.Errorf("create data.csv: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, names := range clusters {
		fmt.Fprintln(w, strings.Join(names, ","))
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write data.csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	return writeManifest(tableDir, &nickname.Manifest{
		ID:        a.TableID(),
		Version:   "2026-08",
		Locale:    a.Locale(),
		Source:    a.Description(),
		SourceURL: sourceURL,
		License:   a.License(),
		DataFile:  "data.csv",
		Format:    nickname.FormatSpec{Delimiter: ",", Encoding: "utf-8"},
	})
}
