// Package nickname loads the static tables clustering interchangeable
// given names ("Bob"/"Robert"/"Bobby" share one cluster id). Tables are
// read-only after load; a locale change swaps the whole table.
package nickname

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/rolodex/pkg/normalize"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Table is one loaded cluster table: normalized nickname -> cluster ids.
// A name may belong to several clusters (e.g. "al" for Albert and Alfred).
type Table struct {
	Manifest *Manifest
	clusters map[string][]int
	count    int
}

// LoadTable reads a manifest.yaml and its cluster CSV from dir.
// Each CSV record is one cluster; the cluster id is the record ordinal.
func LoadTable(dir string) (*Table, error) {
	manifest, err := LoadManifest(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		return nil, err
	}

	t := &Table{
		Manifest: manifest,
		clusters: make(map[string][]int),
	}
	if err := t.loadCSV(filepath.Join(dir, manifest.DataFile)); err != nil {
		return nil, fmt.Errorf("table %s: %w", manifest.ID, err)
	}
	return t, nil
}

func (t *Table) loadCSV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	// Transcode non-UTF-8 encodings declared in the manifest.
	var reader io.Reader = f
	if enc := t.Manifest.Format.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(f, e.NewDecoder())
	}

	r := csv.NewReader(reader)
	if delim := t.Manifest.Format.Delimiter; delim != "" {
		r.Comma = []rune(delim)[0]
	}
	r.FieldsPerRecord = -1 // clusters have varying sizes
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var collisions int
	cluster := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}

		added := false
		for _, cell := range record {
			name := normalize.Name(strings.TrimSpace(cell))
			if name == "" {
				continue
			}
			ids := t.clusters[name]
			if containsInt(ids, cluster) {
				continue
			}
			if len(ids) > 0 {
				collisions++
			}
			t.clusters[name] = append(ids, cluster)
			added = true
		}
		if added {
			cluster++
		}
	}
	t.count = cluster

	if collisions > 0 {
		slog.Debug("names shared across nickname clusters", "table", t.Manifest.ID, "shared", collisions)
	}
	return nil
}

// Clusters returns the cluster ids for a name after normalization, or nil
// when the name belongs to no cluster.
func (t *Table) Clusters(name string) []int {
	if t == nil {
		return nil
	}
	return t.clusters[normalize.Name(name)]
}

// ClusterCount returns the number of clusters in this table.
func (t *Table) ClusterCount() int {
	if t == nil {
		return 0
	}
	return t.count
}

// NameCount returns the number of distinct normalized names.
func (t *Table) NameCount() int {
	if t == nil {
		return 0
	}
	return len(t.clusters)
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
