package importer

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func init() {
	Register(&commonNicknamesAdapter{})
}

// commonNicknamesAdapter imports the onyxrev common nickname pairs. The
// source is pair-shaped (id,name,nickname per line), so pairs sharing a
// name are union-merged into clusters before writing.
type commonNicknamesAdapter struct{}

func (a *commonNicknamesAdapter) ID() string      { return "common-nicknames-en" }
func (a *commonNicknamesAdapter) TableID() string { return "nicknames-en" }
func (a *commonNicknamesAdapter) Locale() string  { return "en" }
func (a *commonNicknamesAdapter) Description() string {
	return "English nickname pairs (onyxrev/common_nickname_csv)"
}
func (a *commonNicknamesAdapter) DefaultURL() string {
	return "https://raw.githubusercontent.com/onyxrev/common_nickname_csv/master/nicknames.csv"
}
func (a *commonNicknamesAdapter) License() string { return "Public Domain" }

func (a *commonNicknamesAdapter) Import(ctx context.Context, sourceURL, outputDir string) error {
	dlDir := filepath.Join(outputDir, "_download")
	if err := ensureDir(dlDir); err != nil {
		return err
	}
	defer os.RemoveAll(dlDir)

	csvPath := filepath.Join(dlDir, "nicknames.csv")
	fmt.Printf("  downloading %s...\n", sourceURL)
	if err := downloadFile(ctx, sourceURL, csvPath); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	src, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	var pairs [][2]string
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		// Format: id,name,nickname
		parts := strings.SplitN(line, ",", 3)
		if len(parts) != 3 {
			continue
		}
		name := strings.TrimSpace(parts[1])
		nick := strings.TrimSpace(parts[2])
		if name == "" || nick == "" || strings.EqualFold(name, "name") {
			continue // header or junk row
		}
		pairs = append(pairs, [2]string{name, nick})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	clusters := mergePairs(pairs)
	fmt.Printf("  %d pairs merged into %d clusters\n", len(pairs), len(clusters))
	return writeTable(a, sourceURL, outputDir, clusters)
}

// mergePairs union-merges name/nickname pairs into clusters: any two names
// connected through shared members land in the same cluster. Cluster
// members and the clusters themselves come out sorted for deterministic
// output.
func mergePairs(pairs [][2]string) [][]string {
	parent := make(map[string]string)
	var find func(string) string
	find = func(x string) string {
		p, ok := parent[x]
		if !ok {
			parent[x] = x
			return x
		}
		if p != x {
			p = find(p)
			parent[x] = p
		}
		return p
	}

	display := make(map[string]string) // lowercase -> first-seen casing
	for _, pr := range pairs {
		a, b := strings.ToLower(pr[0]), strings.ToLower(pr[1])
		if _, ok := display[a]; !ok {
			display[a] = pr[0]
		}
		if _, ok := display[b]; !ok {
			display[b] = pr[1]
		}
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	groups := make(map[string][]string)
	for key := range display {
		root := find(key)
		groups[root] = append(groups[root], display[key])
	}

	var clusters [][]string
	for _, names := range groups {
		if len(names) < 2 {
			continue
		}
		sort.Strings(names)
		clusters = append(clusters, names)
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i][0] < clusters[j][0] })
	return clusters
}
