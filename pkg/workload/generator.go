// Package workload generates the synthetic file trees the benchmark syncs
// and mutates them between phases. Generation is deterministic: the same
// scenario always produces the same tree, byte for byte, so runs recorded
// months apart measure the same work.
package workload

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dsync-tools/syncbench/pkg/scenario"
)

// marker is the 8-byte sequence written into mutated files. Writing it at
// the midpoint leaves file length unchanged, which matters for tools that
// shortcut on size+mtime comparison.
var marker = []byte("MODIFIED")

// Generate creates the scenario's file tree under root and returns the
// exact file count and byte total written. Regular files are named
// file_<i>.txt and distributed round-robin over the directories; large
// files are named large_<i>.bin and placed directly under root.
//
// Directory i is nested (i mod depth)+1 levels deep when depth > 1, giving
// a tree whose branch depth cycles rather than a flat fanout.
//
// Any write failure aborts generation; the caller discards the partial
// tree along with the rest of the scratch directory.
func Generate(root string, sc scenario.Scenario) (int, int64, error) {
	dirs := make([]string, 0, sc.Dirs)
	for i := 0; i < sc.Dirs; i++ {
		var dir string
		if sc.Depth > 1 {
			parts := make([]string, 0, i%sc.Depth+2)
			for j := 0; j <= i%sc.Depth; j++ {
				parts = append(parts, fmt.Sprintf("d%d", j))
			}
			parts = append(parts, fmt.Sprintf("dir_%d", i))
			dir = filepath.Join(append([]string{root}, parts...)...)
		} else {
			dir = filepath.Join(root, fmt.Sprintf("dir_%d", i))
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, 0, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		dirs = append(dirs, dir)
	}
	if len(dirs) == 0 {
		dirs = []string{root}
	}

	var totalBytes int64
	fileCount := 0

	content := bytes.Repeat([]byte("x"), 1024*sc.SizeKB)
	for i := 0; i < sc.Files; i++ {
		path := filepath.Join(dirs[i%len(dirs)], fmt.Sprintf("file_%d.txt", i))
		if err := os.WriteFile(path, content, 0644); err != nil {
			return 0, 0, fmt.Errorf("failed to write %s: %w", path, err)
		}
		totalBytes += int64(len(content))
		fileCount++
	}

	if sc.LargeFiles > 0 {
		largeContent := bytes.Repeat([]byte("L"), 1024*sc.LargeSizeKB)
		for i := 0; i < sc.LargeFiles; i++ {
			path := filepath.Join(root, fmt.Sprintf("large_%d.bin", i))
			if err := os.WriteFile(path, largeContent, 0644); err != nil {
				return 0, 0, fmt.Errorf("failed to write %s: %w", path, err)
			}
			totalBytes += int64(len(largeContent))
			fileCount++
		}
	}

	return fileCount, totalBytes, nil
}

// Mutate overwrites the marker at the midpoint of a percentage of the files
// under root, returning how many files were modified. At least one file is
// always modified. Selection is deterministic: all .txt files in walk order,
// then all .bin files, and the first max(1, floor(N*percent/100)) of that
// list are touched. File lengths are preserved.
func Mutate(root string, percent float64) (int, error) {
	var txtFiles, binFiles []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".txt":
			txtFiles = append(txtFiles, path)
		case ".bin":
			binFiles = append(binFiles, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to enumerate files: %w", err)
	}

	all := append(txtFiles, binFiles...)
	if len(all) == 0 {
		return 0, fmt.Errorf("no files to modify under %s", root)
	}

	count := int(float64(len(all)) * percent / 100)
	if count < 1 {
		count = 1
	}
	if count > len(all) {
		count = len(all)
	}

	for _, path := range all[:count] {
		if err := writeMarker(path); err != nil {
			return 0, err
		}
	}

	return count, nil
}

func writeMarker(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteAt(marker, info.Size()/2); err != nil {
		return fmt.Errorf("failed to modify %s: %w", path, err)
	}

	return nil
}
