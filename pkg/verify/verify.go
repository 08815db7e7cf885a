// Package verify checks that a sync reproduced a source tree: CRC32
// checksums per file, whole-directory inventories, and tree-to-tree diffs.
package verify

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// FileChecksum represents a file's checksum and metadata
type FileChecksum struct {
	Path      string
	CRC32     uint32
	SizeBytes int64
}

// ComputeFile computes the CRC32 checksum for a single file
func ComputeFile(path string) (*FileChecksum, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	hash := crc32.NewIEEE()
	if _, err := io.Copy(hash, file); err != nil {
		return nil, fmt.Errorf("failed to compute checksum: %w", err)
	}

	return &FileChecksum{
		Path:      path,
		CRC32:     hash.Sum32(),
		SizeBytes: info.Size(),
	}, nil
}

// ComputeDirectory recursively computes checksums for all files in a
// directory, keyed by relative path and sorted. It skips .git directories.
func ComputeDirectory(dir string) ([]*FileChecksum, error) {
	var checksums []*FileChecksum

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		cs, err := ComputeFile(path)
		if err != nil {
			return fmt.Errorf("failed to compute checksum for %s: %w", path, err)
		}

		// Store relative path so trees at different roots compare
		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			relPath = path
		}
		cs.Path = relPath

		checksums = append(checksums, cs)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Slice(checksums, func(i, j int) bool {
		return checksums[i].Path < checksums[j].Path
	})

	return checksums, nil
}

// TotalBytes sums the sizes of an inventory
func TotalBytes(checksums []*FileChecksum) int64 {
	var total int64
	for _, cs := range checksums {
		total += cs.SizeBytes
	}
	return total
}

// Difference represents one file that differs between two trees
type Difference struct {
	Path       string
	OldCRC32   uint32
	OldSize    int64
	NewCRC32   uint32
	NewSize    int64
	ChangeType string // "added", "modified", "deleted"
}

// DiffDirs compares a destination tree against a source tree. A file only
// in the destination is "added", only in the source is "deleted", in both
// with differing checksum or size is "modified". An empty result means the
// destination reproduces the source exactly.
func DiffDirs(sourceDir, destDir string) ([]*Difference, error) {
	sourceChecksums, err := ComputeDirectory(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to checksum source: %w", err)
	}

	destChecksums, err := ComputeDirectory(destDir)
	if err != nil {
		return nil, fmt.Errorf("failed to checksum destination: %w", err)
	}

	sourceMap := make(map[string]*FileChecksum)
	for _, cs := range sourceChecksums {
		sourceMap[cs.Path] = cs
	}

	destMap := make(map[string]*FileChecksum)
	for _, cs := range destChecksums {
		destMap[cs.Path] = cs
	}

	var diffs []*Difference

	// Find modified and deleted files
	for path, sourceCS := range sourceMap {
		destCS, exists := destMap[path]
		if !exists {
			diffs = append(diffs, &Difference{
				Path:       path,
				OldCRC32:   sourceCS.CRC32,
				OldSize:    sourceCS.SizeBytes,
				ChangeType: "deleted",
			})
		} else if sourceCS.CRC32 != destCS.CRC32 || sourceCS.SizeBytes != destCS.SizeBytes {
			diffs = append(diffs, &Difference{
				Path:       path,
				OldCRC32:   sourceCS.CRC32,
				OldSize:    sourceCS.SizeBytes,
				NewCRC32:   destCS.CRC32,
				NewSize:    destCS.SizeBytes,
				ChangeType: "modified",
			})
		}
	}

	// Find added files
	for path, destCS := range destMap {
		if _, exists := sourceMap[path]; !exists {
			diffs = append(diffs, &Difference{
				Path:       path,
				NewCRC32:   destCS.CRC32,
				NewSize:    destCS.SizeBytes,
				ChangeType: "added",
			})
		}
	}

	sort.Slice(diffs, func(i, j int) bool {
		return diffs[i].Path < diffs[j].Path
	})

	return diffs, nil
}

// FormatSize formats bytes in human-readable format
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
