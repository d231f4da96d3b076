package security

import (
	"fmt"

	"github.com/klauspost/compress/zip"
)

// BombCheckResult contains the results of a zip bomb pre-scan.
type BombCheckResult struct {
	Reason                string
	TotalUncompressedSize uint64
	FileCount             int
	MaxCompressionRatio   float64
	IsSafe                bool
}

// Limits configures the zip bomb detection thresholds.
type Limits struct {
	MaxExtractedSize    uint64  // bytes
	MaxFileCount        int     // entries, directories included
	MaxCompressionRatio float64 // uncompressed:compressed, per entry
}

// DefaultLimits returns limits sized for course material archives.
func DefaultLimits() Limits {
	return Limits{
		MaxExtractedSize:    1 * 1024 * 1024 * 1024, // 1 GB
		MaxFileCount:        100000,
		MaxCompressionRatio: 100.0,
	}
}

// CheckZipBombFromReader scans the central directory of an open archive.
// No entry content is decompressed. IsSafe is false if any limit is exceeded.
func CheckZipBombFromReader(r *zip.Reader, limits Limits) *BombCheckResult {
	result := &BombCheckResult{IsSafe: true, FileCount: len(r.File)}

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		result.TotalUncompressedSize += f.UncompressedSize64

		if f.CompressedSize64 > 0 {
			ratio := float64(f.UncompressedSize64) / float64(f.CompressedSize64)
			if ratio > result.MaxCompressionRatio {
				result.MaxCompressionRatio = ratio
			}
		}
	}

	switch {
	case result.TotalUncompressedSize > limits.MaxExtractedSize:
		result.IsSafe = false
		result.Reason = fmt.Sprintf(
			"total uncompressed size (%d bytes) exceeds limit (%d bytes)",
			result.TotalUncompressedSize, limits.MaxExtractedSize,
		)
	case result.FileCount > limits.MaxFileCount:
		result.IsSafe = false
		result.Reason = fmt.Sprintf(
			"file count (%d) exceeds limit (%d)",
			result.FileCount, limits.MaxFileCount,
		)
	case result.MaxCompressionRatio > limits.MaxCompressionRatio:
		result.IsSafe = false
		result.Reason = fmt.Sprintf(
			"compression ratio (%.2f:1) exceeds limit (%.2f:1)",
			result.MaxCompressionRatio, limits.MaxCompressionRatio,
		)
	}

	return result
}
