package adapter

import (
	"bufio"
	"os"
	"regexp"
	"strconv"
	"strings"

	"mutacore.dev/mutacore/internal/model"
)

// CoverageAdapter loads which lines of which files a gcov .info file
// reports as hit, used to intersect the selection pipeline against
// actually-covered lines.
type CoverageAdapter interface {
	// ParseCoverageFile reads an lcov-format .info file and returns the
	// hit line numbers per source file. A file's key is its path from
	// the first "src/" component onward, mirroring how the .info file's
	// absolute paths are made comparable to repo-relative candidates.
	ParseCoverageFile(path model.Path) (map[model.Path][]int, error)
}

// LocalCoverageAdapter reads coverage files from local disk.
type LocalCoverageAdapter struct{}

// NewLocalCoverageAdapter constructs a LocalCoverageAdapter.
func NewLocalCoverageAdapter() *LocalCoverageAdapter {
	return &LocalCoverageAdapter{}
}

var (
	sourceFilePattern = regexp.MustCompile(`^SF:(.+)$`)
	lineHitPattern    = regexp.MustCompile(`^DA:(\d+),(\d+)$`)
)

// ParseCoverageFile parses SF:/DA: records from an lcov .info file,
// keeping only lines with a positive hit count.
func (a *LocalCoverageAdapter) ParseCoverageFile(path model.Path) (map[model.Path][]int, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return nil, model.NewError(model.KindIo, "opening coverage file", err)
	}

	defer func() { _ = f.Close() }()

	data := make(map[model.Path][]int)

	var current model.Path

	seen := make(map[model.Path]map[int]bool)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if m := sourceFilePattern.FindStringSubmatch(line); m != nil {
			current = relativeToSrc(m[1])
			data[current] = nil
			seen[current] = make(map[int]bool)

			continue
		}

		m := lineHitPattern.FindStringSubmatch(line)
		if m == nil || current == "" {
			continue
		}

		lineNo, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, model.NewError(model.KindParse, "invalid line number in coverage record", err)
		}

		hits, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, model.NewError(model.KindParse, "invalid hit count in coverage record", err)
		}

		if hits <= 0 {
			continue
		}

		if seen[current][lineNo] {
			continue
		}

		seen[current][lineNo] = true
		data[current] = append(data[current], lineNo)
	}

	if err := scanner.Err(); err != nil {
		return nil, model.NewError(model.KindIo, "reading coverage file", err)
	}

	return data, nil
}

// relativeToSrc trims a coverage record's absolute path down to the
// portion starting at its first "src/" component, falling back to the
// full path when "src/" is absent.
func relativeToSrc(fullPath string) model.Path {
	if idx := strings.Index(fullPath, "src/"); idx >= 0 {
		return model.Path(fullPath[idx:])
	}

	return model.Path(fullPath)
}
