package orchestrator

import (
	"path/filepath"
	"strconv"
	"strings"

	"mutacore.dev/mutacore/internal/model"
)

// DefaultCommand derives the build+test command to run against a working
// copy when the caller doesn't supply one with --command, branching on
// the target file's location the same way a Bitcoin Core contributor
// would decide what to run locally: a functional test script runs
// directly, a unit test source builds then runs just that suite by
// name, and anything else falls back to a full build, ctest pass, and
// functional test sweep.
func DefaultCommand(target model.Path, jobs int) string {
	build := "cmake --build build"
	if jobs > 0 {
		build += " -j" + strconv.Itoa(jobs)
	}

	path := string(target)

	switch {
	case strings.Contains(path, "functional"):
		return "./build/" + path
	case strings.Contains(path, "test"):
		name := testSuiteName(path)
		return build + " && ./build/bin/test_bitcoin --run_test=" + name
	default:
		return build + " && ctest --output-on-failure --stop-on-failure -C Release && " +
			"CI_FAILFAST_TEST_LEAVE_DANGLING=1 ./build/test/functional/test_runner.py -F"
	}
}

// testSuiteName extracts the boost-test suite name from a unit test
// source file's name: src/wallet/test/coinselection_tests.cpp ->
// coinselection_tests.
func testSuiteName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	return base
}

