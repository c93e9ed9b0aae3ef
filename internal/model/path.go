// Package model defines the data structures shared across mutacore's
// generation and analysis pipelines.
package model

// Path represents a repository-relative or absolute file system path.
type Path string

// FileKind partitions source files the way the selection pipeline and the
// arid filter both need to: production code is fair game for the full
// operator catalog, test code gets special-cased skip patterns.
type FileKind string

const (
	// KindProduction is any source file not under a test directory.
	KindProduction FileKind = "production"
	// KindUnitTest is a C++ unit test compiled into test_bitcoin.
	KindUnitTest FileKind = "unit_test"
	// KindFunctionalTest is a Python functional test under test/functional.
	KindFunctionalTest FileKind = "functional_test"
)
