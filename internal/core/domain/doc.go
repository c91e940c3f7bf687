// Package domain defines the core entities of the annotation merge engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Span: A half-open character interval in document text
//   - Annotation: A typed entity mention tied to exactly one Span
//   - Document, Passage, Sentence: The hierarchical text structure
//   - RecognizerOutput: Raw annotations from one external recognizer
//   - ReferenceData: The immutable vocabulary snapshot shared by workers
//
// # Offsets
//
// All offsets and lengths count characters (Unicode code points), not
// bytes, matching the BioC files produced by the recognizers.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
