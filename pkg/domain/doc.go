// Package domain defines the core business types for YARHS.
//
// This package contains pure domain logic with ZERO external dependencies outside the
// Go standard library. All types in this package are:
//
// - Independent of infrastructure (no sockets, HTTP, file I/O)
// - Technology-agnostic (no framework coupling)
// - Testable in isolation without mocks
//
// Other packages (matcher, static, xds, listener) implement and consume the types
// defined here. The dependency direction is always:
//
//	Infrastructure → Domain (CORRECT)
//	Domain → Infrastructure (FORBIDDEN)
package domain
