// Package diag decodes the build tool's structured diagnostics and classifies
// them into rewrite categories.
//
// # Purpose
//
//   - Decode the newline-delimited records that `cargo check
//     --message-format json` prints, keeping only compiler messages.
//   - Provide a deterministic, comparable Span model so downstream stages can
//     deduplicate and order edit anchors.
//   - Hold the code tables that decide which diagnostics are actionable.
//
// # Scope
//
// Package diag performs no file IO and knows nothing about how rewrites are
// applied. Turning classified spans into edits lives in internal/fix; the
// iteration over repeated build tool invocations lives in internal/driver.
//
// # Data model
//
//   - Record – one decoded output line; only "compiler-message" records carry
//     a Message, everything else is dropped right after decoding.
//   - Message – optional Code, informative Level and Text, ordered Spans.
//   - Span – byte offsets into the named file (bytes, not characters), the
//     file name relative to the project root, and the primary flag.
//
// Spans compare by (ByteStart, ByteEnd, FileName, IsPrimary); see CompareSpans.
//
// # Classification
//
// CodeTable maps a Code onto a Category. The two allow-lists must be
// disjoint (Validate). CategoryContextSelector anchors on primary spans,
// CategoryWithContext on secondary ones.
//
// # Errors
//
// A line that fails to decode yields *DecodeError and must abort the run: a
// decode failure means the output format changed, and silently skipping lines
// would hide relevant diagnostics.
package diag
