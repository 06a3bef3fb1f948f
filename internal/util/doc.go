// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the scribe-tui application.
//
// This package contains common helper functions used throughout the application
// for string manipulation, filename sanitizing, type conversion, and file
// operations.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth: display-width truncation (CJK aware)
//
// Filenames:
//   - SanitizeFilename: diagram title to downloadable .png name
//   - SanitizeHeaderFilename: Content-Disposition safe names
//
// Type Conversion:
//   - IntToString, Int64ToString: Numeric to string conversion
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	// Truncate long strings safely for display
//	display := util.TruncateRunes(longText, 50)
//
//	// Derive a download name from a diagram title
//	name := util.SanitizeFilename("AWS Architecture Diagram")
//
//	// Write downloaded bytes atomically to prevent partial files
//	err := util.AtomicWriteFile(path, data, 0644)
package util
