// Package ui provides semantic text formatting for CLI output.
//
// This package defines formatters for different types of content (code,
// paths, statuses) that render appropriately based on terminal
// capabilities. When colors are available, content is colorized. When
// NO_COLOR is set or the terminal doesn't support colors, text-based
// decorations (backticks, quotes) are used instead.
//
// # Semantic Formatters
//
// Use the appropriate formatter for the content type:
//
//	ui.Code.Sprint("cleanroom workflow approve")  // Commands
//	ui.Path.Sprint("workflows/wf-1/dataset.enc")  // Paths and locations
//	ui.Success.Sprint("✓")                         // Success indicators
//	ui.Error.Sprint("✗")                           // Error indicators
//	ui.Highlight.Sprint("ClientB")                // User values
//	ui.Muted.Sprint("pending")                    // De-emphasized text
package ui
