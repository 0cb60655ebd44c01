// Package main provides the entry point for the a11yscan CLI.
//
// a11yscan audits web pages for common accessibility problems: images
// without alt text, vague link and button labels, skipped heading levels,
// table structure, and links to PDF or Office documents.
//
// Usage:
//
//	a11yscan audit <url>...
//	a11yscan audit --list <file>
//	a11yscan proxy --addr 127.0.0.1:8787
//
// See --help for all available options.
package main

// main is the entry point for a11yscan.
func main() {
	Execute()
}
