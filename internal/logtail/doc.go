// Package logtail reads the end of the CineVibe log file for the in-app log
// view.
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// bounded by the view size rather than the file size. Parse and Filter
// understand the tab-separated layout of zap's console encoder:
//
//	2026-10-16T10:00:00.000Z	WARN	comments	page fetch failed	{"page": 2}
//
// Lines that don't match, such as stack traces, are kept with the entry
// that precedes them.
package logtail
