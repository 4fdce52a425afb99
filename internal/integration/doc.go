// Package integration exercises the settings engine end to end:
// documents built from real sources, the HTTP host, share links
// crossing sessions, and defaults reloads driven by the file watcher.
//
// The filesystem-backed tests are skipped with -short.
package integration
