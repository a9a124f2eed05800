// Package logtail reads back the tail of marquee's log file for display in
// the TUI diagnostics pane.
//
// # Reading
//
// Read returns the last maxLines lines of a file using a ring buffer, so
// memory use is bounded by maxLines regardless of file size. A missing file
// is not an error; it yields no lines. A non-positive maxLines reads the
// whole file.
//
//	lines, err := logtail.Read(cfg.LogFile, 200)
//
// # Parsing
//
// Parse understands the logfmt lines produced by logrus's text formatter:
//
//	time="2025-10-08T21:01:05.120Z" level=info msg="catalog fetch finished" count=20
//
// The time, level and msg keys are lifted into Entry; remaining pairs are
// kept in file order. Quoted values are unescaped. Anything that is not
// logfmt (a panic trace, a stray print) is returned verbatim as Message, so
// callers can always render something.
package logtail
