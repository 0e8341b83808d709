// Package logtail reads the end of shelf's log file for the activity overlay.
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// O(maxLines) however large the file grows. Parse and Format turn the JSON
// records written by package logging into one readable line each:
//
//	lines, err := logtail.Read(cfg.LogPath, 200)
//	if err != nil {
//		return err
//	}
//	view.SetContent(strings.Join(logtail.FormatLines(lines), "\n"))
//
// A missing log file reads as empty. Lines that are not JSON are kept as-is.
package logtail
