// Package display renders the human-facing side of a copy run: a step line
// per identifier as its copies finish, and warnings for duplicates and
// copy errors.
//
//	progress := display.NewProgressIndicator(os.Stdout, len(matches.WithMatches()), true)
//	progress.Start(destRoot)
//	// for each identifier finished
//	progress.Step(key, len(matches.Paths(key)))
//	progress.Complete(report)
//
// Every function writes to an io.Writer. Color is opt-in per value so the
// caller decides from the terminal it is writing to.
package display
