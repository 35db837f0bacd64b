// Package display provides terminal output for plans and warnings.
//
// # Plan Listings
//
// A dry run prints the task list and nothing else:
//
//	display.ShowPlan(os.Stdout, outputRoot, tasks, true, useColor)
//
// which renders
//
//	Planned research tasks (2):
//	  [1/2] lib -> research/lib.md
//	  [2/2] src -> research/src.md
//	✓ 2 directories planned (dry run: no analyzer invoked, nothing written)
//
// # Warnings
//
// Problems that do not stop a run, such as --dirs entries that do not exist,
// are shown as warnings before the fanout starts:
//
//	display.WarnMissingDirectories(scan.Missing).Display(os.Stderr)
//
// All functions accept io.Writer for testability. ANSI colors are only emitted
// when the caller asks for them.
package display
