// Package scanner discovers the directories a research run will cover.
//
// # Discovery
//
// Scan reads the project root's immediate children and, with Depth 2, one further
// level. Every directory name is checked against a pathfilter.Filter; excluded
// directories are recorded in Result.Excluded and never descended into. Symlinks
// are not followed. Candidates come back sorted by relative path so repeated runs
// over the same tree plan the same tasks in the same order.
//
//	result, err := scanner.Scan(root, scanner.Options{
//	    Depth:  1,
//	    Filter: filter,
//	})
//
// # Overrides
//
// When Options.Overrides is set (the --dirs flag), discovery and filtering are
// skipped. Entries keep their listed order. Each one must exist, be a directory
// and sit inside the root; anything else becomes a NotFound error in
// Result.Missing instead of failing the scan.
//
//	result, err := scanner.Scan(root, scanner.Options{
//	    Overrides: scanner.ParseDirList("api,missing_dir"),
//	})
package scanner
