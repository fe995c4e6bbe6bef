// Package internal holds the engine that runs cleanup rules over files.
//
// The engine parses each file, optionally type-checks it, and runs every
// enabled rule with one shared processed set, so a node is claimed by the
// first rule that matches it. Matches on lines carrying a //nolint comment
// for the rule are dropped.
//
// Usage:
//
//	engine := internal.NewEngine(plugin.Default(), nil, logger)
//	findings, err := engine.Run("path/to/file.go")
//	if err != nil {
//	    // handle error
//	}
//
//	fixed, _, err := engine.Fix("path/to/file.go", src)
//
// This package is intended for internal use; other modules go through the
// cleanup package.
package internal
