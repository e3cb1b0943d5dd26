// Package solvtrace records per-iteration scalar values produced by an
// iterative numerical solver (residuals, step counts, timings) into
// named, typed, append-only columns, prints a formatted running table of
// selected columns, and persists the full record plus free-form metadata
// to disk as a single compressed snapshot.
//
// # Architecture
//
// Two components compose in a strict ownership hierarchy:
//
// history.Variable is the leaf: a named, typed, append-only sequence of
// values with derived display formatting. Every stored element is either
// nil (no value supplied for that iteration) or a value coerced to the
// variable's declared kind.
//
// history.History is the root: it owns the variables, an iteration
// counter, a timing reference and the metadata map, and orchestrates
// whole-row writes, selective printing and serialization.
//
// # Quick start
//
//	cfg := config.New("newton-solve")
//	hist, err := history.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	hist.AddVariable("Residual", history.KindFloat, &history.VariableOpts{Print: true})
//	hist.AddMetadata("solver", "newton")
//
//	hist.PrintHeader()
//	for !converged {
//	    // ... one solver iteration ...
//	    hist.Write(history.Row{"Residual": res})
//	    hist.PrintData()
//	}
//
//	hist.Save("run42")        // writes run42.hst
//	snap, _ := history.Load("run42")
//
// # Concurrency
//
// The recorder is single-threaded by design. Parallel solvers must drive a
// shared instance from a single rank; no internal locking is provided.
package solvtrace
