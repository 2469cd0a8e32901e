// Package errors provides structured, actionable error reports for bindstore.
//
// Every contract violation raised by the store and the binding layer maps to
// a registered code:
//   - store: key validation and initialization errors (S001-S099)
//   - binding: declaration and prop naming errors (B001-B099)
//   - config: CLI configuration and seed file errors (C001-C099)
//
// The public error types in pkg/store carry the data; this package only turns
// them into a Report that the CLI can print.
//
// # Usage
//
//	rep := errors.New("S002").
//	    WithDetail(`key "count" already holds 1`).
//	    WithSuggestion("Create the key without an initial value")
//
//	fmt.Println(rep.Format())
//	// Output:
//	// ERROR S002: Refusing to override existing value with initialization data
//	//
//	//   key "count" already holds 1
//	//
//	//   Hint: Create the key without an initial value
package errors
