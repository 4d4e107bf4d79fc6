// Package errors provides coded, actionable errors for webrouter.
//
// Library packages return plain wrapped errors and sentinels. The server and
// the CLI translate them into *Error values so that every failure surfaced to
// a user or an HTTP client carries a stable code.
//
// # Error Categories
//
//   - routing: path resolution and route table construction
//   - navigation: guard aborts and parameter problems
//   - config: webrouter.json and route source loading
//   - cli: command-line usage
//
// # Usage
//
//	err := errors.New("E141").
//	    WithDetail("No webrouter.json found in " + dir).
//	    WithSuggestion("Pass --config or create webrouter.json")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E141: Configuration file not found
//	//
//	//   No webrouter.json found in /srv/app
//	//
//	//   Hint: Pass --config or create webrouter.json
//
// Classify maps errors from the router and routepath packages onto codes:
//
//	if _, err := table.Resolve(path); err != nil {
//	    coded := errors.Classify(err) // E200 for ErrNoMatchingRoute
//	    http.Error(w, coded.Message, coded.Status())
//	}
package errors
