// Package router implements the client route table for the Factura web app.
//
// The router provides:
//   - An ordered route table with first-match-wins resolution
//   - Named dynamic segments (:uuid) with optional type constraints
//   - Redirect rules applied before matching (/ → Home)
//   - URL building from route names for programmatic navigation
//   - A Navigator that runs guards and produces the document title
//
// # Patterns
//
// Route paths are written with colon-prefixed dynamic segments:
//
//	/home            → static
//	/show/:uuid      → :uuid captures one non-empty segment
//	/cfdi/:id:uuid   → :id must parse as a UUID
//	/files/*path     → *path captures the rest of the path
//
// # Usage
//
//	table, err := router.NewBuilder().
//	    RedirectToName("/", "Home").
//	    Route("/home", "Home", "Home", router.WithTitle("Home - Factura.com")).
//	    Route("/show/:uuid", "Show", "Show", router.WithTitle("Show - Factura.com")).
//	    Build()
//
//	m, err := table.Resolve("/show/9f3c")
//	if errors.Is(err, router.ErrNoMatchingRoute) {
//	    // let the host decide
//	}
//	// m.Route.Name() == "Show", m.Params["uuid"] == "9f3c"
//
//	nav := router.NewNavigator(table, router.WithTitleSink(slot))
//	result, _ := nav.Navigate(ctx, "/show/9f3c")
//	// result.Title == "Show - Factura.com"
package router
