// Package figure composes rendered panels into the final two-panel PNG.
//
// The canvas carries a two-line heading, the figure title with the run
// timestamp under it, and places each [Panel] scaled into its half with the
// panel title above it:
//
//	png, err := figure.Compose(
//	    figure.Panel{Title: "Network Tree", Image: tree},
//	    figure.Panel{Title: "Adjacency Graph", Image: adj},
//	    figure.DefaultOptions(time.Now()),
//	)
//
// Text is set in Go Regular, embedded through golang.org/x/image/font/gofont,
// so output does not depend on fonts installed on the host.
package figure
