// Package timing measures labeled blocks of work and reports their wall-clock time.
//
// A Reporter prints one line per completed block to an io.Writer, in completion order:
//
//	    books                0.301274
//	  inside thread          0.301802
//	  movies                 0.312940
//	in threads               0.329113
//
// Blocks started with the context handed to an enclosing Measure are nested one level deeper
// and indented by two spaces per level. Elapsed time is printed in seconds with six decimals.
// Durations measured elsewhere (for example by a child process) are added with Record.
package timing
