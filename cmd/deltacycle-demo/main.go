// Command deltacycle-demo exercises the deltacycle simulator core from the
// command line. It is a thin CLI shell around the library; deltacycle
// itself has no command-line surface.
package main

import "github.com/deltacycle/deltacycle/cmd/deltacycle-demo/cmd"

func main() {
	cmd.Execute()
}
