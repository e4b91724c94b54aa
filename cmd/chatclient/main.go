// Command chatclient is the terminal chat client. It takes no
// command-line arguments; connect with /server <host> <port> once it is
// running.
package main

import (
	"fmt"
	"os"

	"github.com/kbaird/chatterm/internal/tui"
)

func main() {
	app, err := tui.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
