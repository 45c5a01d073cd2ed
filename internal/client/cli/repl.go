package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	// Touch records user activity before a command runs.
	Touch(ctx context.Context)
	Status() string
	Help() []string
	Exec(ctx context.Context, name string, args []string) error
}

// runREPL is the read-eval-print loop of the console.
//
// Each line is split into a command and its arguments and handed to a.Exec.
// "help" lists what the current user may run; "exit" and "quit" leave. Any
// non-empty line counts as activity for the inactivity window. Errors are
// printed as user-facing messages and the loop continues. It returns on EOF
// or when ctx is cancelled.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("rent %s> ", a.Status()))

		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}

		cmd, args := parts[0], parts[1:]
		a.Touch(ctx)

		switch cmd {
		case "help":
			printlnFn("Available commands:")
			for _, h := range a.Help() {
				printlnFn("  " + h)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if err := a.Exec(ctx, cmd, args); err != nil {
				printlnFn(describeError(err))
			}
		}

		if err != nil {
			return
		}
	}
}
