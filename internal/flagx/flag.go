// Package flagx picks the console's own settings flags out of a command
// line that also carries cobra subcommands and their flags.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// Pick returns the arguments in args that belong to one of the named flags,
// in their original order. A flag given as "-x value" keeps its value unless
// the next token starts with a dash; "-x=value" is kept whole. Everything
// else (subcommands, positional arguments, foreign flags) is dropped.
func Pick(args []string, names ...string) []string {
	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}

	picked := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		if name, _, ok := strings.Cut(arg, "="); ok {
			if _, want := known[name]; want {
				picked = append(picked, arg)
			}
			continue
		}

		if _, want := known[arg]; !want {
			continue
		}
		picked = append(picked, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			picked = append(picked, args[i])
		}
	}
	return picked
}

// ConfigPath returns the settings file named by -c or -config in args, or ""
// when neither is present. The last occurrence wins.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "settings file")
	fs.StringVar(&path, "c", "", "settings file (short)")
	_ = fs.Parse(Pick(args, "-c", "-config", "--config"))

	return path
}
