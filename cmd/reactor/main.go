package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"
)

func main() {
	var (
		didFile     = flag.String("did", "", "Path to the .did interface (overrides reactor.toml)")
		witFile     = flag.String("wit", "", "Path to a WIT package in JSON form (overrides reactor.toml)")
		world       = flag.String("world", "", "World of the -wit package to import (default: the package's own)")
		configDir   = flag.String("config", "", "Directory holding reactor.toml (default: search upwards)")
		method      = flag.String("method", "", "Method to operate on")
		list        = flag.Bool("list", false, "List service methods and exit")
		showFields  = flag.Bool("fields", false, "Print the argument fields of -method")
		gen         = flag.Bool("generate", false, "Generate random arguments for -method")
		count       = flag.Int("n", 1, "Number of values to generate")
		outDir      = flag.String("out", "", "Directory to write generated fixtures to")
		format      = flag.Bool("format", false, "Format mock results of -method")
		argsJSON    = flag.String("args", "", "JSON array of arguments to validate and encode for -method")
		fixturePath = flag.String("fixture", "", "Replay a recorded fixture for -method")
		seed        = flag.Int64("seed", 0, "Random seed (overrides reactor.toml)")
		depth       = flag.Int("depth", 0, "Recursion depth of formatted results (overrides reactor.toml)")
		logLevel    = flag.String("log", "", "Log level: debug, info, warn, error (overrides reactor.toml)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	a, err := newApp(options{
		didFile:   *didFile,
		witFile:   *witFile,
		world:     *world,
		configDir: *configDir,
		seed:      *seed,
		depth:     *depth,
		logLevel:  *logLevel,
		out:       os.Stdout,
		styled:    term.IsTerminal(int(os.Stdout.Fd())),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: reactor -did <file.did> -list")
		fmt.Fprintln(os.Stderr, "       reactor -did <file.did> -method <name> [-fields] [-generate [-n N] [-out dir]] [-format]")
		fmt.Fprintln(os.Stderr, "       reactor -did <file.did> -method <name> -args '[...]'")
		fmt.Fprintln(os.Stderr, "       reactor -did <file.did> -method <name> -fixture <file.cbor>")
		fmt.Fprintln(os.Stderr, "       reactor -wit <file.wit.json> [-world name] -list")
		fmt.Fprintln(os.Stderr, "       reactor -did <file.did> -i  (interactive mode)")
		os.Exit(1)
	}
	defer a.close()

	if *interactive {
		if err := runInteractive(a); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := a.run(command{
		method:   *method,
		list:     *list,
		fields:   *showFields,
		generate: *gen,
		count:    *count,
		outDir:   *outDir,
		format:   *format,
		args:     *argsJSON,
		fixture:  *fixturePath,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
