// Package maincmd implements the sphinx command-line frontend: flag parsing,
// dispatch between one-shot execution, -P/-d inspection modes, and the REPL.
package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"
)

const binName = "sphinx"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<file>] [-c <cmd>] [-i] [-P] [-d]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<file>] [-c <cmd>] [-i] [-P] [-d]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the sphinx programming language.

With neither <file> nor -c, starts the REPL.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       -c --command <cmd>        Treat <cmd> as in-memory source.
       -i --interactive          After executing, drop into the REPL,
                                 preserving its globals.
       -P --print-ast            Parse only; pretty-print the AST and
                                 exit without executing.
       -d --disassemble          Compile only, printing bytecode; not
                                 implemented.

Logging verbosity is controlled by the SPHINX_LOG_LEVEL environment
variable (one of: error, info, debug), mirroring tools like RUST_LOG.
`, binName)
)

// Config holds the frontend's environment-derived settings. It is populated
// once per process from the environment, separate from the per-invocation
// flags the Cmd struct carries.
type Config struct {
	LogLevel string `env:"SPHINX_LOG_LEVEL" envDefault:"error"`
}

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help        bool   `flag:"h,help"`
	Version     bool   `flag:"v,version"`
	Command     string `flag:"c,command"`
	Interactive bool   `flag:"i,interactive"`
	PrintAST    bool   `flag:"P,print-ast"`
	Disassemble bool   `flag:"d,disassemble"`

	args []string
	cfg  Config
}

func (c *Cmd) SetArgs(args []string)       { c.args = args }
func (c *Cmd) SetFlags(_ map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 0 && c.Command != "" {
		return fmt.Errorf("cannot provide both a file and -c")
	}
	if len(c.args) > 1 {
		return fmt.Errorf("too many file arguments")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	if err := env.Parse(&c.cfg); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid environment: %s\n", err)
		return mainer.InvalidArgs
	}

	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: "SPHINX_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.run(ctx, stdio); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

func (c *Cmd) debugf(stdio mainer.Stdio, format string, args ...interface{}) {
	if c.cfg.LogLevel == "debug" {
		fmt.Fprintf(stdio.Stderr, "debug: "+format+"\n", args...)
	}
}
