// ush is a small command interpreter with a syntax similar to the UNIX C
// shell. It parses one line at a time into pipelines and hands them to
// pkg/eval for execution.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"src.elv.sh/pkg/diag"
	"src.elv.sh/pkg/sys"

	"github.com/sharmin-lalani/Micro-shell/pkg/eval"
	"github.com/sharmin-lalani/Micro-shell/pkg/parse"
)

var (
	printAST bool
	oneLine  string
	noRC     bool
)

var rootCmd = &cobra.Command{
	Use:   "ush [script]",
	Short: "A micro C-shell",
	Long: `ush is a command interpreter with a syntax similar to csh(1),
for instructional purposes: pipelines, I/O redirection, a handful of
built-in commands, and not much else.`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,

	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().BoolVar(&printAST, "print-ast", false, "print the parsed form of each line")
	rootCmd.Flags().StringVarP(&oneLine, "command", "c", "", "run a single line and exit")
	rootCmd.Flags().BoolVar(&noRC, "norc", false, "skip ~/.ushrc")
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}

func run(cmd *cobra.Command, args []string) error {
	eval.IgnoreJobSignals()
	ev := eval.NewEvaler(eval.StdFiles)

	if !noRC {
		ev.SourceRC(afero.NewOsFs())
	}

	if oneLine != "" {
		os.Exit(doEval(ev, oneLine))
	}
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		os.Exit(ev.Source(f))
	}
	if sys.IsATTY(os.Stdin.Fd()) {
		repl(ev)
	} else {
		evalAll(ev, os.Stdin)
	}
	return nil
}

func repl(ev *eval.Evaler) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "ush"
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt: color.New(color.FgCyan).Sprint(hostname) + "% ",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		switch {
		case err == io.EOF:
			return
		case err == readline.ErrInterrupt:
			continue // drop the current line
		case err != nil:
			fmt.Fprintln(os.Stderr, err)
			return
		}
		doEval(ev, line)
	}
}

func evalAll(ev *eval.Evaler, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		doEval(ev, scanner.Text())
	}
}

func doEval(ev *eval.Evaler, input string) int {
	p, err := parse.Parse(input)
	if err != nil {
		fmt.Println("err:", err)
		for _, entry := range err.(parse.Error).Errors {
			sr := diag.NewContext("input", input, diag.PointRanging(entry.Position))
			fmt.Printf("  %s\n", entry.Message)
			fmt.Printf("    %s\n", sr.ShowCompact(""))
		}
		return eval.StatusSyntaxError
	}
	if printAST {
		fmt.Println("ast:", parse.Pprint(p))
	}
	return ev.RunLine(p)
}
