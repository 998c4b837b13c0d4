package eval

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/sharmin-lalani/Micro-shell/pkg/parse"
)

// A builtin acts on the current frame's streams, which arrive fully wired
// and redirected. Handlers report problems as text on those streams and fall
// through; only logout ends the process. The returned status is 0 except
// where noted.
type builtin func(fm *frame, args []string) int

var builtins = map[string]builtin{
	"cd":       cd,
	"echo":     echo,
	"logout":   logout,
	"pwd":      pwd,
	"setenv":   setenv,
	"unsetenv": unsetenv,
}

// nice re-enters runCommand, which consults builtins, and where consults
// builtins directly; registering them in the map literal would be an
// initialization cycle.
func init() {
	builtins["nice"] = nice
	builtins["where"] = where
}

// cd changes the shell's working directory, defaulting to $HOME without an
// argument. The three failure causes are reported distinctly.
func cd(fm *frame, args []string) int {
	if len(args) == 0 {
		os.Chdir(os.Getenv("HOME"))
		return 0
	}
	err := os.Chdir(args[0])
	switch {
	case err == nil:
	case errors.Is(err, os.ErrPermission):
		fmt.Fprintf(fm.files[1], "%s: Permission denied.\n", args[0])
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintf(fm.files[1], "%s: No such file or directory.\n", args[0])
	case errors.Is(err, unix.ENOTDIR):
		fmt.Fprintf(fm.files[1], "%s: Not a directory.\n", args[0])
	default:
		fmt.Fprintf(fm.files[1], "%s: %v\n", args[0], err)
	}
	return 0
}

// echo writes its arguments space-separated with a trailing newline. With no
// arguments it writes nothing at all, not even the newline.
func echo(fm *frame, args []string) int {
	if len(args) == 0 {
		return 0
	}
	fmt.Fprintln(fm.files[1], strings.Join(args, " "))
	return 0
}

func logout(fm *frame, args []string) int {
	os.Exit(0)
	return 0
}

const (
	nicePriorityDefault = 4
	nicePriorityMin     = -19
	nicePriorityMax     = 20
)

// nice adjusts the shell's scheduling priority and, given a command, runs it
// at that priority by re-entering the launch path with a synthetic
// single-command pipeline. Children inherit the priority across spawn.
func nice(fm *frame, args []string) int {
	priority, cmdArgs := nicePriority(args)

	// Only the superuser may lower priorities; failure is not reported,
	// like the original.
	unix.Setpriority(unix.PRIO_PROCESS, 0, priority)

	if len(cmdArgs) > 0 {
		p := fm.runCommand(&parse.Command{Args: cmdArgs}, fm.files[0], fm.files[1])
		return p.wait()
	}
	return 0
}

// nicePriority splits nice's arguments into the clamped priority and the
// command to run, if any. A first argument that is not a number is already
// part of the command.
func nicePriority(args []string) (int, []string) {
	if len(args) == 0 {
		return nicePriorityDefault, nil
	}
	if !isNumber(args[0]) {
		return nicePriorityDefault, args
	}
	priority, _ := strconv.Atoi(args[0])
	if priority < nicePriorityMin {
		priority = nicePriorityMin
	} else if priority > nicePriorityMax {
		priority = nicePriorityMax
	}
	return priority, args[1:]
}

// isNumber accepts an optional leading minus followed by digits.
func isNumber(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func pwd(fm *frame, args []string) int {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(fm.files[1], "pwd: %v\n", err)
		return 0
	}
	fmt.Fprintln(fm.files[1], wd)
	return 0
}

// setenv without arguments lists the environment; with a name it sets the
// variable to the second argument or the null string.
func setenv(fm *frame, args []string) int {
	if len(args) == 0 {
		for _, kv := range os.Environ() {
			fmt.Fprintln(fm.files[1], kv)
		}
		return 0
	}
	value := ""
	if len(args) > 1 {
		value = args[1]
	}
	os.Setenv(args[0], value)
	return 0
}

func unsetenv(fm *frame, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(fm.files[1], "unsetenv: too few arguments")
		return 0
	}
	os.Unsetenv(args[0])
	return 0
}

// where reports every known instance of a name: builtin status first, then
// each executable match on the search path.
func where(fm *frame, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(fm.files[1], "where: too few arguments")
		return 0
	}
	if _, ok := builtins[args[0]]; ok {
		fmt.Fprintf(fm.files[1], "%s is a shell built-in\n", args[0])
	}
	for _, match := range lookPathAll(args[0], os.Getenv("PATH")) {
		fmt.Fprintln(fm.files[1], match)
	}
	return 0
}
