package eval

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/sharmin-lalani/Micro-shell/pkg/parse"
)

// rcName is the startup script sourced from the home directory.
const rcName = ".ushrc"

// Source runs commands from r line by line. It stops at end of input or at
// the end command and returns the status of the last line that ran.
//
// Lines are executed just as if they were typed at the terminal, except that
// end stops sourcing instead of terminating the shell.
func (ev *Evaler) Source(r io.Reader) int {
	wasSourcing := ev.sourcing
	ev.sourcing = true
	defer func() { ev.sourcing = wasSourcing }()

	var status int
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		st, ok := ev.evalSourced(scanner.Text())
		status = st
		if !ok {
			break
		}
	}
	return status
}

func (ev *Evaler) evalSourced(line string) (int, bool) {
	p, err := parse.Parse(line)
	if err != nil {
		fmt.Fprintln(ev.files[2], "syntax error:", err)
		return StatusSyntaxError, true
	}
	return ev.runLine(p)
}

// SourceRC sources $HOME/.ushrc if it is readable. A missing or unreadable
// file is not an error; the shell just starts without it.
func (ev *Evaler) SourceRC(fsys afero.Fs) {
	home := os.Getenv("HOME")
	if home == "" {
		return
	}
	f, err := fsys.Open(filepath.Join(home, rcName))
	if err != nil {
		return
	}
	defer f.Close()
	ev.Source(f)
}
