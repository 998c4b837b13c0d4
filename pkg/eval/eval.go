// Package eval executes parsed command lines: it wires pipes between the
// commands of each pipeline, launches builtins and external programs, and
// supervises their completion.
package eval

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/sharmin-lalani/Micro-shell/pkg/parse"
)

// StdFiles is the conventional file table for an Evaler driving the real
// terminal.
var StdFiles = []*os.File{os.Stdin, os.Stdout, os.Stderr}

// Evaler holds the shell-wide execution state. It is not safe for concurrent
// use; the shell is single-threaded and no two pipelines execute at once.
type Evaler struct {
	files    []*os.File // the shell's own stdin, stdout, stderr
	sourcing bool       // reading a startup script rather than the terminal
	jobnum   int        // counts asynchronous pipelines
}

func NewEvaler(files []*os.File) *Evaler {
	if len(files) < 3 {
		panic("files must have at least 3 elements")
	}
	return &Evaler{files: files}
}

// Eval parses and runs one line of input, returning the status of the last
// pipeline that ran.
func (ev *Evaler) Eval(line string) int {
	p, err := parse.Parse(line)
	if err != nil {
		fmt.Fprintln(ev.files[2], "syntax error:", err)
		return StatusSyntaxError
	}
	return ev.RunLine(p)
}

// RunLine executes every pipeline of a parsed line in order. A nil pipeline
// is a no-op. One pipeline's failure never cancels the pipelines after it.
func (ev *Evaler) RunLine(p *parse.Pipeline) int {
	status, _ := ev.runLine(p)
	return status
}

// runLine returns false when evaluation of the current input source should
// stop: the end command was read while sourcing a script.
func (ev *Evaler) runLine(p *parse.Pipeline) (int, bool) {
	fm := &frame{ev: ev, files: ev.files}
	var status int
	for ; p != nil; p = p.Next {
		st, ok := fm.pipeline(p)
		status = st
		if !ok {
			return status, false
		}
	}
	return status, true
}

// frame carries the streams one command or pipeline runs with. The Evaler's
// own files stay untouched while individual commands see redirected copies.
type frame struct {
	ev    *Evaler
	files []*os.File
}

// diag prints a shell diagnostic message. It goes to the shell's original
// stderr, ignoring any active redirection.
func (fm *frame) diag(format string, args ...any) {
	fmt.Fprintf(fm.ev.files[2], format+"\n", args...)
}

// pipeline drives one pipeline: advance the wiring per command, launch the
// command, close whatever the shell still holds, then wait for every stage.
func (fm *frame) pipeline(p *parse.Pipeline) (int, bool) {
	if p.Head == nil {
		return 0, true
	}
	// The end command terminates the shell, or, while sourcing a script,
	// just the sourcing phase.
	if p.Head.Args[0] == "end" {
		if fm.ev.sourcing {
			return 0, false
		}
		os.Exit(0)
	}

	wr := newWiring(fm.files[0], fm.files[1])
	var procs []proc
	for c := p.Head; c != nil; c = c.Next {
		in, out, err := wr.advance(c.Next == nil)
		if err != nil {
			// Without a pipe the rest of the pipeline cannot be wired;
			// abandon construction and wait for what was launched.
			fm.diag("can't create pipe: %v", err)
			break
		}
		procs = append(procs, fm.runCommand(c, in, out))
	}
	wr.closeAll()

	if p.Async {
		fm.launchedJob(procs)
		return 0, true
	}
	return fm.waitAll(procs), true
}

// waitAll waits for every launched stage of a pipeline exactly once, in
// launch order. The first failing status is the pipeline's status: it is
// reported once, and the remaining stages of the same pipeline are asked to
// quit, best-effort. How those stages die afterwards does not change the
// status or produce further reports, and stages of other pipelines are never
// touched.
func (fm *frame) waitAll(procs []proc) int {
	status := 0
	for i, p := range procs {
		st := p.wait()
		if st == 0 || status != 0 {
			continue
		}
		status = st
		fmt.Fprintln(fm.files[1], "command failed, aborting entire pipeline")
		for _, rest := range procs[i+1:] {
			rest.signal(unix.SIGQUIT)
		}
	}
	return status
}

// launchedJob reports an asynchronous pipeline and reaps it in the
// background. There is no job table; the job number only counts upward.
func (fm *frame) launchedJob(procs []proc) {
	fm.ev.jobnum++
	for _, p := range procs {
		if op, ok := p.(*osProc); ok {
			fmt.Fprintf(fm.files[1], "[%d] %d\n", fm.ev.jobnum, op.p.Pid)
			break
		}
	}
	go func() {
		for _, p := range procs {
			p.wait()
		}
	}()
}
