package eval

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/sharmin-lalani/Micro-shell/pkg/parse"
)

// A proc is one launched pipeline stage: a real child process, a builtin
// running concurrently in its own goroutine, or a stage that already failed
// before it could run. Every stage of a pipeline yields exactly one proc, so
// the executor always waits on as many procs as the pipeline has commands.
type proc interface {
	// wait blocks until the stage has terminated and returns its status.
	// Must be called exactly once.
	wait() int
	// signal requests termination, best-effort.
	signal(sig os.Signal)
}

type osProc struct {
	p *os.Process
}

func (p *osProc) wait() int {
	state, err := p.p.Wait()
	if err != nil {
		return StatusWaitError
	}
	if state.Exited() {
		return state.ExitCode()
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return StatusSignalBase + int(ws.Signal())
	}
	return StatusWaitOther
}

func (p *osProc) signal(sig os.Signal) {
	p.p.Signal(sig)
}

// builtinProc runs a builtin handler concurrently with the rest of its
// pipeline. The handler owns duplicated stream endpoints, which it closes on
// completion so that downstream stages observe end-of-input, just as a child
// process exiting would.
type builtinProc struct {
	done   chan struct{}
	status int
}

func startBuiltinProc(handler builtin, fm *frame, args []string, owned []*os.File) *builtinProc {
	p := &builtinProc{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		defer closeFiles(owned)
		p.status = handler(fm, args)
	}()
	return p
}

func (p *builtinProc) wait() int {
	<-p.done
	return p.status
}

// There is no process to signal; the handler runs to completion on its own.
func (p *builtinProc) signal(os.Signal) {}

// doneProc is a stage that terminated before or without spawning: a launch
// failure, or a builtin that ran to completion in the shell itself.
type doneProc struct {
	status int
}

func (p *doneProc) wait() int { return p.status }

func (p *doneProc) signal(os.Signal) {}

// runCommand launches one command of a pipeline with the wired input and
// output streams and returns its proc. It never blocks on the command.
//
// Decision table: a builtin that is last in its pipeline runs in the shell;
// a builtin with a successor runs concurrently on duplicated endpoints;
// anything else is resolved on PATH and spawned as a real process.
func (fm *frame) runCommand(c *parse.Command, in, out *os.File) proc {
	errOut := fm.files[2]
	if c.Out == parse.RedirPipeErr {
		errOut = out
	}

	if handler, ok := builtins[c.Args[0]]; ok {
		if c.Next == nil {
			return fm.runBuiltinHere(handler, c, in, out, errOut)
		}
		return fm.spawnBuiltin(handler, c, in, out)
	}
	return fm.spawnExternal(c, in, out, errOut)
}

// runBuiltinHere executes a builtin in the shell's own process. The wired
// streams are scoped to this call through a derived frame, so nothing needs
// to be saved and restored afterwards.
func (fm *frame) runBuiltinHere(handler builtin, c *parse.Command, in, out, errOut *os.File) proc {
	nin, nout, nerr, closers, err := applyRedirs(c, in, out, errOut)
	if err != nil {
		return &doneProc{StatusRedirectionError}
	}
	sub := &frame{ev: fm.ev, files: []*os.File{nin, nout, nerr}}
	status := handler(sub, c.Args[1:])
	closeFiles(closers)
	return &doneProc{status}
}

// spawnBuiltin runs a builtin that has a successor in its pipeline. The
// handler gets duplicates of the wired endpoints so the shell can close its
// own copies on the normal wiring schedule; the error stream is rebound to
// the duplicate, not the caller's endpoint, when the pipe carries both
// streams.
func (fm *frame) spawnBuiltin(handler builtin, c *parse.Command, in, out *os.File) proc {
	din, err := dupFile(in)
	if err != nil {
		fm.diag("can't duplicate pipe endpoint: %v", err)
		return &doneProc{StatusPipeError}
	}
	dout, err := dupFile(out)
	if err != nil {
		din.Close()
		fm.diag("can't duplicate pipe endpoint: %v", err)
		return &doneProc{StatusPipeError}
	}
	derr := fm.files[2]
	if c.Out == parse.RedirPipeErr {
		derr = dout
	}
	owned := []*os.File{din, dout}

	nin, nout, nerr, closers, rerr := applyRedirs(c, din, dout, derr)
	if rerr != nil {
		closeFiles(owned)
		return &doneProc{StatusRedirectionError}
	}
	owned = append(owned, closers...)
	sub := &frame{ev: fm.ev, files: []*os.File{nin, nout, nerr}}
	return startBuiltinProc(handler, sub, c.Args[1:], owned)
}

// spawnExternal resolves the program on PATH and starts it with the wired
// and redirected streams. Lookup and spawn failures yield an
// already-terminated proc so the stage still counts toward the wait set.
//
// Redirections are applied before anything else: an input failure wins over
// a lookup failure, and a lookup failure message goes to the redirected
// output, just as the original's child printed only after rebinding its
// streams.
func (fm *frame) spawnExternal(c *parse.Command, in, out, errOut *os.File) proc {
	nin, nout, nerr, closers, err := applyRedirs(c, in, out, errOut)
	if err != nil {
		// Input redirection failure: the command dies without running and
		// without output, like the original's child calling exit.
		return &doneProc{StatusRedirectionError}
	}
	fail := func(status int) proc {
		fmt.Fprintln(nout, launchFailure(status))
		closeFiles(closers)
		return &doneProc{status}
	}
	path, status := lookPath(c.Args[0], os.Getenv("PATH"))
	if status != 0 {
		return fail(status)
	}
	p, err := os.StartProcess(path, c.Args, &os.ProcAttr{
		Files: []*os.File{nin, nout, nerr},
	})
	if err != nil {
		if os.IsPermission(err) {
			return fail(StatusCommandNotExecutable)
		}
		return fail(StatusCommandNotFound)
	}
	closeFiles(closers)
	return &osProc{p}
}

func launchFailure(status int) string {
	if status == StatusCommandNotExecutable {
		return "permission denied"
	}
	return "command not found"
}

// dupFile duplicates a stream endpoint so that two owners can close it
// independently, the no-fork analogue of a child inheriting a descriptor.
func dupFile(f *os.File) (*os.File, error) {
	fd, err := unix.Dup(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(fd)
	return os.NewFile(uintptr(fd), f.Name()), nil
}
