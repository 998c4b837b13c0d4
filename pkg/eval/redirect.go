package eval

import (
	"os"

	"github.com/sharmin-lalani/Micro-shell/pkg/parse"
)

// Newly created redirection targets get owner/group read-write permission.
const redirPerm = 0o660

// applyRedirs rebinds a command's streams according to its redirection spec,
// after pipe wiring has fixed in and out. File redirections override whatever
// the wiring selected.
//
// A failed open of the input file is fatal to the command: the error return
// is non-nil and the command must not run. A failed open of an output file is
// tolerated silently and the stream keeps its wired binding; the asymmetry is
// deliberate and matches the original shell.
//
// The returned closers are the files opened here; the caller closes them once
// the command has been handed its duplicates.
func applyRedirs(c *parse.Command, in, out, errOut *os.File) (nin, nout, nerr *os.File, closers []*os.File, err error) {
	nin, nout, nerr = in, out, errOut
	if c.In == parse.RedirIn {
		f, err := os.Open(c.InFile)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		closers = append(closers, f)
		nin = f
	}
	var f *os.File
	var ferr error
	switch c.Out {
	case parse.RedirOut:
		f, ferr = os.OpenFile(c.OutFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, redirPerm)
	case parse.RedirApp:
		f, ferr = os.OpenFile(c.OutFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, redirPerm)
	case parse.RedirOutErr:
		f, ferr = os.OpenFile(c.OutFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, redirPerm)
		if ferr == nil {
			nerr = f
		}
	case parse.RedirAppErr:
		f, ferr = os.OpenFile(c.OutFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, redirPerm)
		if ferr == nil {
			nerr = f
		}
	default:
		return nin, nout, nerr, closers, nil
	}
	if ferr != nil {
		// Keep the wired output.
		return nin, nout, nerr, closers, nil
	}
	closers = append(closers, f)
	nout = f
	return nin, nout, nerr, closers, nil
}

func closeFiles(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}
