package eval

import "os"

// Pipe wiring for one pipeline.
//
// A pipeline of any length needs at most two pipes alive in the shell at a
// time: the pipe feeding the command being launched, and the pipe it writes
// to. The two pipes live in a pair of slots indexed by a parity bit that
// flips once per command. Before launching command i:
//
//	slots[1-cur].r   is command i's input
//	slots[cur].w     is command i's output
//
// The remaining two endpoints are not referenced by command i and are closed
// by the shell: slots[cur].r on the flip two rounds later, slots[1-cur].w on
// the next flip. closeAll sweeps whatever is left once the whole pipeline has
// been launched; the shell must never keep an internal endpoint open past
// that point, or downstream commands never observe end-of-input.
//
// The shell's own stdin seeds the first slot and its stdout is bound for the
// last command; neither is ever closed here.

type pipePair struct {
	r, w *os.File
}

type wiring struct {
	slots  [2]pipePair
	cur    int
	stdin  *os.File // the shell's real input; aliased by slot endpoints
	stdout *os.File // the shell's real output; aliased by slot endpoints
}

func newWiring(stdin, stdout *os.File) *wiring {
	w := &wiring{stdin: stdin, stdout: stdout}
	w.slots[0].r = stdin
	return w
}

// advance flips the parity bit and prepares endpoints for the next command,
// allocating a fresh pipe unless the command is the last of its pipeline.
// The returned in and out are the streams the command must be launched with.
func (wr *wiring) advance(last bool) (in, out *os.File, err error) {
	wr.cur = 1 - wr.cur
	wr.closeSlot(wr.cur)
	if last {
		wr.slots[wr.cur] = pipePair{nil, wr.stdout}
	} else {
		r, w, err := os.Pipe()
		if err != nil {
			return nil, nil, err
		}
		wr.slots[wr.cur] = pipePair{r, w}
	}
	return wr.slots[1-wr.cur].r, wr.slots[wr.cur].w, nil
}

// closeSlot closes the endpoints of slot i that are stale from a prior round,
// skipping the shell's own streams.
func (wr *wiring) closeSlot(i int) {
	if f := wr.slots[i].r; f != nil && f != wr.stdin {
		f.Close()
	}
	if f := wr.slots[i].w; f != nil && f != wr.stdout {
		f.Close()
	}
	wr.slots[i] = pipePair{}
}

// closeAll releases every endpoint the shell still holds. Must run after the
// last launch and before waiting on any child.
func (wr *wiring) closeAll() {
	wr.closeSlot(0)
	wr.closeSlot(1)
}
