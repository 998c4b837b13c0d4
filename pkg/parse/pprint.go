package parse

import (
	"fmt"
	"strings"
)

// Pprint renders a parsed line in a compact single-line form, used by the
// --print-ast flag. The output is not meant to round-trip.
func Pprint(p *Pipeline) string {
	var b strings.Builder
	for ; p != nil; p = p.Next {
		for c := p.Head; c != nil; c = c.Next {
			fmt.Fprintf(&b, "%q", c.Args)
			if c.In == RedirIn {
				fmt.Fprintf(&b, " <(%v)", c.InFile)
			}
			switch c.Out {
			case RedirOut:
				fmt.Fprintf(&b, " >(%v)", c.OutFile)
			case RedirApp:
				fmt.Fprintf(&b, " >>(%v)", c.OutFile)
			case RedirOutErr:
				fmt.Fprintf(&b, " >&(%v)", c.OutFile)
			case RedirAppErr:
				fmt.Fprintf(&b, " >>&(%v)", c.OutFile)
			case RedirPipe:
				b.WriteString(" | ")
			case RedirPipeErr:
				b.WriteString(" |& ")
			}
		}
		if p.Async {
			b.WriteString(" &")
		}
		if p.Next != nil {
			b.WriteString(" ; ")
		}
	}
	return b.String()
}
