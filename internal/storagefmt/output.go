package storagefmt

import "io"

// output remembers the last byte written so block openers can insert a line
// feed only when one is missing.
type output struct {
	w      io.Writer
	lastLF bool
}

func newOutput(w io.Writer) *output {
	return &output{w: w, lastLF: true}
}

func (o *output) Write(p []byte) (int, error) {
	if len(p) > 0 {
		o.lastLF = p[len(p)-1] == '\n'
	}
	return o.w.Write(p)
}

func (o *output) WriteString(s string) (int, error) {
	return o.Write([]byte(s))
}

func (o *output) cr() error {
	if o.lastLF {
		return nil
	}
	_, err := o.Write([]byte{'\n'})
	return err
}
