package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
	"golang.org/x/text/unicode/norm"

	"github.com/darshit3596/shreejida/internal/filehandle"
)

// Prompter talks to the user over a line-oriented terminal. It doubles as
// the file picker and the permission prompter of the file handle manager.
//
// Every answer is NFC-normalized, so names typed with combining marks match
// names stored by other input methods.
type Prompter struct {
	in     *bufio.Reader
	fd     int // terminal descriptor for hidden input, -1 if none
	out    io.Writer
	locate func(path string) (filehandle.Handle, error)
	preset string
}

// NewPrompter reads answers from in and writes questions to out. locate
// turns a typed path into a handle.
func NewPrompter(in io.Reader, out io.Writer, locate func(path string) (filehandle.Handle, error)) *Prompter {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Prompter{in: bufio.NewReader(in), fd: fd, out: out, locate: locate}
}

// Preset makes the next pick answer with path instead of asking.
func (p *Prompter) Preset(path string) {
	p.preset = path
}

// Ask prints label and reads one trimmed line. io.EOF means input ended.
func (p *Prompter) Ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	return p.readLine()
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return norm.NFC.String(strings.TrimSpace(line)), nil
}

// AskDefault is Ask with a value used for an empty answer.
func (p *Prompter) AskDefault(label, def string) (string, error) {
	if def == "" {
		return p.Ask(label)
	}
	v, err := p.Ask(fmt.Sprintf("%s [%s]", label, def))
	if err != nil || v != "" {
		return v, err
	}
	return def, nil
}

// AskRequired repeats the question until the answer is non-empty.
func (p *Prompter) AskRequired(label string) (string, error) {
	for {
		v, err := p.Ask(label)
		if err != nil || v != "" {
			return v, err
		}
		fmt.Fprintf(p.out, "%s is required\n", label)
	}
}

// AskPassword reads a password without echo when attached to a terminal.
func (p *Prompter) AskPassword(label string) (string, error) {
	if p.fd < 0 {
		return p.Ask(label)
	}
	fmt.Fprintf(p.out, "%s: ", label)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return norm.NFC.String(string(b)), nil
}

// AskFloat repeats the question until it gets a non-negative number.
func (p *Prompter) AskFloat(label string, def float64) (float64, error) {
	for {
		v, err := p.AskDefault(label, strconv.FormatFloat(def, 'f', -1, 64))
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(v, 64)
		if err == nil && f >= 0 {
			return f, nil
		}
		fmt.Fprintf(p.out, "%q is not a valid amount\n", v)
	}
}

// AskInt repeats the question until it gets an integer no smaller than min.
func (p *Prompter) AskInt(label string, def, least int64) (int64, error) {
	for {
		v, err := p.AskDefault(label, strconv.FormatInt(def, 10))
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err == nil && n >= least {
			return n, nil
		}
		fmt.Fprintf(p.out, "%q is not a whole number of at least %d\n", v, least)
	}
}

// Confirm asks a yes/no question; anything but y or yes is no.
func (p *Prompter) Confirm(question string) (bool, error) {
	v, err := p.Ask(question + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(v) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// ConfirmAccess implements filehandle.PermissionPrompter.
func (p *Prompter) ConfirmAccess(ctx context.Context, name string) (bool, error) {
	return p.Confirm(fmt.Sprintf("Access to %s was lost. Try again", name))
}

// PickOpen implements filehandle.Picker.
func (p *Prompter) PickOpen(ctx context.Context, opts filehandle.PickerOptions) (filehandle.Handle, error) {
	path, err := p.pick(fmt.Sprintf("Open %s (%s, empty to cancel)", opts.Description, strings.Join(opts.Extensions, ", ")))
	if err != nil {
		return nil, err
	}
	return p.locate(path)
}

// PickSave implements filehandle.Picker. A missing extension is added.
func (p *Prompter) PickSave(ctx context.Context, opts filehandle.PickerOptions) (filehandle.Handle, error) {
	path, err := p.pick(fmt.Sprintf("Save as (suggested %s, empty to cancel)", opts.SuggestedName))
	if err != nil {
		return nil, err
	}
	return p.locate(filehandle.EnsureExtension(path))
}

func (p *Prompter) pick(label string) (string, error) {
	if p.preset != "" {
		path := p.preset
		p.preset = ""
		return path, nil
	}
	path, err := p.Ask(label)
	if errors.Is(err, io.EOF) || (err == nil && path == "") {
		return "", filehandle.ErrCancelled
	}
	return path, err
}
