package console

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
	endOfText   = "."
	maxLineSize = 1 << 20
)

// prompter asks questions on out and reads answers line by line from in.
// Invalid answers are re-asked; io.EOF is returned when input runs out.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &prompter{in: sc, out: out}
}

func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		fmt.Fprintln(p.out)
		return "", io.EOF
	}
	return strings.TrimRight(p.in.Text(), "\r"), nil
}

// ask repeats prompt until parse accepts the trimmed answer.
func ask[T any](p *prompter, prompt string, parse func(string) (T, error), wrongMsg string) (T, error) {
	for {
		s, err := p.line(prompt)
		if err != nil {
			var zero T
			return zero, err
		}
		v, err := parse(strings.TrimSpace(s))
		if err == nil {
			return v, nil
		}
		fmt.Fprintln(p.out, wrongMsg)
	}
}

func (p *prompter) choice(prompt string, options []string) (string, error) {
	return ask(p, prompt, func(s string) (string, error) {
		s = strings.ToLower(s)
		if slices.Contains(options, s) {
			return s, nil
		}
		return "", fmt.Errorf("unknown option %q", s)
	}, menuWrongKey)
}

func (p *prompter) title(prompt string, allowEmpty bool) (string, error) {
	return ask(p, prompt, func(s string) (string, error) {
		if s == "" && !allowEmpty {
			return "", fmt.Errorf("empty")
		}
		return s, nil
	}, wrongTitle)
}

func (p *prompter) integer(prompt string, lo, hi int) (int, error) {
	return ask(p, prompt, func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, err
		}
		if n < lo || n > hi {
			return 0, fmt.Errorf("%d out of range", n)
		}
		return n, nil
	}, fmt.Sprintf(wrongNumber, lo, hi))
}

func (p *prompter) yesNo(prompt string, def bool) (bool, error) {
	hint := " [y/N]: "
	if def {
		hint = " [Y/n]: "
	}
	return ask(p, prompt+hint, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		return false, fmt.Errorf("not yes or no")
	}, wrongYesNo)
}

func (p *prompter) date(prompt string) (time.Time, error) {
	return ask(p, prompt, func(s string) (time.Time, error) {
		return time.ParseInLocation(dateLayout, s, time.Local)
	}, wrongDate)
}

func (p *prompter) clock(prompt string) (time.Time, error) {
	return ask(p, prompt, func(s string) (time.Time, error) {
		t, err := time.ParseInLocation(clockLayout, s, time.Local)
		if err != nil {
			return time.ParseInLocation(time.TimeOnly, s, time.Local)
		}
		return t, nil
	}, wrongClock)
}

// text reads lines until one holding only ".", and joins them.
func (p *prompter) text(prompt string) (string, error) {
	fmt.Fprintln(p.out, prompt)
	var lines []string
	for {
		s, err := p.line("")
		if err != nil {
			return "", err
		}
		if s == endOfText {
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, s)
	}
}
