package shell

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/qcrop/internal/question"
)

// Extractor crops a single indexed question and returns the written path.
type Extractor interface {
	Extract(idx *question.Index, page, qnum int) (string, error)
}

// Shell is the interactive page/question prompt.
type Shell struct {
	in        *bufio.Scanner
	out       io.Writer
	idx       *question.Index
	extractor Extractor
}

func New(in io.Reader, out io.Writer, idx *question.Index, extractor Extractor) *Shell {
	return &Shell{
		in:        bufio.NewScanner(in),
		out:       out,
		idx:       idx,
		extractor: extractor,
	}
}

// Run loops until the user enters page 0 or input ends. Lookup and crop
// errors are printed and the loop continues.
func (s *Shell) Run() error {
	fmt.Fprintln(s.out, "Interactive crop CLI. Enter 0 to exit.")
	for {
		line, ok := s.prompt("Enter page number (0 to exit): ")
		if !ok {
			break
		}
		if line == "" {
			continue
		}
		page, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintf(s.out, "Error: invalid page number %q\n", line)
			continue
		}
		if page == 0 {
			break
		}

		line, ok = s.prompt("Enter question number to crop: ")
		if !ok {
			break
		}
		qnum, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintf(s.out, "Error: invalid question number %q\n", line)
			continue
		}

		path, err := s.extractor.Extract(s.idx, page, qnum)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(s.out, "Saved crop: %s\n", path)
	}
	return s.in.Err()
}

func (s *Shell) prompt(msg string) (string, bool) {
	fmt.Fprint(s.out, msg)
	if !s.in.Scan() {
		fmt.Fprintln(s.out)
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}
