package scanner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/beacon.map/internal/geom"
)

// ErrMalformedInput is wrapped by every ParseError.
var ErrMalformedInput = errors.New("malformed scanner input")

// ParseError describes a rejected line of a scanner report.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformedInput
}

// Parse reads scanner reports of the form
//
//	--- scanner 0 ---
//	404,-588,-901
//	528,-643,409
//
// Blocks are separated by blank lines. Scanner IDs must start at 0 and
// increase by one so the result can be index-addressed. Scanner 0 is
// returned resolved to the identity transform; all others are unresolved.
func Parse(r io.Reader) ([]*Scanner, error) {
	var (
		out     []*Scanner
		id      = -1
		pts     []geom.Point
		hdrLine int
		lineNo  int
	)

	flush := func() error {
		if id < 0 {
			return nil
		}
		if len(pts) == 0 {
			return &ParseError{Line: hdrLine, Msg: fmt.Sprintf("scanner %d has no points", id)}
		}
		if id == 0 {
			out = append(out, NewReference(id, pts))
		} else {
			out = append(out, New(id, pts))
		}
		id, pts = -1, nil
		return nil
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			if err := flush(); err != nil {
				return nil, err
			}
		case strings.HasPrefix(line, "---"):
			if err := flush(); err != nil {
				return nil, err
			}
			n, err := parseHeader(line)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Msg: err.Error()}
			}
			if n != len(out) {
				return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("scanner %d out of sequence, expected %d", n, len(out))}
			}
			id, hdrLine = n, lineNo
		default:
			if id < 0 {
				return nil, &ParseError{Line: lineNo, Msg: "point before scanner header"}
			}
			p, err := parsePoint(line)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Msg: err.Error()}
			}
			pts = append(pts, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scanner input: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, &ParseError{Line: lineNo, Msg: "no scanners found"}
	}
	return out, nil
}

func parseHeader(line string) (int, error) {
	fields := strings.Fields(strings.Trim(line, "- "))
	if len(fields) != 2 || fields[0] != "scanner" {
		return 0, fmt.Errorf("invalid scanner header %q", line)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid scanner id %q", fields[1])
	}
	return n, nil
}

func parsePoint(line string) (geom.Point, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return geom.Point{}, fmt.Errorf("expected 3 coordinates, got %d in %q", len(parts), line)
	}
	var v [3]int
	for i, s := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return geom.Point{}, fmt.Errorf("failed to parse coordinate %q: %v", s, err)
		}
		v[i] = n
	}
	return geom.NewPoint(v[0], v[1], v[2]), nil
}

// Format writes scanners in the form accepted by Parse.
func Format(w io.Writer, scanners []*Scanner) error {
	bw := bufio.NewWriter(w)
	for i, s := range scanners {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		fmt.Fprintf(bw, "--- scanner %d ---\n", s.ID)
		for _, p := range s.local {
			fmt.Fprintln(bw, p.String())
		}
	}
	return bw.Flush()
}
