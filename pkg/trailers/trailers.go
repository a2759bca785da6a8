// Package trailers decodes and encodes the trailers-reel manifest text
// format.
package trailers

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bgrewell/dts-kit/pkg/dtserr"
)

// header is the fixed two-line comment banner written ahead of every
// encoded manifest.
const header = ";NAME           SERIAL  START   END     OFFSET\r\n" +
	";----           ------  -----   ---     ------\r\n"

// Entry is one trailer-reel record: a title, its serial id, its start
// and end frames (the extract pipeline writes Start 0 and End as the
// trailer's own frame count), and the byte offset of its audio within
// the assembled SND/AUD asset.
type Entry struct {
	Title  string
	ID     uint16
	Start  uint32
	End    int
	Offset int
}

// Manifest is a decoded trailers-reel text file.
type Manifest struct {
	Entries []Entry
}

// Decode reads a trailers manifest from r. Lines beginning with ';' are
// comments and are always skipped. Every other line must split on ASCII
// whitespace into exactly 5 tokens to become an Entry; a non-5-token
// line consisting entirely of alphanumeric characters is tolerated as a
// stray line and skipped, but any other malformed line is a hard error
// carrying the 1-based line number of the line *following* it.
func Decode(r io.Reader, path string) (*Manifest, error) {
	scanner := bufio.NewScanner(r)
	m := &Manifest{}

	lineNo := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineNo++

		if strings.HasPrefix(line, ";") {
			continue
		}

		entry, ok, err := lineToEntry(line)
		if err != nil {
			return nil, dtserr.ParseLine(path, lineNo+1, line)
		}
		if !ok {
			continue
		}
		m.Entries = append(m.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// lineToEntry parses a single non-comment line. ok is false for a
// tolerated stray line; err is non-nil for a hard parse failure.
func lineToEntry(line string) (entry Entry, ok bool, err error) {
	tokens := strings.Fields(line)
	if len(tokens) != 5 {
		if isAlphanumeric(line) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("malformed trailer line")
	}

	id, err := strconv.ParseUint(tokens[1], 10, 16)
	if err != nil {
		return Entry{}, false, err
	}
	start, err := strconv.ParseUint(tokens[2], 10, 32)
	if err != nil {
		return Entry{}, false, err
	}
	end, err := strconv.Atoi(tokens[3])
	if err != nil {
		return Entry{}, false, err
	}
	offset, err := strconv.Atoi(tokens[4])
	if err != nil {
		return Entry{}, false, err
	}

	return Entry{
		Title:  tokens[0],
		ID:     uint16(id),
		Start:  uint32(start),
		End:    end,
		Offset: offset,
	}, true, nil
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isDigit := r >= '0' && r <= '9'
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isDigit && !isLetter {
			return false
		}
	}
	return true
}

// Encode writes the fixed two-line comment header followed by one
// CRLF-terminated, tab-separated record per entry, in input order.
func Encode(m *Manifest) []byte {
	var buf strings.Builder
	buf.WriteString(header)
	for _, e := range m.Entries {
		fmt.Fprintf(&buf, "%s\t%d\t%d\t%d\t%d\r\n", e.Title, e.ID, e.Start, e.End, e.Offset)
	}
	return []byte(buf.String())
}
