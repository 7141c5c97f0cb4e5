package strtable

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Save writes the optional stringtable.txt persistence format: ASCII lines
// "0x<hash8>: <len4>: <bytes><CRLF>". Used to preserve hashes of names seen
// across runs so a later UnHash can report readable names.
func (t *Table) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	var err error
	t.entries.Iter(func(h uint32, e *entry) bool {
		_, err = fmt.Fprintf(bw, "0x%08x: %04d: %s\r\n", h, len(e.bytes), e.bytes)
		return err == nil
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

// Load reads a stringtable.txt file, interning each entry. A hash collision
// against an already-interned string of different bytes is a malformed-file
// error, reported rather than panicked since this is untrusted file input,
// not an internal invariant violation.
func (t *Table) Load(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ": ", 3)
		if len(parts) != 3 || !strings.HasPrefix(parts[0], "0x") {
			return fmt.Errorf("strtable: malformed line %q", line)
		}
		h, err := strconv.ParseUint(parts[0][2:], 16, 32)
		if err != nil {
			return fmt.Errorf("strtable: malformed hash %q: %w", parts[0], err)
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("strtable: malformed length %q: %w", parts[1], err)
		}
		if n != len(parts[2]) {
			return fmt.Errorf("strtable: length %d does not match %d stored bytes", n, len(parts[2]))
		}
		if e, ok := t.entries.Get(uint32(h)); ok {
			if e.bytes != parts[2] {
				return fmt.Errorf("strtable: hash %#x collides: %q vs %q", h, e.bytes, parts[2])
			}
			continue
		}
		t.entries.Put(uint32(h), &entry{bytes: parts[2], refCount: 0})
	}
	return sc.Err()
}
