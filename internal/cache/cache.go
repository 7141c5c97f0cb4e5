// Package cache implements the .cso on-disk compiled-block format: a header
// followed by the raw 32-bit instruction buffer and line table. When the
// source's mtime is older than the cache's, the cache is loaded; otherwise
// the source is recompiled. Save/Load round-trip a code.Block's final
// (post-Compile) contents directly, skipping the two-pass count/emit walk
// entirely on a cache hit.
package cache

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"tinscript/internal/code"
	"tinscript/internal/emit"
)

const (
	magic   = "TSCO"
	version = uint32(1)
)

// Header is the .cso file header. BuildID stamps which process produced
// this entry, for log correlation across a multi-ScriptContext host;
// SourceModTime is the source file's mtime at compile time, the one piece
// Stale needs to decide whether a cache entry is still good.
type Header struct {
	BuildID       uuid.UUID
	SourceModTime time.Time
	Filename      string
	FilenameHash  uint32
}

// Entry is a fully-loaded cache record: everything Install needs to splice
// a cached block straight into a fresh code.Registry.
type Entry struct {
	Header       Header
	Instructions []int32
	Lines        []emit.LineEntry
	Defined      []code.FuncDef
}

// Stale reports whether sourceModTime is newer than the mtime this entry
// was saved against, i.e. whether the source must be recompiled rather than
// loaded from this entry.
func (e *Entry) Stale(sourceModTime time.Time) bool {
	return sourceModTime.After(e.Header.SourceModTime)
}

// Install registers this entry's contents as a new Block in reg, using
// Registry.Begin/Finish directly rather than running Compile again, so
// loading the cache produces bytecode identical to compiling the source
// directly.
func (e *Entry) Install(reg *code.Registry) *code.Block {
	b := reg.Begin(e.Header.Filename, e.Header.FilenameHash)
	reg.Finish(b, e.Instructions, e.Lines, e.Defined)
	return b
}

// packLine folds one line-table row into the 32-bit (offset_high_16 <<
// 16 | line_low_16) on-disk layout; the in-memory emit.LineEntry keeps the
// pair unpacked since nothing but this encoding needs the bit trick.
func packLine(e emit.LineEntry) uint32 {
	return uint32(uint16(e.Offset))<<16 | uint32(uint16(e.Line))
}

func unpackLine(packed uint32) emit.LineEntry {
	return emit.LineEntry{Offset: int(packed >> 16), Line: int(packed & 0xFFFF)}
}

// Save writes b's compiled contents to w under the given build id and
// source mtime.
func Save(w io.Writer, b *code.Block, buildID uuid.UUID, sourceModTime time.Time) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(magic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, version); err != nil {
		return err
	}
	idBytes, err := buildID.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := bw.Write(idBytes); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, sourceModTime.UnixNano()); err != nil {
		return err
	}
	if err := writeString(bw, b.Filename); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, b.FilenameHash); err != nil {
		return err
	}

	if err := binary.Write(bw, binary.LittleEndian, uint32(len(b.Instructions))); err != nil {
		return err
	}
	for _, word := range b.Instructions {
		if err := binary.Write(bw, binary.LittleEndian, word); err != nil {
			return err
		}
	}

	if err := binary.Write(bw, binary.LittleEndian, uint32(len(b.Lines))); err != nil {
		return err
	}
	for _, le := range b.Lines {
		if err := binary.Write(bw, binary.LittleEndian, packLine(le)); err != nil {
			return err
		}
	}

	if err := binary.Write(bw, binary.LittleEndian, uint32(len(b.Defined))); err != nil {
		return err
	}
	for _, fd := range b.Defined {
		if err := binary.Write(bw, binary.LittleEndian, fd.FuncHash); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, fd.NSHash); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(fd.InstrOffset)); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Load reads a .cso entry back from r.
func Load(r io.Reader) (*Entry, error) {
	br := bufio.NewReader(r)

	got := make([]byte, len(magic))
	if _, err := io.ReadFull(br, got); err != nil {
		return nil, fmt.Errorf("cache: read magic: %w", err)
	}
	if string(got) != magic {
		return nil, fmt.Errorf("cache: not a .cso file (got magic %q)", got)
	}
	var ver uint32
	if err := binary.Read(br, binary.LittleEndian, &ver); err != nil {
		return nil, err
	}
	if ver != version {
		return nil, fmt.Errorf("cache: unsupported .cso version %d", ver)
	}

	var idBytes [16]byte
	if _, err := io.ReadFull(br, idBytes[:]); err != nil {
		return nil, err
	}
	buildID, err := uuid.FromBytes(idBytes[:])
	if err != nil {
		return nil, err
	}

	var modNanos int64
	if err := binary.Read(br, binary.LittleEndian, &modNanos); err != nil {
		return nil, err
	}

	filename, err := readString(br)
	if err != nil {
		return nil, err
	}
	var filenameHash uint32
	if err := binary.Read(br, binary.LittleEndian, &filenameHash); err != nil {
		return nil, err
	}

	var instrCount uint32
	if err := binary.Read(br, binary.LittleEndian, &instrCount); err != nil {
		return nil, err
	}
	instructions := make([]int32, instrCount)
	for i := range instructions {
		if err := binary.Read(br, binary.LittleEndian, &instructions[i]); err != nil {
			return nil, err
		}
	}

	var lineCount uint32
	if err := binary.Read(br, binary.LittleEndian, &lineCount); err != nil {
		return nil, err
	}
	var lines []emit.LineEntry
	if lineCount > 0 {
		lines = make([]emit.LineEntry, lineCount)
	}
	for i := range lines {
		var packed uint32
		if err := binary.Read(br, binary.LittleEndian, &packed); err != nil {
			return nil, err
		}
		lines[i] = unpackLine(packed)
	}

	var defCount uint32
	if err := binary.Read(br, binary.LittleEndian, &defCount); err != nil {
		return nil, err
	}
	var defined []code.FuncDef
	if defCount > 0 {
		defined = make([]code.FuncDef, defCount)
	}
	for i := range defined {
		if err := binary.Read(br, binary.LittleEndian, &defined[i].FuncHash); err != nil {
			return nil, err
		}
		if err := binary.Read(br, binary.LittleEndian, &defined[i].NSHash); err != nil {
			return nil, err
		}
		var off uint32
		if err := binary.Read(br, binary.LittleEndian, &off); err != nil {
			return nil, err
		}
		defined[i].InstrOffset = int(off)
	}

	return &Entry{
		Header: Header{
			BuildID:       buildID,
			SourceModTime: time.Unix(0, modNanos).UTC(),
			Filename:      filename,
			FilenameHash:  filenameHash,
		},
		Instructions: instructions,
		Lines:        lines,
		Defined:      defined,
	}, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// SaveFile is the file-path convenience wrapper around Save, writing
// sourcePath's compiled form to cachePath (the "foo.cs" -> "foo.cso"
// naming convention).
func SaveFile(cachePath string, b *code.Block, buildID uuid.UUID, sourcePath string) error {
	fi, err := os.Stat(sourcePath)
	if err != nil {
		return err
	}
	f, err := os.Create(cachePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return Save(f, b, buildID, fi.ModTime())
}

// LoadFile loads cachePath and reports whether it is still fresh against
// sourcePath's current mtime. A stale entry is still returned (the caller
// decides whether to recompile and overwrite it), per Stale's contract.
func LoadFile(cachePath, sourcePath string) (*Entry, error) {
	f, err := os.Open(cachePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entry, err := Load(f)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(sourcePath)
	if err != nil {
		return nil, err
	}
	if entry.Stale(fi.ModTime()) {
		return entry, fmt.Errorf("cache: %s is stale against %s", cachePath, sourcePath)
	}
	return entry, nil
}
