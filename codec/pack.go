package codec

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
)

// Compression selects how the content section of a .landpack is stored.
type Compression uint8

const (
	CompNone Compression = 0
	CompZlib Compression = 1
	CompZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompNone:
		return "none"
	case CompZlib:
		return "zlib"
	case CompZstd:
		return "zstd"
	}
	return fmt.Sprintf("compression(%d)", uint8(c))
}

// ParseCompression maps a CLI name onto a Compression.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompNone, nil
	case "zlib":
		return CompZlib, nil
	case "zstd":
		return CompZstd, nil
	}
	return 0, fmt.Errorf("unknown compression %q", s)
}

// Layout selects how entries are laid out inside the content section.
type Layout uint8

const (
	// LayoutRaw stores each entry as one blob.
	LayoutRaw Layout = 0
	// LayoutChunked stores a content-defined chunk dictionary shared by all
	// entries; successive saves of a land share most of their chunks.
	LayoutChunked Layout = 1
)

const (
	packMagic   = "LANDPACK"
	packVersion = 1

	chunkTarget = 4096
	chunkMin    = 1024
	chunkMax    = 16384
)

var (
	ErrNotPack      = errors.New("codec: not a .landpack archive")
	ErrPackTooLarge = errors.New("codec: .landpack content exceeds the size limit")
)

// maxContentSize caps the decompressed content section and every entry
// rebuilt from chunks.
var maxContentSize = 256 << 20

// Entry is one named record document inside an archive.
type Entry struct {
	Name string
	Data []byte
}

type Archive struct {
	Entries []Entry
}

// Add encodes rec and appends it under name.
func (a *Archive) Add(name string, rec Record) error {
	b, err := Encode(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	a.Entries = append(a.Entries, Entry{Name: name, Data: b})
	return nil
}

// Record decodes the i-th entry.
func (a *Archive) Record(i int) (Record, error) {
	if i < 0 || i >= len(a.Entries) {
		return Record{}, fmt.Errorf("entry %d out of range", i)
	}
	rec, err := Decode(a.Entries[i].Data)
	if err != nil {
		return rec, fmt.Errorf("entry %s: %w", a.Entries[i].Name, err)
	}
	return rec, nil
}

// Marshal writes the archive: magic, version, compression byte, then the
// (possibly compressed) content section.
func (a *Archive) Marshal(layout Layout, comp Compression) ([]byte, error) {
	var content bytes.Buffer
	content.WriteByte(byte(layout))
	switch layout {
	case LayoutRaw:
		putU32(&content, uint32(len(a.Entries)))
		for _, e := range a.Entries {
			if err := putName(&content, e.Name); err != nil {
				return nil, err
			}
			putBlob(&content, e.Data)
		}
	case LayoutChunked:
		dict, seqs := chunkEntries(a.Entries)
		putU32(&content, uint32(len(dict)))
		for _, blk := range dict {
			putBlob(&content, blk)
		}
		putU32(&content, uint32(len(a.Entries)))
		for i, e := range a.Entries {
			if err := putName(&content, e.Name); err != nil {
				return nil, err
			}
			putU32(&content, uint32(len(e.Data)))
			putU32(&content, uint32(len(seqs[i])))
			for _, idx := range seqs[i] {
				putU32(&content, uint32(idx))
			}
		}
	default:
		return nil, fmt.Errorf("unsupported layout %d", layout)
	}

	body, err := compress(content.Bytes(), comp)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	out.WriteString(packMagic)
	out.WriteByte(packVersion)
	out.WriteByte(byte(comp))
	out.Write(body)
	return out.Bytes(), nil
}

// UnmarshalArchive parses a .landpack and reports the compression it used.
func UnmarshalArchive(data []byte) (*Archive, Compression, error) {
	if len(data) < len(packMagic)+2 || string(data[:len(packMagic)]) != packMagic {
		return nil, 0, ErrNotPack
	}
	if v := data[len(packMagic)]; v != packVersion {
		return nil, 0, fmt.Errorf("unsupported pack version %d", v)
	}
	comp := Compression(data[len(packMagic)+1])
	content, err := decompress(data[len(packMagic)+2:], comp)
	if err != nil {
		return nil, 0, err
	}

	r := &reader{r: bytes.NewReader(content)}
	layout := Layout(r.u8())
	a := &Archive{}
	switch layout {
	case LayoutRaw:
		n := r.u32()
		for i := uint32(0); i < n && r.err == nil; i++ {
			name := r.name()
			a.Entries = append(a.Entries, Entry{Name: name, Data: r.blob()})
		}
	case LayoutChunked:
		nb := r.u32()
		var dict [][]byte
		for i := uint32(0); i < nb && r.err == nil; i++ {
			dict = append(dict, r.blob())
		}
		n := r.u32()
		for i := uint32(0); i < n && r.err == nil; i++ {
			name := r.name()
			rawLen := r.u32()
			seqLen := r.u32()
			if uint64(rawLen) > uint64(maxContentSize) {
				return nil, 0, fmt.Errorf("entry %s: %w", name, ErrPackTooLarge)
			}
			var data []byte
			for j := uint32(0); j < seqLen && r.err == nil; j++ {
				idx := r.u32()
				if int(idx) >= len(dict) {
					return nil, 0, fmt.Errorf("entry %s: chunk index %d out of range", name, idx)
				}
				if len(data)+len(dict[idx]) > int(rawLen) {
					return nil, 0, fmt.Errorf("entry %s: chunks exceed length %d", name, rawLen)
				}
				data = append(data, dict[idx]...)
			}
			if r.err == nil && uint32(len(data)) != rawLen {
				return nil, 0, fmt.Errorf("entry %s: length %d, want %d", name, len(data), rawLen)
			}
			a.Entries = append(a.Entries, Entry{Name: name, Data: data})
		}
	default:
		return nil, 0, fmt.Errorf("unknown layout %d", layout)
	}
	if r.err != nil {
		return nil, 0, fmt.Errorf("read pack: %w", r.err)
	}
	return a, comp, nil
}

func compress(b []byte, comp Compression) ([]byte, error) {
	switch comp {
	case CompNone:
		return b, nil
	case CompZlib:
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(b); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(b, nil), nil
	}
	return nil, fmt.Errorf("unsupported compression %d", comp)
}

func decompress(b []byte, comp Compression) ([]byte, error) {
	switch comp {
	case CompNone:
		return b, nil
	case CompZlib:
		zr, err := zlib.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("zlib: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(io.LimitReader(zr, int64(maxContentSize)+1))
		if err != nil {
			return nil, fmt.Errorf("zlib: %w", err)
		}
		if len(out) > maxContentSize {
			return nil, ErrPackTooLarge
		}
		return out, nil
	case CompZstd:
		dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(maxContentSize)))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		out, err := dec.DecodeAll(b, nil)
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
			return nil, ErrPackTooLarge
		}
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported compression %d", comp)
}

func putU32(w *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func putName(w *bytes.Buffer, name string) error {
	if len(name) > math.MaxUint16 {
		return fmt.Errorf("entry name too long: %.32s...", name)
	}
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(len(name)))
	w.Write(b[:])
	w.WriteString(name)
	return nil
}

func putBlob(w *bytes.Buffer, b []byte) {
	putU32(w, uint32(len(b)))
	w.Write(b)
}

// reader keeps the first error; later reads return zero values.
type reader struct {
	r   *bytes.Reader
	err error
}

func (r *reader) read(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n > r.r.Len() {
		r.err = io.ErrUnexpectedEOF
		return nil
	}
	b := make([]byte, n)
	_, r.err = io.ReadFull(r.r, b)
	return b
}

func (r *reader) u8() uint8 {
	if b := r.read(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u32() uint32 {
	if b := r.read(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *reader) name() string {
	b := r.read(2)
	if b == nil {
		return ""
	}
	return string(r.read(int(binary.LittleEndian.Uint16(b))))
}

func (r *reader) blob() []byte {
	return r.read(int(r.u32()))
}

// chunkEntries splits every entry at content-defined boundaries using a
// gear rolling hash and deduplicates the chunks by xxhash.
func chunkEntries(entries []Entry) ([][]byte, [][]int) {
	gear := gearTable()
	mask := uint64(1)<<uint(math.Round(math.Log2(chunkTarget))) - 1

	var dict [][]byte
	seen := make(map[uint64][]int)
	add := func(b []byte) int {
		h := xxhash.Sum64(b)
		for _, idx := range seen[h] {
			if bytes.Equal(dict[idx], b) {
				return idx
			}
		}
		idx := len(dict)
		dict = append(dict, append([]byte(nil), b...))
		seen[h] = append(seen[h], idx)
		return idx
	}

	seqs := make([][]int, len(entries))
	for i, e := range entries {
		data := e.Data
		start := 0
		var h uint64
		for pos := range data {
			h = h<<1 + gear[data[pos]]
			n := pos - start + 1
			if n < chunkMin {
				continue
			}
			if h&mask == 0 || n >= chunkMax {
				seqs[i] = append(seqs[i], add(data[start:pos+1]))
				start = pos + 1
				h = 0
			}
		}
		if start < len(data) {
			seqs[i] = append(seqs[i], add(data[start:]))
		}
	}
	return dict, seqs
}

func gearTable() [256]uint64 {
	var g [256]uint64
	seed := xxhash.Sum64String("landpack-gear")
	var b [8]byte
	for i := range g {
		binary.LittleEndian.PutUint64(b[:], seed+uint64(i)*0x9E3779B185EBCA87)
		g[i] = xxhash.Sum64(b[:]) | 1
	}
	return g
}
