// Package mdx reads MDX dictionary files — a binary, block-structured,
// optionally encrypted and compressed on-disk format used by the MDict
// family of dictionary applications — and exposes the dictionary's
// (headword, definition) pairs as a random-access, iterable collection
// without materializing every definition in memory.
//
// Open drives the full decode pipeline (header, key-index, record-index,
// offset builder) once; Headwords and Items then iterate lazily over the
// resulting offset table, and Items decodes one record block per element.
//
//	data, _ := os.ReadFile("dictionary.mdx")
//	dict, err := mdx.Open(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for item := range dict.Items() {
//	    if item.Err != nil {
//	        log.Printf("skipping %q: %v", item.Record.Text, item.Err)
//	        continue
//	    }
//	    fmt.Println(item.Record.Text, "=>", item.Record.Definition)
//	}
package mdx

import (
	"fmt"
	"iter"

	"github.com/go-mdict/mdx/errs"
	"github.com/go-mdict/mdx/header"
	"github.com/go-mdict/mdx/keyindex"
	"github.com/go-mdict/mdx/recordblock"
)

// RecordOffset is the derived coordinate record bound to one entry: the
// enclosing compressed block's location and size, plus the byte bounds of
// this entry's definition within that block's decompressed image.
type RecordOffset struct {
	Text                 string
	BlockStartInBuf      uint64
	BlockCSize           uint64
	BlockDSize           uint64
	RecordStartInDeBlock uint64
	RecordEndInDeBlock   uint64
}

// Record is the transient (headword, definition) view returned from
// iteration or lookup.
type Record struct {
	Text       string
	Definition string
}

// Item is one element of Items(): a decoded Record, or the error from
// decoding it. A single corrupt block surfaces an error on its own Item
// without aborting iteration over the rest of the dictionary, per the
// per-item error policy in spec §7.
type Item struct {
	Record Record
	Err    error
}

// Mdx is an opened MDX dictionary. It owns the retained record-block
// buffer and the derived offset table; both are immutable after Open
// returns, so Mdx is safe for concurrent read-only use (see spec §5).
type Mdx struct {
	recordBlockBuf []byte
	offsets        []RecordOffset
	encoding       string
	version        header.Version
}

// Open parses data end to end: header, key-index, record-index, and the
// offset-builder join. Any malformed input is a fatal error returned here;
// no partial Mdx is ever exposed.
func Open(data []byte) (*Mdx, error) {
	h, rest, err := header.Parse(data)
	if err != nil {
		return nil, err
	}

	entries, rest, err := keyindex.Decode(rest, h)
	if err != nil {
		return nil, err
	}

	sizes, recordBuf, err := recordblock.DecodeIndex(rest, h.Version)
	if err != nil {
		return nil, err
	}

	offsets, err := buildOffsets(entries, sizes)
	if err != nil {
		return nil, err
	}

	return &Mdx{
		recordBlockBuf: recordBuf,
		offsets:        offsets,
		encoding:       h.Encoding,
		version:        h.Version,
	}, nil
}

// Version reports whether the dictionary used 32-bit (V1) or 64-bit (V2)
// index integers.
func (m *Mdx) Version() header.Version { return m.version }

// Len reports the number of entries in the dictionary.
func (m *Mdx) Len() int { return len(m.offsets) }

// Headwords returns a lazy, restartable sequence of headword strings in
// key-index order, with no per-element decoding cost.
func (m *Mdx) Headwords() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, off := range m.offsets {
			if !yield(off.Text) {
				return
			}
		}
	}
}

// Items returns a lazy, restartable sequence of Item (a Record, or the
// error from decoding it) over the offset table. Each element triggers one
// block decode; callers should expect
// O(block size) work per element, not O(1).
func (m *Mdx) Items() iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for _, off := range m.offsets {
			rec, err := m.decode(off)
			if err != nil {
				err = fmt.Errorf("%q: %w", off.Text, err)
			}
			if !yield(Item{Record: rec, Err: err}) {
				return
			}
		}
	}
}

// Lookup scans the offset table for an entry whose headword equals word
// and decodes its definition. Headword order is advisory (spec §4.3), so
// this is a linear scan rather than a binary search; dictionaries wanting
// O(log n) or O(1) lookup are expected to build an external index (see
// spec §6), which this package does not do.
func (m *Mdx) Lookup(word string) (Record, bool, error) {
	for _, off := range m.offsets {
		if off.Text != word {
			continue
		}
		rec, err := m.decode(off)

		return rec, true, err
	}

	return Record{}, false, nil
}

func (m *Mdx) decode(off RecordOffset) (Record, error) {
	if off.BlockStartInBuf > uint64(len(m.recordBlockBuf)) {
		return Record{}, fmt.Errorf("%w: block start %d past end of buffer (%d bytes)", errs.ErrOffsetMisalignment, off.BlockStartInBuf, len(m.recordBlockBuf))
	}

	decompressed, err := recordblock.Decode(m.recordBlockBuf[off.BlockStartInBuf:], off.BlockCSize, off.BlockDSize)
	if err != nil {
		return Record{}, err
	}

	def, err := recordblock.Extract(decompressed, off.RecordStartInDeBlock, off.RecordEndInDeBlock, m.encoding)
	if err != nil {
		return Record{}, err
	}

	return Record{Text: off.Text, Definition: def}, nil
}

// buildOffsets joins the entry list against the record-block size table,
// implementing the running-sum drain algorithm of spec §4.5: each record
// block's decompressed span is [sumD, sumD+dsize), and entries whose
// logical offset falls strictly inside it belong to that block. The
// comparison is strict, so an entry starting exactly at a block boundary
// belongs to the next block.
func buildOffsets(entries []keyindex.Entry, sizes []recordblock.BlockSize) ([]RecordOffset, error) {
	offsets := make([]RecordOffset, 0, len(entries))

	var sumC, sumD uint64
	i := 0

	for _, b := range sizes {
		blockEnd := sumD + b.DSize

		for i < len(entries) && entries[i].RecordStartInDeBuf < blockEnd {
			start := entries[i].RecordStartInDeBuf - sumD

			var end uint64
			if i+1 < len(entries) && entries[i+1].RecordStartInDeBuf < blockEnd {
				end = entries[i+1].RecordStartInDeBuf - sumD
			} else {
				end = b.DSize
			}

			if start >= end || end > b.DSize {
				return nil, fmt.Errorf("%w: entry %q bounds [%d,%d) invalid for block of %d bytes", errs.ErrOffsetMisalignment, entries[i].Text, start, end, b.DSize)
			}

			offsets = append(offsets, RecordOffset{
				Text:                 entries[i].Text,
				BlockStartInBuf:      sumC,
				BlockCSize:           b.CSize,
				BlockDSize:           b.DSize,
				RecordStartInDeBlock: start,
				RecordEndInDeBlock:   end,
			})

			i++
		}

		sumC += b.CSize
		sumD += b.DSize
	}

	if i != len(entries) {
		return nil, fmt.Errorf("%w: drained %d of %d entries against the record-block size table", errs.ErrOffsetMisalignment, i, len(entries))
	}

	return offsets, nil
}
