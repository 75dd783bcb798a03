// Package snapshot persists a compiled grammar.Grammar as a gob-encoded,
// gzip-compressed file and can reload it from a memory-mapped file on
// repeated runs (e.g. a long-lived server restarting, or a batch job
// sharing one compiled grammar across worker processes on the same
// machine) without re-running paradigm compilation. Decoding still copies
// the grammar onto the heap.
package snapshot

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/rs/zerolog"

	"github.com/timarkh/uniparser-grammar-udm/grammar"
)

// Save gob-encodes and gzip-compresses g to path.
func Save(g *grammar.Grammar, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(g); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

// Snapshot is a grammar.Grammar reloaded by Load, together with the
// memory mapping of the file it was decoded from. The mapping and the file
// stay open until Close is called.
type Snapshot struct {
	Grammar *grammar.Grammar
	region  mmap.MMap
	file    *os.File
}

// Close releases the memory mapping.
func (s *Snapshot) Close() error {
	if s.region != nil {
		if err := s.region.Unmap(); err != nil {
			return err
		}
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// Load maps path into memory and decodes the gzip/gob-encoded grammar it
// holds.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	region, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(region))
	if err != nil {
		region.Unmap()
		f.Close()
		return nil, err
	}
	defer gz.Close()

	var g grammar.Grammar
	if err := gob.NewDecoder(gz).Decode(&g); err != nil {
		region.Unmap()
		f.Close()
		return nil, err
	}
	// gob never touches unexported fields, so every compiled regexp.Regexp
	// (held behind an unexported field on regextest.Test and
	// reduplication.Replacement) comes back nil; recompile them from their
	// exported source strings before handing the grammar back to a caller.
	g.RecompileRegexes()
	g.Log = zerolog.New(os.Stderr).With().Timestamp().Logger()
	return &Snapshot{Grammar: &g, region: region, file: f}, nil
}
