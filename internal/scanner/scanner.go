// Package scanner turns marked elements into catalog partitions.
//
// For every indexable marker the scanner validates the marker declaration,
// checks each marked element against the registration rules, normalizes the
// attribute values against the marker's defaults, and merges the resulting
// records into the partition already present in the output location.
package scanner

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io/fs"
	"sort"

	"github.com/mesh-intelligence/tagindex/internal/codec"
	"github.com/mesh-intelligence/tagindex/pkg/types"
)

// Options configures a scan.
type Options struct {
	// Quiet suppresses the per-element "indexed under" notes.
	Quiet bool
}

// Result summarizes a scan.
type Result struct {
	// Partitions lists the container paths written, in marker order.
	Partitions []string
	// Records maps each written marker to its record count after merging.
	Records map[string]int
}

// Scanner runs the scan rules over an Environment.
type Scanner struct {
	env      Environment
	filer    Filer
	reporter Reporter
	opts     Options
}

// New returns a Scanner writing through filer and reporting to r.
func New(env Environment, filer Filer, r Reporter, opts Options) *Scanner {
	return &Scanner{env: env, filer: filer, reporter: r, opts: opts}
}

// Run scans every indexable marker and persists one partition per marker
// that has at least one legal element. Declaration problems are reported as
// diagnostics; Run itself only fails when nothing could be attempted.
func (s *Scanner) Run() (*Result, error) {
	if s.env == nil || s.filer == nil {
		return nil, errors.New("scanner needs an environment and a filer")
	}
	res := &Result{Records: make(map[string]int)}
	decls := s.env.Markers()
	sort.SliceStable(decls, func(i, j int) bool { return decls[i].Marker.Name < decls[j].Marker.Name })

	for _, decl := range decls {
		m := decl.Marker
		if msg := checkMarker(m); msg != "" {
			s.report(SeverityError, decl.Pos, m.Name, msg)
			continue
		}
		records, ok := s.collect(m)
		if !ok || len(records) == 0 {
			continue
		}
		path := codec.PartitionPath(m.Name)
		n, err := s.persist(m.Name, records)
		if err != nil {
			s.report(SeverityError, decl.Pos, m.Name, fmt.Sprintf("writing %s: %v", path, err))
			continue
		}
		res.Partitions = append(res.Partitions, path)
		res.Records[m.Name] = n
	}
	return res, nil
}

// collect gathers the legal records for m. It reports false when a value
// translation failed, which aborts the partition.
func (s *Scanner) collect(m *types.Marker) ([]types.Record, bool) {
	var records []types.Record
	ok := true
	for _, e := range s.env.Elements(m.Name) {
		if msg := checkElement(s.env, m, e); msg != "" {
			s.report(SeverityError, e.Pos, e.Identity(), msg)
			continue
		}
		values, err := normalize(s.env, m, e.Values)
		if err != nil {
			s.report(SeverityError, e.Pos, e.Identity(), err.Error())
			ok = false
			continue
		}
		if !s.opts.Quiet {
			s.report(SeverityNote, e.Pos, "", e.Identity()+" indexed under "+m.Name)
		}
		records = append(records, e.Record(values))
	}
	return records, ok
}

// persist merges records into the existing partition for marker and writes
// the partition and its dump. It returns the merged record count.
func (s *Scanner) persist(marker string, records []types.Record) (int, error) {
	old, err := s.readExisting(marker)
	if err != nil {
		return 0, err
	}
	merged := Merge(old, records)

	var part bytes.Buffer
	if err := codec.WritePartition(&part, merged); err != nil {
		return 0, err
	}
	var dump bytes.Buffer
	if err := codec.WriteDump(&dump, merged); err != nil {
		return 0, err
	}
	if err := s.filer.WriteFile(codec.PartitionPath(marker), part.Bytes()); err != nil {
		return 0, err
	}
	if err := s.filer.WriteFile(codec.DumpPath(marker), dump.Bytes()); err != nil {
		return 0, err
	}
	return len(merged), nil
}

func (s *Scanner) readExisting(marker string) ([]types.Record, error) {
	rc, err := s.filer.Open(codec.PartitionPath(marker))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	records, err := codec.ReadPartition(rc)
	if err != nil {
		return nil, fmt.Errorf("reading existing partition: %w", err)
	}
	return records, nil
}

// Merge overlays fresh records onto old ones by identity. Fresh records win;
// old records whose identity was not rescanned are kept. The result is
// ordered by identity so repeated builds write identical partitions.
func Merge(old, fresh []types.Record) []types.Record {
	byID := make(map[string]types.Record, len(old)+len(fresh))
	for _, r := range old {
		byID[r.Identity()] = r
	}
	for _, r := range fresh {
		byID[r.Identity()] = r
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]types.Record, len(ids))
	for i, id := range ids {
		out[i] = byID[id]
	}
	return out
}

func (s *Scanner) report(sev Severity, pos token.Position, subject, msg string) {
	if s.reporter == nil {
		return
	}
	s.reporter.Report(Diagnostic{Severity: sev, Pos: pos, Subject: subject, Message: msg})
}
