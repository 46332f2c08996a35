// Package catalog loads the editorial evidence tables from a data directory
// and scores every entry in them.
package catalog

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/euroalt/trustscore/internal/scoring"
)

// Table file names inside a data directory.
const (
	EntriesFile      = "entries.yaml"
	ReservationsFile = "reservations.yaml"
	SignalsFile      = "signals.yaml"
	MetadataFile     = "metadata.yaml"
	PinnedFile       = "pinned.yaml"
)

// TableFiles lists every table in load order. Only EntriesFile is required.
var TableFiles = []string{EntriesFile, ReservationsFile, SignalsFile, MetadataFile, PinnedFile}

// ErrNoEntries is returned when the entries table is empty.
var ErrNoEntries = errors.New("no entries in catalog")

// Dataset is one consistent snapshot of the editorial tables.
type Dataset struct {
	Dir          string
	Entries      []scoring.Entry
	Reservations map[string][]scoring.Reservation
	Signals      map[string][]scoring.PositiveSignal
	Metadata     map[string]scoring.Metadata
	// Pinned holds human-assigned display scores on the 0-10 scale.
	Pinned map[string]float64
	// Files lists the tables actually present, in load order.
	Files []string
	Hash  string
}

// Load reads every table in dir and hashes their combined contents.
// Unknown keys in any table are rejected.
func Load(dir string) (*Dataset, error) {
	ds := &Dataset{
		Dir:          dir,
		Reservations: map[string][]scoring.Reservation{},
		Signals:      map[string][]scoring.PositiveSignal{},
		Metadata:     map[string]scoring.Metadata{},
		Pinned:       map[string]float64{},
	}
	targets := map[string]any{
		EntriesFile:      &ds.Entries,
		ReservationsFile: &ds.Reservations,
		SignalsFile:      &ds.Signals,
		MetadataFile:     &ds.Metadata,
		PinnedFile:       &ds.Pinned,
	}

	h := sha256.New()
	for _, name := range TableFiles {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && name != EntriesFile {
				continue
			}
			return nil, fmt.Errorf("catalog.Load: %w", err)
		}
		if err := decodeStrict(data, targets[name]); err != nil {
			return nil, fmt.Errorf("catalog.Load: parse %s: %w", name, err)
		}
		fmt.Fprintf(h, "%s\x00", name)
		h.Write(data)
		ds.Files = append(ds.Files, name)
	}

	if len(ds.Entries) == 0 {
		return nil, fmt.Errorf("catalog.Load: %s: %w", filepath.Join(dir, EntriesFile), ErrNoEntries)
	}
	ds.Hash = fmt.Sprintf("sha256:%x", h.Sum(nil))
	return ds, nil
}

func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Entry returns the entry with the given id.
func (ds *Dataset) Entry(id string) (scoring.Entry, bool) {
	for _, e := range ds.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return scoring.Entry{}, false
}

// Input assembles the engine input for one entry.
func (ds *Dataset) Input(e scoring.Entry) scoring.Input {
	in := scoring.Input{
		Entry:        e,
		Reservations: ds.Reservations[e.ID],
		Signals:      ds.Signals[e.ID],
	}
	if md, ok := ds.Metadata[e.ID]; ok {
		in.Metadata = &md
	}
	return in
}
