package stage

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"moviecatalog/internal/datasource"
	"moviecatalog/internal/keyset"
	"moviecatalog/internal/model"
	"moviecatalog/internal/parser/tsv"
)

// NameColumns are the names dump columns ResolveNames reads.
var NameColumns = []string{"nconst", "primaryName"}

// Names is a read-only id → display name mapping.
type Names struct {
	m map[string]string
}

// Lookup returns the display name of id.
func (n Names) Lookup(id string) (string, bool) {
	name, ok := n.m[id]
	return name, ok
}

// Len is the number of resolved ids.
func (n Names) Len() int { return len(n.m) }

// NameResult is the output of ResolveNames.
type NameResult struct {
	Names  Names
	Needed int
	// Early reports that every needed id was resolved and the scan stopped
	// at that batch.
	Early bool
	Stats tsv.Stats
}

// DecodePerson decodes a row projected onto NameColumns.
func DecodePerson(f []string) (model.PersonRecord, error) {
	return model.PersonRecord{ID: strings.TrimSpace(f[0]), Name: strings.TrimSpace(f[1])}, nil
}

// ResolveNames maps every needed id to its display name in one pass over the
// names dump. The scan stops as soon as every needed id is resolved; ids
// never found stay unresolved. An empty needed set skips the scan.
func ResolveNames(ctx context.Context, src datasource.Source, needed keyset.Set, cfg Config) (_ *NameResult, err error) {
	started := time.Now()
	res := &NameResult{Needed: needed.Len()}
	defer func() { finish(cfg, "names", started, err, res.Names.Len()) }()

	if needed.Len() == 0 {
		log.Printf("names: nothing to resolve, scan skipped")
		return res, nil
	}

	keep := func(p model.PersonRecord) bool {
		return tsv.Present(p.ID) && tsv.Present(p.Name) && needed.Has(p.ID)
	}
	s := newScanner(src, cfg, "names", cfg.Batches.Names, NameColumns, DecodePerson, keep)

	m := make(map[string]string, needed.Len())
	for batch, err := range s.Batches(ctx) {
		if err != nil {
			return nil, err
		}
		for _, p := range batch {
			if _, dup := m[p.ID]; !dup {
				m[p.ID] = p.Name
			}
		}
		if len(m) == needed.Len() {
			res.Early = true
			break
		}
	}
	res.Names = Names{m: m}
	res.Stats = s.Stats()

	if res.Early {
		log.Printf("names: all %s ids resolved after %s rows, stopping early",
			humanize.Comma(int64(needed.Len())), humanize.Comma(res.Stats.Scanned))
	} else if missing := needed.Len() - len(m); missing > 0 {
		log.Printf("names: %s of %s ids unresolved", humanize.Comma(int64(missing)), humanize.Comma(int64(needed.Len())))
	}
	return res, nil
}
