package stage

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"moviecatalog/internal/datasource"
	"moviecatalog/internal/keyset"
	"moviecatalog/internal/model"
	"moviecatalog/internal/parser/ints"
	"moviecatalog/internal/parser/tsv"
)

var (
	// CrewColumns are the crew dump columns ResolveCrew reads.
	CrewColumns = []string{"tconst", "directors"}
	// PrincipalColumns are the principals dump columns ResolveCast reads.
	PrincipalColumns = []string{"tconst", "ordering", "nconst", "category"}
)

// CrewResult maps title keys to director ids in crew order. Titles with no
// directors are absent.
type CrewResult struct {
	Directors map[string][]string
	Stats     tsv.Stats
}

// CastResult maps title keys to at most CastTopN person ids in billing
// order.
type CastResult struct {
	Cast  map[string][]string
	Stats tsv.Stats
}

// DecodeCrew decodes a row projected onto CrewColumns.
func DecodeCrew(f []string) (model.CrewRecord, error) {
	if f[0] == "" {
		return model.CrewRecord{}, errEmptyKey
	}
	return model.CrewRecord{Key: f[0], Directors: tsv.SplitList(f[1], ",")}, nil
}

// DecodeCastRole decodes a row projected onto PrincipalColumns. An absent
// ordering decodes to position 0, which no cast cutoff accepts.
func DecodeCastRole(f []string) (model.CastRole, error) {
	if f[0] == "" {
		return model.CastRole{}, errEmptyKey
	}
	pos, err := ints.ParseNull(f[1])
	if err != nil {
		return model.CastRole{}, err
	}
	return model.CastRole{
		Key:      f[0],
		Position: pos.Int,
		PersonID: f[2],
		Kind:     model.ParseRoleKind(f[3]),
	}, nil
}

// CastPredicate keeps actor/actress credits of a surviving title whose
// billing position is within 1..topN.
func CastPredicate(keys keyset.Set, topN int) func(model.CastRole) bool {
	return func(r model.CastRole) bool {
		return r.Kind.IsCast() &&
			r.Position >= 1 && r.Position <= topN &&
			tsv.Present(r.PersonID) &&
			keys.Has(r.Key)
	}
}

// ResolveCrew collects the director ids of every title in keys. The first
// crew row of a title wins.
func ResolveCrew(ctx context.Context, src datasource.Source, keys keyset.Set, cfg Config) (_ *CrewResult, err error) {
	started := time.Now()
	res := &CrewResult{}
	defer func() { finish(cfg, "crew", started, err, len(res.Directors)) }()

	keep := func(c model.CrewRecord) bool { return len(c.Directors) > 0 && keys.Has(c.Key) }
	s := newScanner(src, cfg, "crew", cfg.Batches.Crew, CrewColumns, DecodeCrew, keep)

	dirs := make(map[string][]string, keys.Len())
	for batch, err := range s.Batches(ctx) {
		if err != nil {
			return nil, err
		}
		for _, c := range batch {
			if _, dup := dirs[c.Key]; !dup {
				dirs[c.Key] = c.Directors
			}
		}
	}
	res.Directors = dirs
	res.Stats = s.Stats()
	return res, nil
}

type castSlot struct {
	pos int
	id  string
}

// ResolveCast collects up to CastTopN cast ids per title in keys, ordered by
// billing position; equal positions keep scan order.
func ResolveCast(ctx context.Context, src datasource.Source, keys keyset.Set, cfg Config) (_ *CastResult, err error) {
	started := time.Now()
	res := &CastResult{}
	defer func() { finish(cfg, "cast", started, err, len(res.Cast)) }()

	topN := cfg.Filter.CastTopN
	s := newScanner(src, cfg, "principals", cfg.Batches.Principals, PrincipalColumns, DecodeCastRole, CastPredicate(keys, topN))

	slots := make(map[string][]castSlot, keys.Len())
	for batch, err := range s.Batches(ctx) {
		if err != nil {
			return nil, err
		}
		for _, r := range batch {
			slots[r.Key] = insertSlot(slots[r.Key], castSlot{pos: r.Position, id: r.PersonID}, topN)
		}
	}

	res.Cast = make(map[string][]string, len(slots))
	for k, ss := range slots {
		ids := make([]string, len(ss))
		for i, sl := range ss {
			ids[i] = sl.id
		}
		res.Cast[k] = ids
	}
	res.Stats = s.Stats()
	return res, nil
}

// insertSlot inserts sl after every slot with position <= sl.pos and keeps
// at most limit slots.
func insertSlot(ss []castSlot, sl castSlot, limit int) []castSlot {
	i := len(ss)
	for i > 0 && ss[i-1].pos > sl.pos {
		i--
	}
	if i >= limit {
		return ss
	}
	ss = append(ss, castSlot{})
	copy(ss[i+1:], ss[i:])
	ss[i] = sl
	if len(ss) > limit {
		ss = ss[:limit]
	}
	return ss
}

// ResolveCredits runs ResolveCrew and ResolveCast concurrently over the same
// key set. The first failure cancels the other scan.
func ResolveCredits(ctx context.Context, src Sources, keys keyset.Set, cfg Config) (*CrewResult, *CastResult, error) {
	var (
		crew *CrewResult
		cast *CastResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		crew, err = ResolveCrew(gctx, src.Crew, keys, cfg)
		return err
	})
	g.Go(func() error {
		var err error
		cast, err = ResolveCast(gctx, src.Principals, keys, cfg)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return crew, cast, nil
}

// CollectNeeded returns the union of every director and cast id.
func CollectNeeded(crew *CrewResult, cast *CastResult) keyset.Set {
	u := keyset.NewBuilder()
	u.Merge(idSet(crew.Directors))
	u.Merge(idSet(cast.Cast))
	return u.Freeze()
}

func idSet(credits map[string][]string) keyset.Set {
	b := keyset.NewBuilder()
	for _, ids := range credits {
		for _, id := range ids {
			b.Add(id)
		}
	}
	return b.Freeze()
}
