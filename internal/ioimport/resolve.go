package ioimport

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/goldfish-inc/perseis-sub001/pkg/trust"
	"github.com/goldfish-inc/perseis-sub001/pkg/vessel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// canonical is a vessel's stored identity during refinement.
type canonical struct {
	name string
	imo  string
	ircs string
	mmsi string
	flag string
	rank float64
}

// refine merges one observation into the canonical identity. An
// observation at or above the stored rank overwrites every field it
// reports and takes over the rank; a weaker one only fills gaps.
func (c canonical) refine(f vessel.Fact, rank float64) (canonical, bool) {
	res := c
	if rank >= c.rank {
		res.rank = rank
		override(&res.name, f.Name)
		override(&res.imo, f.IMO)
		override(&res.ircs, f.IRCS)
		override(&res.mmsi, f.MMSI)
		override(&res.flag, f.Flag)
	} else {
		fill(&res.name, f.Name)
		fill(&res.imo, f.IMO)
		fill(&res.ircs, f.IRCS)
		fill(&res.mmsi, f.MMSI)
		fill(&res.flag, f.Flag)
	}
	return res, res != c
}

func override(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func fill(dst *string, val string) {
	if *dst == "" && val != "" {
		*dst = val
	}
}

// candMeta holds the candidate state matching does not need but
// refinement does.
type candMeta struct {
	idx  int
	mmsi string
	rank float64
}

// candSet is the working set of canonical vessels for one chunk.
// Creations and refinements update it in place, so later facts in the
// chunk match against current state, not the state at chunk start.
type candSet struct {
	list []vessel.Candidate
	meta map[string]*candMeta
}

func newCandSet() *candSet {
	return &candSet{meta: make(map[string]*candMeta)}
}

func (cs *candSet) add(c vessel.Candidate, mmsi string, rank float64) {
	id := c.ID.String()
	if _, ok := cs.meta[id]; ok {
		return
	}
	cs.meta[id] = &candMeta{idx: len(cs.list), mmsi: mmsi, rank: rank}
	cs.list = append(cs.list, c)
}

func (cs *candSet) canonical(id string) canonical {
	m := cs.meta[id]
	c := cs.list[m.idx]
	return canonical{
		name: c.Name, imo: c.IMO, ircs: c.IRCS,
		mmsi: m.mmsi, flag: c.Flag, rank: m.rank,
	}
}

func (cs *candSet) set(id string, c canonical) {
	m := cs.meta[id]
	cs.list[m.idx].Name = c.name
	cs.list[m.idx].IMO = c.imo
	cs.list[m.idx].IRCS = c.ircs
	cs.list[m.idx].Flag = c.flag
	m.mmsi = c.mmsi
	m.rank = c.rank
}

// resolveIdentities links every extracted fact to a canonical vessel,
// creating vessels for facts nothing matches. Work is chunked; each
// chunk commits as one transaction, and committed chunks survive a
// later failure.
func (p *importer) resolveIdentities(ctx context.Context, r *run) error {
	chunkSize := p.cfg.Import.ChunkSize

	bar := newBar("Resolving identities: ", len(r.facts))
	for start := 0; start < len(r.facts); start += chunkSize {
		end := min(start+chunkSize, len(r.facts))
		if err := p.resolveChunk(ctx, r, start, end); err != nil {
			bar.Finish()
			return err
		}
		bar.Add(end - start)

		select {
		case <-ctx.Done():
			bar.Finish()
			return CancelledError(ctx.Err())
		default:
		}
	}
	bar.Finish()

	slog.Info("Identities resolved",
		"batch", r.batchID,
		"matched", r.report.Matched,
		"created", r.report.Created,
		"skipped", r.report.SkippedNoIdentity,
		"ambiguous", r.report.Ambiguous,
	)
	return nil
}

func (p *importer) resolveChunk(
	ctx context.Context,
	r *run,
	start, end int,
) error {
	tx, err := p.operator.Pool().Begin(ctx)
	if err != nil {
		return ResolveError(err)
	}
	defer tx.Rollback(ctx)

	// Advisory locks serialize concurrent imports that observe the same
	// hull. Sorted acquisition keeps the lock order identical across
	// runs, so two chunks cannot deadlock on each other.
	for _, key := range lockKeys(r.facts[start:end]) {
		_, err = tx.Exec(ctx,
			`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key,
		)
		if err != nil {
			return ResolveError(err)
		}
	}

	cands, err := loadCandidates(ctx, tx, r.facts[start:end])
	if err != nil {
		return ResolveError(err)
	}

	for i := start; i < end; i++ {
		f := r.facts[i].fact
		if !f.HasIdentity() {
			r.report.SkippedNoIdentity++
			continue
		}

		srcTrust := trust.SourceScore(r.src.Authority, f.Completeness())

		res, ok := vessel.Match(f, cands.list)
		if res.Ambiguous {
			// A tie is never guessed on; the cascade already fell
			// through to a weaker tier or to creation.
			r.report.Ambiguous++
			slog.Debug("Ambiguous identifiers",
				"batch", r.batchID, "row", r.rows[i].num)
		}

		if ok {
			err = p.applyMatch(ctx, tx, r, i, cands, res, srcTrust)
		} else {
			err = p.applyCreate(ctx, tx, r, i, cands, srcTrust)
		}
		if err != nil {
			return ResolveError(err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return ResolveError(err)
	}
	return nil
}

// applyMatch links a fact to the vessel its cascade selected and
// refines the vessel's canonical identity with the observation.
func (p *importer) applyMatch(
	ctx context.Context,
	tx pgx.Tx,
	r *run,
	i int,
	cands *candSet,
	res vessel.MatchResult,
	srcTrust float64,
) error {
	f := r.facts[i].fact
	vid := res.VesselID.String()

	next, changed := cands.canonical(vid).refine(f, srcTrust)
	if changed {
		applied, err := updateCanonicals(ctx, tx, vid, next)
		if err != nil {
			return err
		}
		if applied {
			cands.set(vid, next)
		}
	}

	if err := p.linkObservation(
		ctx, tx, r, i, vid, &res.Tier, &res.Confidence, srcTrust,
	); err != nil {
		return err
	}
	r.facts[i].tier = res.Tier
	r.facts[i].confidence = res.Confidence
	r.report.Matched++
	return nil
}

// applyCreate registers a new canonical vessel for a fact no existing
// vessel matched. The partial unique index on vessels(imo) backstops
// the advisory-lock discipline: a conflict means another import won the
// race, and the fact turns into an IMO match against the winner.
func (p *importer) applyCreate(
	ctx context.Context,
	tx pgx.Tx,
	r *run,
	i int,
	cands *candSet,
	srcTrust float64,
) error {
	f := r.facts[i].fact

	id := uuid.New().String()
	conflict, err := insertVessel(ctx, tx, id, f, srcTrust)
	if err != nil {
		return err
	}
	if conflict {
		winner, err := loadVesselByIMO(ctx, tx, f.IMO)
		if err != nil {
			return err
		}
		cands.add(winner.cand, winner.mmsi, winner.rank)
		res := vessel.MatchResult{
			VesselID:   winner.cand.ID,
			Tier:       vessel.TierIMO,
			Confidence: vessel.TierIMO.Confidence(),
		}
		return p.applyMatch(ctx, tx, r, i, cands, res, srcTrust)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	cands.add(vessel.Candidate{
		ID:   parsed,
		Name: f.Name,
		IMO:  f.IMO,
		IRCS: f.IRCS,
		Flag: f.Flag,
	}, f.MMSI, srcTrust)

	if err := p.linkObservation(
		ctx, tx, r, i, id, nil, nil, srcTrust,
	); err != nil {
		return err
	}
	r.facts[i].created = true
	r.report.Created++
	return nil
}

// linkObservation performs the writes every resolved fact needs: the
// vessel_sources upsert and the fact's back-link to the vessel.
// first_seen is written once and never touched again; last_seen only
// moves forward.
func (p *importer) linkObservation(
	ctx context.Context,
	tx pgx.Tx,
	r *run,
	i int,
	vid string,
	tier *vessel.Tier,
	confidence *float64,
	srcTrust float64,
) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO vessel_sources
		   (vessel_id, source_id, first_seen, last_seen, active, trust)
		 VALUES ($1, $2, $3, $3, TRUE, $4)
		 ON CONFLICT (vessel_id, source_id) DO UPDATE
		   SET last_seen = GREATEST(vessel_sources.last_seen, EXCLUDED.last_seen),
		       active = TRUE,
		       trust = EXCLUDED.trust`,
		vid, r.sourceID, r.reportDate, srcTrust,
	)
	if err != nil {
		return err
	}

	var tierVal *int16
	if tier != nil {
		v := int16(*tier)
		tierVal = &v
	}
	_, err = tx.Exec(ctx,
		`UPDATE vessel_intelligence
		 SET vessel_id = $1, match_tier = $2, match_confidence = $3
		 WHERE id = $4`,
		vid, tierVal, confidence, r.facts[i].id,
	)
	if err != nil {
		return err
	}

	r.facts[i].vesselID = vid
	r.touched[vid] = true
	return nil
}

// updateCanonicals writes refined canonical fields inside a savepoint.
// An IMO uniqueness conflict skips the refinement instead of aborting
// the chunk: the match stands, only the identity merge is dropped.
func updateCanonicals(
	ctx context.Context,
	tx pgx.Tx,
	id string,
	c canonical,
) (bool, error) {
	inner, err := tx.Begin(ctx)
	if err != nil {
		return false, err
	}
	_, err = inner.Exec(ctx,
		`UPDATE vessels
		 SET name = $1, imo = $2, ircs = $3, mmsi = $4, flag = $5,
		     canonical_rank = $6, updated_at = NOW()
		 WHERE id = $7`,
		c.name, c.imo, c.ircs, c.mmsi, c.flag, c.rank, id,
	)
	if err != nil {
		inner.Rollback(ctx)
		if isUniqueViolation(err) {
			slog.Warn("Skipped canonical refinement, IMO already taken",
				"vessel", id, "imo", c.imo)
			return false, nil
		}
		return false, err
	}
	return true, inner.Commit(ctx)
}

// insertVessel creates a canonical vessel inside a savepoint and
// reports an IMO uniqueness conflict instead of failing.
func insertVessel(
	ctx context.Context,
	tx pgx.Tx,
	id string,
	f vessel.Fact,
	rank float64,
) (bool, error) {
	inner, err := tx.Begin(ctx)
	if err != nil {
		return false, err
	}
	_, err = inner.Exec(ctx,
		`INSERT INTO vessels
		   (id, name, imo, ircs, mmsi, flag, canonical_rank, trust,
		    corroboration, cross_confirmed, training_eligible,
		    created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, FALSE, FALSE,
		         NOW(), NOW())`,
		id, f.Name, f.IMO, f.IRCS, f.MMSI, f.Flag, rank,
	)
	if err != nil {
		inner.Rollback(ctx)
		if isUniqueViolation(err) {
			return true, nil
		}
		return false, err
	}
	return false, inner.Commit(ctx)
}

type loadedVessel struct {
	cand vessel.Candidate
	mmsi string
	rank float64
}

func loadVesselByIMO(
	ctx context.Context,
	tx pgx.Tx,
	imo string,
) (loadedVessel, error) {
	var res loadedVessel
	var idStr string
	err := tx.QueryRow(ctx,
		`SELECT id, name, imo, ircs, mmsi, flag, canonical_rank
		 FROM vessels WHERE imo = $1`,
		imo,
	).Scan(&idStr, &res.cand.Name, &res.cand.IMO, &res.cand.IRCS,
		&res.mmsi, &res.cand.Flag, &res.rank)
	if err != nil {
		return res, err
	}
	res.cand.ID, err = uuid.Parse(idStr)
	return res, err
}

// loadCandidates pulls every vessel a fact in the chunk could match at
// any tier. Over-selection is harmless; the cascade compares exactly.
func loadCandidates(
	ctx context.Context,
	tx pgx.Tx,
	facts []factRow,
) (*candSet, error) {
	var imos, ircss, ircsFlags, names, nameFlags []string
	for _, fr := range facts {
		f := fr.fact
		if f.IMO != "" {
			imos = append(imos, f.IMO)
		}
		if f.IRCS != "" {
			ircss = append(ircss, f.IRCS)
			ircsFlags = append(ircsFlags, f.Flag)
		}
		if f.Name != "" && f.Flag != "" {
			names = append(names, f.Name)
			nameFlags = append(nameFlags, f.Flag)
		}
	}

	cs := newCandSet()
	const sel = `SELECT id, name, imo, ircs, mmsi, flag, canonical_rank
	             FROM vessels `

	if len(imos) > 0 {
		rows, err := tx.Query(ctx, sel+`WHERE imo = ANY($1)`, imos)
		if err != nil {
			return nil, err
		}
		if err = scanCandidates(rows, cs); err != nil {
			return nil, err
		}
	}
	if len(ircss) > 0 {
		rows, err := tx.Query(ctx,
			sel+`WHERE ircs = ANY($1) AND flag = ANY($2)`,
			ircss, ircsFlags,
		)
		if err != nil {
			return nil, err
		}
		if err = scanCandidates(rows, cs); err != nil {
			return nil, err
		}
	}
	if len(names) > 0 {
		rows, err := tx.Query(ctx,
			sel+`WHERE name = ANY($1) AND flag = ANY($2)`,
			names, nameFlags,
		)
		if err != nil {
			return nil, err
		}
		if err = scanCandidates(rows, cs); err != nil {
			return nil, err
		}
	}
	return cs, nil
}

func scanCandidates(rows pgx.Rows, cs *candSet) error {
	defer rows.Close()
	for rows.Next() {
		var idStr, name, imo, ircs, mmsi, flag string
		var rank float64
		err := rows.Scan(&idStr, &name, &imo, &ircs, &mmsi, &flag, &rank)
		if err != nil {
			return err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return err
		}
		cs.add(vessel.Candidate{
			ID: id, Name: name, IMO: imo, IRCS: ircs, Flag: flag,
		}, mmsi, rank)
	}
	return rows.Err()
}

// lockKeys returns the sorted, deduplicated advisory lock keys for a
// chunk. The key is the strongest identifier a fact carries, so two
// imports observing the same hull serialize on the same lock.
func lockKeys(facts []factRow) []string {
	seen := make(map[string]bool)
	for _, fr := range facts {
		if key := lockKey(fr.fact); key != "" {
			seen[key] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func lockKey(f vessel.Fact) string {
	switch {
	case f.IMO != "":
		return "imo:" + f.IMO
	case f.IRCS != "":
		return "ircs:" + f.IRCS + ":" + f.Flag
	case f.Name != "" && f.Flag != "":
		return "nf:" + f.Name + ":" + f.Flag
	}
	return ""
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
