package vessel

import (
	"github.com/google/uuid"
)

// Tier identifies which identifier combination linked a fact to a
// canonical vessel. Lower tiers use stronger identifiers.
type Tier int16

const (
	TierNone Tier = iota
	// TierIMO matches on the IMO number alone.
	TierIMO
	// TierIRCSNameFlag matches on call sign, name and flag together.
	TierIRCSNameFlag
	// TierIRCSFlag matches on call sign and flag.
	TierIRCSFlag
	// TierNameFlag matches on name and flag, the weakest accepted pair.
	TierNameFlag
)

// tierCascade is the evaluation order. Confidence strictly decreases
// along it.
var tierCascade = []Tier{TierIMO, TierIRCSNameFlag, TierIRCSFlag, TierNameFlag}

// Confidence returns the match confidence assigned to links made at
// this tier.
func (t Tier) Confidence() float64 {
	switch t {
	case TierIMO:
		return 1.0
	case TierIRCSNameFlag:
		return 0.9
	case TierIRCSFlag:
		return 0.75
	case TierNameFlag:
		return 0.6
	}
	return 0
}

func (t Tier) String() string {
	switch t {
	case TierIMO:
		return "imo"
	case TierIRCSNameFlag:
		return "ircs+name+flag"
	case TierIRCSFlag:
		return "ircs+flag"
	case TierNameFlag:
		return "name+flag"
	}
	return "none"
}

// Candidate is a canonical vessel loaded for matching. Identity fields
// are stored in normalized form, so comparisons are plain equality.
type Candidate struct {
	ID   uuid.UUID
	Name string
	IMO  string
	IRCS string
	Flag string
}

// MatchResult links one fact to one canonical vessel. When no link was
// made, Ambiguous distinguishes a cascade that kept finding several
// candidates from one that found none.
type MatchResult struct {
	VesselID   uuid.UUID
	Tier       Tier
	Confidence float64
	Ambiguous  bool
}

// Match runs the tier cascade over the candidates. A tier links only
// when exactly one candidate satisfies it; zero or several candidates
// hand the decision to the next tier. Candidates must be unique by ID.
func Match(f Fact, cands []Candidate) (MatchResult, bool) {
	var ambiguous bool
	for _, t := range tierCascade {
		var hit uuid.UUID
		var n int
		for _, c := range cands {
			if tierEqual(t, f, c) {
				hit = c.ID
				n++
			}
		}
		switch n {
		case 0:
		case 1:
			return MatchResult{
				VesselID:   hit,
				Tier:       t,
				Confidence: t.Confidence(),
			}, true
		default:
			ambiguous = true
		}
	}
	return MatchResult{Ambiguous: ambiguous}, false
}

func tierEqual(t Tier, f Fact, c Candidate) bool {
	switch t {
	case TierIMO:
		return f.IMO != "" && f.IMO == c.IMO
	case TierIRCSNameFlag:
		return f.IRCS != "" && f.Name != "" && f.Flag != "" &&
			f.IRCS == c.IRCS && f.Name == c.Name && f.Flag == c.Flag
	case TierIRCSFlag:
		return f.IRCS != "" && f.Flag != "" &&
			f.IRCS == c.IRCS && f.Flag == c.Flag
	case TierNameFlag:
		return f.Name != "" && f.Flag != "" &&
			f.Name == c.Name && f.Flag == c.Flag
	}
	return false
}
