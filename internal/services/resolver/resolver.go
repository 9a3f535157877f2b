// Package resolver decides which locally known account a fetched transaction
// record belongs to. The account id embedded on a record does not reliably
// match the id the fetch was filtered by, so this is a defensive layer with
// ordered fallback tiers, not a correctness guarantee.
package resolver

import "strings"

// Tier identifies which heuristic level produced a match, so callers and tests
// can tell a confident id match apart from a loose substring one.
type Tier int

const (
	TierNone Tier = iota
	TierID
	TierName
	TierNameContains
	TierCode
)

func (t Tier) String() string {
	switch t {
	case TierID:
		return "id"
	case TierName:
		return "name"
	case TierNameContains:
		return "name_contains"
	case TierCode:
		return "code"
	default:
		return "none"
	}
}

// Target is the logical account a sync run is collecting for.
type Target struct {
	ID   string
	Name string
	Code string
}

// Embedded is the account reference carried on a fetched transaction record.
type Embedded struct {
	ID   string
	Name string
	Code string
}

// Match applies the tiers in order, first hit wins:
//  1. exact id equality (authoritative when present)
//  2. exact name equality
//  3. substring containment on name, either direction, which handles
//     provider-side name variants ("The Forest" vs "Forest Account") at the
//     cost of known over-matches ("Forestry Ltd" also passes)
//  4. exact classification code equality
func Match(target Target, rec Embedded) (Tier, bool) {
	if id := fold(target.ID); id != "" && id == fold(rec.ID) {
		return TierID, true
	}
	tname, rname := foldName(target.Name), foldName(rec.Name)
	if tname != "" && tname == rname {
		return TierName, true
	}
	if tname != "" && rname != "" &&
		(strings.Contains(rname, tname) || strings.Contains(tname, rname)) {
		return TierNameContains, true
	}
	if code := fold(target.Code); code != "" && code == fold(rec.Code) {
		return TierCode, true
	}
	return TierNone, false
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// foldName additionally drops a leading article so "The Forest" and "Forest
// Account" land on a common stem for the containment tier.
func foldName(s string) string {
	n := fold(s)
	n = strings.TrimPrefix(n, "the ")
	return strings.TrimSpace(n)
}
