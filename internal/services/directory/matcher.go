package directory

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/talentboard/profiledir/internal/model"
)

// designators are club-type tokens ignored when comparing names,
// so "FC Example" and "Example SC" share the key "example".
var designators = map[string]struct{}{
	"fc": {}, "sc": {}, "vc": {}, "vbc": {}, "tv": {}, "bc": {}, "hc": {},
	"sv": {}, "sg": {}, "ac": {}, "as": {}, "us": {}, "club": {},
}

// minPartial is the shortest query that may match as a prefix or substring
const minPartial = 3

// MatchKind describes how a free-text name matched a directory record
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExact
	MatchKey
	MatchPartial
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchKey:
		return "key"
	case MatchPartial:
		return "partial"
	}
	return "none"
}

// Match is the result of resolving a free-text club name.
// Club is nil for external entries, in which case Name holds the original text.
type Match struct {
	Club *model.Club
	Kind MatchKind
	Name string
}

// External reports whether no canonical club matched
func (m Match) External() bool {
	return m.Club == nil
}

type form struct {
	folded string
	key    string
}

type indexed struct {
	nameFolded string
	forms      []form // name first, then aliases
}

// Directory is an immutable, indexed snapshot of the canonical club list
type Directory struct {
	clubs []model.Club
	index []indexed
	byID  map[model.ClubID]int
}

// NewDirectory indexes clubs. Order is kept and used as the final tie-break.
func NewDirectory(clubs []model.Club) *Directory {
	d := &Directory{
		clubs: make([]model.Club, len(clubs)),
		index: make([]indexed, len(clubs)),
		byID:  make(map[model.ClubID]int, len(clubs)),
	}
	for i, c := range clubs {
		c.Aliases = append([]string(nil), c.Aliases...)
		d.clubs[i] = c
		d.byID[c.ID] = i

		nf := Fold(c.Name)
		ix := indexed{nameFolded: nf, forms: []form{{folded: nf, key: key(nf)}}}
		for _, a := range c.Aliases {
			af := Fold(a)
			if af == "" {
				continue
			}
			ix.forms = append(ix.forms, form{folded: af, key: key(af)})
		}
		d.index[i] = ix
	}
	return d
}

// Len returns the number of clubs in the directory
func (d *Directory) Len() int {
	return len(d.clubs)
}

// Clubs returns a copy of the club list in directory order
func (d *Directory) Clubs() []model.Club {
	return append([]model.Club(nil), d.clubs...)
}

// Get looks a club up by id
func (d *Directory) Get(id model.ClubID) (model.Club, bool) {
	i, ok := d.byID[id]
	if !ok {
		return model.Club{}, false
	}
	return d.clubs[i], true
}

type scored struct {
	idx       int
	exactName bool
	kind      MatchKind
	distance  int
}

// better orders candidates: exact name equality, then edit distance, then directory order
func (a scored) better(b scored) bool {
	if a.exactName != b.exactName {
		return a.exactName
	}
	if a.distance != b.distance {
		return a.distance < b.distance
	}
	return a.idx < b.idx
}

// Match resolves a free-text name against club names and aliases, case-insensitively.
// Exact, designator-insensitive and prefix/substring matches all count.
func (d *Directory) Match(name string) Match {
	best, ok := d.best(name)
	if !ok {
		return Match{Kind: MatchNone, Name: strings.TrimSpace(name)}
	}
	club := d.clubs[best.idx]
	return Match{Club: &club, Kind: best.kind, Name: club.Name}
}

// Search returns up to limit clubs matching query, best first
func (d *Directory) Search(query string, limit int) []model.Club {
	qf := Fold(query)
	if qf == "" {
		return nil
	}
	qk := key(qf)

	var hits []scored
	for i := range d.index {
		if s, ok := d.score(i, qf, qk); ok {
			hits = append(hits, s)
		}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].better(hits[b])
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]model.Club, len(hits))
	for i, h := range hits {
		out[i] = d.clubs[h.idx]
	}
	return out
}

func (d *Directory) best(name string) (scored, bool) {
	qf := Fold(name)
	if qf == "" {
		return scored{}, false
	}
	qk := key(qf)

	var best scored
	found := false
	for i := range d.index {
		s, ok := d.score(i, qf, qk)
		if !ok {
			continue
		}
		if !found || s.better(best) {
			best = s
			found = true
		}
	}
	return best, found
}

// score returns the best-scoring form of club i for the folded query
func (d *Directory) score(i int, qf, qk string) (scored, bool) {
	ix := d.index[i]
	var best scored
	found := false
	for _, f := range ix.forms {
		kind := compare(qf, qk, f)
		if kind == MatchNone {
			continue
		}
		s := scored{
			idx:       i,
			exactName: qf == ix.nameFolded,
			kind:      kind,
			distance:  levenshtein.ComputeDistance(qf, f.folded),
		}
		if !found || s.better(best) {
			best = s
			found = true
		}
	}
	return best, found
}

func compare(qf, qk string, f form) MatchKind {
	switch {
	case qf == f.folded:
		return MatchExact
	case qk != "" && qk == f.key:
		return MatchKey
	case len(qk) >= minPartial && strings.Contains(f.key, qk):
		return MatchPartial
	case len(qk) >= minPartial && strings.Contains(f.folded, qf):
		return MatchPartial
	}
	return MatchNone
}

// Fold lower-cases s, strips diacritics and punctuation and collapses whitespace.
// "Zürich-Nord  VBC" folds to "zurich nord vbc".
func Fold(s string) string {
	// Transformers carry state, so each call builds its own chain
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = strings.ToLower(s)
	}
	out = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, out)
	return strings.Join(strings.Fields(out), " ")
}

// key drops club-type designators from a folded name
func key(folded string) string {
	tokens := strings.Fields(folded)
	kept := tokens[:0]
	for _, t := range tokens {
		if _, ok := designators[t]; ok {
			continue
		}
		kept = append(kept, t)
	}
	return strings.Join(kept, " ")
}

// ResolveEntries attaches canonical club references to club history entries.
// A nil directory means the directory is unavailable: every entry degrades to
// free text with no canonical reference, and the save goes ahead.
func ResolveEntries(d *Directory, entries []model.ClubHistoryEntry) []model.ClubHistoryEntry {
	out := model.CloneHistory(entries)
	for i := range out {
		out[i] = d.resolve(out[i])
	}
	return out
}

func (d *Directory) resolve(e model.ClubHistoryEntry) model.ClubHistoryEntry {
	if d == nil {
		e.ClubID = nil
		return e
	}
	if e.ClubID != nil {
		if club, ok := d.Get(*e.ClubID); ok {
			e.ClubName = club.Name
			return e
		}
		e.ClubID = nil
	}
	m := d.Match(e.ClubName)
	if m.External() {
		return e
	}
	id := m.Club.ID
	e.ClubID = &id
	e.ClubName = m.Club.Name
	return e
}
