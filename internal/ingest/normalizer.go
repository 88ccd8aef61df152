// Package ingest implements the graph construction pipeline: normalization of
// heterogeneous source rows into the canonical entity model, identity
// resolution across sources, transactional batch loading, and the post-load
// integrity sweep.
package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/adrianco/demo-brazil/internal/schema"
	"github.com/adrianco/demo-brazil/internal/types"
)

// SourceRow is one already-parsed record from a source dataset, tagged with
// the source-schema identifier that selects its field mapping.
type SourceRow struct {
	Schema string
	Fields map[string]string
}

// RecordKind identifies which entity a normalized record describes.
type RecordKind string

const (
	KindPlayer      RecordKind = "player"
	KindTeam        RecordKind = "team"
	KindMatch       RecordKind = "match"
	KindCompetition RecordKind = "competition"
	KindStadium     RecordKind = "stadium"
	KindCoach       RecordKind = "coach"
	KindTransfer    RecordKind = "transfer"
)

// Record is the canonical form every source row is normalized into.
// Which fields are populated depends on Kind. Pointer fields are nil when
// the source carried a missing-value sentinel; that absence is explicit and
// survives into the graph as an omitted property, never a zero value.
type Record struct {
	Kind RecordKind

	// Common entity fields
	Name string

	// Player
	Position    schema.Position
	BirthDate   *time.Time
	Nationality string
	TeamName    string // current club, drives PLAYS_FOR

	// Team
	Founded *int
	Stadium string // home stadium (team) or venue (match)

	// Competition
	Category schema.CompetitionCategory

	// Stadium
	Capacity *int

	// Match
	Date        *time.Time
	HomeTeam    string
	AwayTeam    string
	HomeScore   int
	AwayScore   int
	Competition string
	Scorers     []string
	Assists     []string

	// Coach
	CoachedTeam string

	// Transfer
	Player   string
	FromTeam string
	ToTeam   string
	Fee      *int64
}

// sentinels are source placeholders that mean "unknown".
var sentinels = map[string]bool{
	"":     true,
	"-":    true,
	"--":   true,
	"?":    true,
	"n/a":  true,
	"na":   true,
	"nan":  true,
	"none": true,
	"null": true,
}

// dateFormats are the source date layouts accepted by the normalizer, tried
// in order. Brazilian sources use day-first layouts.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"02/01/2006",
	"02/01/2006 15:04",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
}

// positionAliases maps source position spellings (English abbreviations and
// Portuguese names) to the canonical enum.
var positionAliases = map[string]schema.Position{
	"goalkeeper": schema.PositionGoalkeeper,
	"gk":         schema.PositionGoalkeeper,
	"goleiro":    schema.PositionGoalkeeper,
	"defender":   schema.PositionDefender,
	"df":         schema.PositionDefender,
	"cb":         schema.PositionDefender,
	"zagueiro":   schema.PositionDefender,
	"lateral":    schema.PositionDefender,
	"midfielder": schema.PositionMidfielder,
	"mf":         schema.PositionMidfielder,
	"cm":         schema.PositionMidfielder,
	"meia":       schema.PositionMidfielder,
	"volante":    schema.PositionMidfielder,
	"forward":    schema.PositionForward,
	"fw":         schema.PositionForward,
	"st":         schema.PositionForward,
	"striker":    schema.PositionForward,
	"atacante":   schema.PositionForward,
}

// clubFormTokens are club legal-form abbreviations stripped from team names
// during canonicalization ("SE Palmeiras", "Santos FC").
var clubFormTokens = map[string]bool{
	"ac": true, "af": true, "ca": true, "cr": true, "ec": true,
	"fc": true, "fbpa": true, "fr": true, "sc": true, "se": true,
	"sd": true, "ad": true,
}

// brazilStateCodes are the two-letter state suffixes that appear as
// locality disambiguators ("Palmeiras-SP", "Botafogo-PB").
var brazilStateCodes = map[string]bool{
	"ac": true, "al": true, "ap": true, "am": true, "ba": true,
	"ce": true, "df": true, "es": true, "go": true, "ma": true,
	"mt": true, "ms": true, "mg": true, "pa": true, "pb": true,
	"pr": true, "pe": true, "pi": true, "rj": true, "rn": true,
	"rs": true, "ro": true, "rr": true, "sc": true, "sp": true,
	"se": true, "to": true,
}

// malformed builds a MALFORMED_RECORD error naming the offending field.
func malformed(field, reason string) *types.Error {
	return types.NewError(types.MALFORMED_RECORD,
		fmt.Sprintf("field %q: %s", field, reason))
}

// IsSentinel reports whether a raw field value is a missing-value marker.
func IsSentinel(value string) bool {
	return sentinels[strings.ToLower(strings.TrimSpace(value))]
}

// ParseDate coerces any accepted source date layout to the internal
// representation. Returns nil for sentinel values.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if IsSentinel(value) {
		return nil, nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unparseable date %q", value)
}

// ParsePosition maps a source position spelling to the canonical enum.
func ParsePosition(value string) (schema.Position, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	if pos, ok := positionAliases[key]; ok {
		return pos, nil
	}
	return "", fmt.Errorf("unknown position %q", value)
}

// collapseSpaces trims and reduces runs of whitespace to single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FoldName lowercases a name and strips diacritics. Fold keys are what
// identity resolution compares and derives ids from, so "Pelé" and "Pele"
// produce the same key while display names keep their accents.
func FoldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(collapseSpaces(folded))
}

// CanonicalTeamName reduces a team-name variant to its canonical display
// form: state suffixes ("-SP") and club legal-form tokens ("SE", "FC") are
// stripped, whitespace is collapsed, and casing is title-normalized per word
// with accents preserved. It is a pure function; identical inputs always
// produce identical outputs.
func CanonicalTeamName(raw string) string {
	name := collapseSpaces(raw)
	if name == "" {
		return ""
	}

	// Strip a trailing state code: "Palmeiras-SP" -> "Palmeiras".
	if idx := strings.LastIndex(name, "-"); idx > 0 {
		suffix := strings.ToLower(strings.TrimSpace(name[idx+1:]))
		if brazilStateCodes[suffix] {
			name = strings.TrimSpace(name[:idx])
		}
	}

	words := strings.Fields(name)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if clubFormTokens[strings.ToLower(w)] {
			continue
		}
		kept = append(kept, titleWord(w))
	}
	if len(kept) == 0 {
		// The whole name was legal-form tokens; keep the original rather
		// than returning an empty canonical name.
		kept = append(kept, titleWord(words[0]))
	}
	return strings.Join(kept, " ")
}

// lowercase particles in Brazilian names ("São Paulo de Piratininga").
var nameParticles = map[string]bool{
	"da": true, "das": true, "de": true, "do": true, "dos": true, "e": true,
}

func titleWord(w string) string {
	lower := strings.ToLower(w)
	if nameParticles[lower] {
		return lower
	}
	r := []rune(lower)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// CanonicalPersonName normalizes a person name: collapsed whitespace,
// title-cased words with Brazilian particles kept lowercase.
func CanonicalPersonName(raw string) string {
	words := strings.Fields(raw)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	// First word is always capitalized even if it is a particle.
	if len(words) > 0 {
		r := []rune(words[0])
		r[0] = unicode.ToUpper(r[0])
		words[0] = string(r)
	}
	return strings.Join(words, " ")
}

// Normalizer canonicalizes raw source rows into Records using per-schema
// field mappings. It performs no I/O and is fully deterministic.
type Normalizer struct {
	mappings map[string]FieldMap
}

// NewNormalizer creates a Normalizer with the built-in source-schema
// mappings plus any extras.
func NewNormalizer(extra ...FieldMap) *Normalizer {
	mappings := make(map[string]FieldMap, len(builtinFieldMaps)+len(extra))
	for _, fm := range builtinFieldMaps {
		mappings[fm.Schema] = fm
	}
	for _, fm := range extra {
		mappings[fm.Schema] = fm
	}
	return &Normalizer{mappings: mappings}
}

// Normalize canonicalizes one source row. Returns MALFORMED_RECORD naming
// the offending field on any violation.
func (n *Normalizer) Normalize(row SourceRow) (Record, error) {
	fm, ok := n.mappings[row.Schema]
	if !ok {
		return Record{}, malformed("schema", fmt.Sprintf("unknown source schema %q", row.Schema))
	}

	get := func(canonical string) string {
		col, ok := fm.Columns[canonical]
		if !ok {
			col = canonical
		}
		return strings.TrimSpace(row.Fields[col])
	}

	switch fm.Kind {
	case KindPlayer:
		return n.normalizePlayer(get)
	case KindTeam:
		return n.normalizeTeam(get)
	case KindMatch:
		return n.normalizeMatch(get)
	case KindCompetition:
		return n.normalizeCompetition(get)
	case KindStadium:
		return n.normalizeStadium(get)
	case KindCoach:
		return n.normalizeCoach(get)
	case KindTransfer:
		return n.normalizeTransfer(get)
	default:
		return Record{}, malformed("schema", fmt.Sprintf("unsupported record kind %q", fm.Kind))
	}
}

func (n *Normalizer) normalizePlayer(get func(string) string) (Record, error) {
	name := get("name")
	if IsSentinel(name) {
		return Record{}, malformed("name", "required")
	}

	pos, err := ParsePosition(get("position"))
	if err != nil {
		return Record{}, malformed("position", err.Error())
	}

	birth, err := ParseDate(get("birth_date"))
	if err != nil {
		return Record{}, malformed("birth_date", err.Error())
	}

	rec := Record{
		Kind:      KindPlayer,
		Name:      CanonicalPersonName(name),
		Position:  pos,
		BirthDate: birth,
	}
	if nat := get("nationality"); !IsSentinel(nat) {
		rec.Nationality = CanonicalPersonName(nat)
	}
	if team := get("team"); !IsSentinel(team) {
		rec.TeamName = CanonicalTeamName(team)
	}
	return rec, nil
}

func (n *Normalizer) normalizeTeam(get func(string) string) (Record, error) {
	name := get("name")
	if IsSentinel(name) {
		return Record{}, malformed("name", "required")
	}

	rec := Record{
		Kind: KindTeam,
		Name: CanonicalTeamName(name),
	}
	if founded := get("founded"); !IsSentinel(founded) {
		year, err := strconv.Atoi(founded)
		if err != nil {
			return Record{}, malformed("founded", fmt.Sprintf("not a year: %q", founded))
		}
		rec.Founded = &year
	}
	if stadium := get("stadium"); !IsSentinel(stadium) {
		rec.Stadium = collapseSpaces(stadium)
	}
	return rec, nil
}

func (n *Normalizer) normalizeMatch(get func(string) string) (Record, error) {
	date, err := ParseDate(get("date"))
	if err != nil {
		return Record{}, malformed("date", err.Error())
	}
	if date == nil {
		return Record{}, malformed("date", "required")
	}

	home := get("home_team")
	away := get("away_team")
	if IsSentinel(home) {
		return Record{}, malformed("home_team", "required")
	}
	if IsSentinel(away) {
		return Record{}, malformed("away_team", "required")
	}

	homeScore, err := parseScore(get("home_score"))
	if err != nil {
		return Record{}, malformed("home_score", err.Error())
	}
	awayScore, err := parseScore(get("away_score"))
	if err != nil {
		return Record{}, malformed("away_score", err.Error())
	}

	rec := Record{
		Kind:      KindMatch,
		Date:      date,
		HomeTeam:  CanonicalTeamName(home),
		AwayTeam:  CanonicalTeamName(away),
		HomeScore: homeScore,
		AwayScore: awayScore,
	}
	if rec.HomeTeam == rec.AwayTeam {
		return Record{}, malformed("away_team", "home and away team must differ")
	}
	if comp := get("competition"); !IsSentinel(comp) {
		rec.Competition = collapseSpaces(comp)
	}
	if stadium := get("stadium"); !IsSentinel(stadium) {
		rec.Stadium = collapseSpaces(stadium)
	}
	rec.Scorers = splitNames(get("scorers"))
	rec.Assists = splitNames(get("assists"))
	return rec, nil
}

func (n *Normalizer) normalizeCompetition(get func(string) string) (Record, error) {
	name := get("name")
	if IsSentinel(name) {
		return Record{}, malformed("name", "required")
	}

	category := schema.CompetitionCategory(strings.ToLower(get("category")))
	if IsSentinel(string(category)) {
		category = schema.CategoryLeague
	}
	if err := category.Validate(); err != nil {
		return Record{}, malformed("category", err.Error())
	}

	return Record{
		Kind:     KindCompetition,
		Name:     collapseSpaces(name),
		Category: category,
	}, nil
}

func (n *Normalizer) normalizeStadium(get func(string) string) (Record, error) {
	name := get("name")
	if IsSentinel(name) {
		return Record{}, malformed("name", "required")
	}

	rec := Record{
		Kind: KindStadium,
		Name: collapseSpaces(name),
	}
	if capacity := get("capacity"); !IsSentinel(capacity) {
		c, err := strconv.Atoi(capacity)
		if err != nil || c < 0 {
			return Record{}, malformed("capacity", fmt.Sprintf("not a capacity: %q", capacity))
		}
		rec.Capacity = &c
	}
	return rec, nil
}

func (n *Normalizer) normalizeCoach(get func(string) string) (Record, error) {
	name := get("name")
	if IsSentinel(name) {
		return Record{}, malformed("name", "required")
	}

	rec := Record{
		Kind: KindCoach,
		Name: CanonicalPersonName(name),
	}
	if team := get("team"); !IsSentinel(team) {
		rec.CoachedTeam = CanonicalTeamName(team)
	}
	return rec, nil
}

func (n *Normalizer) normalizeTransfer(get func(string) string) (Record, error) {
	player := get("player")
	if IsSentinel(player) {
		return Record{}, malformed("player", "required")
	}

	date, err := ParseDate(get("date"))
	if err != nil {
		return Record{}, malformed("date", err.Error())
	}
	if date == nil {
		return Record{}, malformed("date", "required")
	}

	from := get("from_team")
	to := get("to_team")
	if IsSentinel(from) {
		return Record{}, malformed("from_team", "required")
	}
	if IsSentinel(to) {
		return Record{}, malformed("to_team", "required")
	}

	rec := Record{
		Kind:     KindTransfer,
		Player:   CanonicalPersonName(player),
		Date:     date,
		FromTeam: CanonicalTeamName(from),
		ToTeam:   CanonicalTeamName(to),
	}
	if rec.FromTeam == rec.ToTeam {
		return Record{}, malformed("to_team", "source and destination team must differ")
	}
	if fee := get("fee"); !IsSentinel(fee) {
		f, err := strconv.ParseInt(strings.ReplaceAll(fee, ",", ""), 10, 64)
		if err != nil || f < 0 {
			return Record{}, malformed("fee", fmt.Sprintf("not a fee: %q", fee))
		}
		rec.Fee = &f
	}
	return rec, nil
}

func parseScore(value string) (int, error) {
	if IsSentinel(value) {
		return 0, fmt.Errorf("required")
	}
	score, err := strconv.Atoi(value)
	if err != nil || score < 0 {
		return 0, fmt.Errorf("not a score: %q", value)
	}
	return score, nil
}

func splitNames(value string) []string {
	if IsSentinel(value) {
		return nil
	}
	parts := strings.Split(value, ";")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, CanonicalPersonName(p))
		}
	}
	return names
}
