// Package schema defines the entity model for the Brazilian soccer knowledge
// graph: node labels, relationship types, and the strongly-typed entity
// structs the ingestion pipeline loads into the store.
package schema

import (
	"fmt"
	"time"

	"github.com/adrianco/demo-brazil/internal/types"
)

// Node labels
const (
	LabelPlayer      = "Player"
	LabelTeam        = "Team"
	LabelMatch       = "Match"
	LabelCompetition = "Competition"
	LabelStadium     = "Stadium"
	LabelCoach       = "Coach"
	LabelTransfer    = "Transfer"
)

// Relationship types
const (
	RelPlaysFor   = "PLAYS_FOR"
	RelHomeTeam   = "HOME_TEAM"
	RelAwayTeam   = "AWAY_TEAM"
	RelPartOf     = "PART_OF"
	RelHostedAt   = "HOSTED_AT"
	RelScoredIn   = "SCORED_IN"
	RelAssistedIn = "ASSISTED_IN"
	RelCoachedBy   = "COACHED_BY"
	RelTransferred = "TRANSFERRED"
	RelFromTeam    = "FROM_TEAM"
	RelToTeam      = "TO_TEAM"
)

// relEndpoints declares the required (from, to) labels per relationship
// type. The loader uses it to build label-qualified MERGE statements and the
// integrity validator uses it for direction checks.
var relEndpoints = map[string][2]string{
	RelPlaysFor:    {LabelPlayer, LabelTeam},
	RelHomeTeam:    {LabelMatch, LabelTeam},
	RelAwayTeam:    {LabelMatch, LabelTeam},
	RelPartOf:      {LabelMatch, LabelCompetition},
	RelHostedAt:    {LabelMatch, LabelStadium},
	RelScoredIn:    {LabelPlayer, LabelMatch},
	RelAssistedIn:  {LabelPlayer, LabelMatch},
	RelCoachedBy:   {LabelTeam, LabelCoach},
	RelTransferred: {LabelPlayer, LabelTransfer},
	RelFromTeam:    {LabelTransfer, LabelTeam},
	RelToTeam:      {LabelTransfer, LabelTeam},
}

// RelEndpoints returns the required from/to node labels for a relationship
// type. ok is false for unknown types.
func RelEndpoints(relType string) (from, to string, ok bool) {
	ep, ok := relEndpoints[relType]
	if !ok {
		return "", "", false
	}
	return ep[0], ep[1], true
}

// RelTypes returns all declared relationship types in a stable order.
func RelTypes() []string {
	return []string{
		RelPlaysFor, RelHomeTeam, RelAwayTeam, RelPartOf, RelHostedAt,
		RelScoredIn, RelAssistedIn, RelCoachedBy, RelTransferred,
		RelFromTeam, RelToTeam,
	}
}

// DateFormat is the single internal date representation. All source date
// variants are coerced to this form before loading.
const DateFormat = "2006-01-02"

// Position is a player's field position.
type Position string

const (
	PositionGoalkeeper Position = "Goalkeeper"
	PositionDefender   Position = "Defender"
	PositionMidfielder Position = "Midfielder"
	PositionForward    Position = "Forward"
)

// String returns the string representation of Position.
func (p Position) String() string {
	return string(p)
}

// Validate checks if the Position is a valid value.
func (p Position) Validate() error {
	switch p {
	case PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionForward:
		return nil
	default:
		return fmt.Errorf("invalid position: %s", p)
	}
}

// GraphNode is implemented by every entity that can be loaded into the store.
// IdentifyingProperties drive the MERGE clause; Properties carry the full
// property set written on create or update.
type GraphNode interface {
	// NodeType returns the node label for this entity.
	NodeType() string

	// IdentifyingProperties returns the properties that uniquely identify
	// this node. Used as MERGE keys; must be non-empty and stable.
	IdentifyingProperties() map[string]any

	// Properties returns all properties to set on the node.
	Properties() map[string]any
}

// Player is a soccer player node.
// BirthDate and Nationality are nil/empty when the source did not provide
// them; an absent value is an explicit unknown, never a zero date.
type Player struct {
	ID          types.ID
	Name        string
	Position    Position
	BirthDate   *time.Time
	Nationality string
}

func (p Player) NodeType() string { return LabelPlayer }

func (p Player) IdentifyingProperties() map[string]any {
	return map[string]any{"id": p.ID.String()}
}

func (p Player) Properties() map[string]any {
	props := map[string]any{
		"id":   p.ID.String(),
		"name": p.Name,
	}
	if p.Position != "" {
		props["position"] = p.Position.String()
	}
	if p.BirthDate != nil {
		props["birth_date"] = p.BirthDate.Format(DateFormat)
	}
	if p.Nationality != "" {
		props["nationality"] = p.Nationality
	}
	return props
}

// Team is a soccer club node. Name is the canonical name; all source
// spelling variants of one club resolve to the same node.
type Team struct {
	ID        types.ID
	Name      string
	Founded   *int
	StadiumID types.ID
}

func (t Team) NodeType() string { return LabelTeam }

func (t Team) IdentifyingProperties() map[string]any {
	return map[string]any{"id": t.ID.String()}
}

func (t Team) Properties() map[string]any {
	props := map[string]any{
		"id":   t.ID.String(),
		"name": t.Name,
	}
	if t.Founded != nil {
		props["founded"] = *t.Founded
	}
	if !t.StadiumID.IsZero() {
		props["stadium_id"] = t.StadiumID.String()
	}
	return props
}

// Match is a played match node. HomeTeamID and AwayTeamID must be distinct.
type Match struct {
	ID            types.ID
	Date          time.Time
	HomeTeamID    types.ID
	AwayTeamID    types.ID
	HomeScore     int
	AwayScore     int
	CompetitionID types.ID
	StadiumID     types.ID
}

func (m Match) NodeType() string { return LabelMatch }

func (m Match) IdentifyingProperties() map[string]any {
	return map[string]any{"id": m.ID.String()}
}

func (m Match) Properties() map[string]any {
	props := map[string]any{
		"id":         m.ID.String(),
		"date":       m.Date.Format(DateFormat),
		"home_score": m.HomeScore,
		"away_score": m.AwayScore,
	}
	if !m.CompetitionID.IsZero() {
		props["competition_id"] = m.CompetitionID.String()
	}
	return props
}

// Validate checks the distinctness invariant: a match cannot have the same
// team on both sides.
func (m Match) Validate() error {
	if m.HomeTeamID == m.AwayTeamID {
		return fmt.Errorf("match %s: home and away team must differ", m.ID)
	}
	if m.HomeTeamID.IsZero() || m.AwayTeamID.IsZero() {
		return fmt.Errorf("match %s: home and away team are required", m.ID)
	}
	return nil
}

// CompetitionCategory classifies a competition.
type CompetitionCategory string

const (
	CategoryLeague      CompetitionCategory = "league"
	CategoryCup         CompetitionCategory = "cup"
	CategoryContinental CompetitionCategory = "continental"
)

// Validate checks if the CompetitionCategory is a valid value.
func (c CompetitionCategory) Validate() error {
	switch c {
	case CategoryLeague, CategoryCup, CategoryContinental:
		return nil
	default:
		return fmt.Errorf("invalid competition category: %s", c)
	}
}

// Competition is a league, cup, or continental tournament node.
type Competition struct {
	ID       types.ID
	Name     string
	Category CompetitionCategory
}

func (c Competition) NodeType() string { return LabelCompetition }

func (c Competition) IdentifyingProperties() map[string]any {
	return map[string]any{"id": c.ID.String()}
}

func (c Competition) Properties() map[string]any {
	return map[string]any{
		"id":       c.ID.String(),
		"name":     c.Name,
		"category": string(c.Category),
	}
}

// Stadium is a venue node.
type Stadium struct {
	ID       types.ID
	Name     string
	Capacity *int
}

func (s Stadium) NodeType() string { return LabelStadium }

func (s Stadium) IdentifyingProperties() map[string]any {
	return map[string]any{"id": s.ID.String()}
}

func (s Stadium) Properties() map[string]any {
	props := map[string]any{
		"id":   s.ID.String(),
		"name": s.Name,
	}
	if s.Capacity != nil {
		props["capacity"] = *s.Capacity
	}
	return props
}

// Coach is a coach node.
type Coach struct {
	ID   types.ID
	Name string
}

func (c Coach) NodeType() string { return LabelCoach }

func (c Coach) IdentifyingProperties() map[string]any {
	return map[string]any{"id": c.ID.String()}
}

func (c Coach) Properties() map[string]any {
	return map[string]any{
		"id":   c.ID.String(),
		"name": c.Name,
	}
}

// Transfer is a player move between two clubs. FromTeamID and ToTeamID must
// be distinct. Fee is nil when undisclosed.
type Transfer struct {
	ID         types.ID
	PlayerID   types.ID
	FromTeamID types.ID
	ToTeamID   types.ID
	Date       time.Time
	Fee        *int64
}

func (t Transfer) NodeType() string { return LabelTransfer }

func (t Transfer) IdentifyingProperties() map[string]any {
	return map[string]any{"id": t.ID.String()}
}

func (t Transfer) Properties() map[string]any {
	props := map[string]any{
		"id":        t.ID.String(),
		"player_id": t.PlayerID.String(),
		"date":      t.Date.Format(DateFormat),
	}
	if t.Fee != nil {
		props["fee"] = *t.Fee
	}
	return props
}

// Validate checks the distinctness invariant: a transfer cannot start and
// end at the same club.
func (t Transfer) Validate() error {
	if t.FromTeamID == t.ToTeamID {
		return fmt.Errorf("transfer %s: source and destination team must differ", t.ID)
	}
	if t.PlayerID.IsZero() {
		return fmt.Errorf("transfer %s: player is required", t.ID)
	}
	return nil
}

// Relationship is a directed, typed edge between two entities.
type Relationship struct {
	Type   string
	FromID types.ID
	ToID   types.ID
	Props  map[string]any
}

// Key returns the (type, from, to) identity used for edge deduplication.
func (r Relationship) Key() string {
	return r.Type + "|" + r.FromID.String() + "|" + r.ToID.String()
}
