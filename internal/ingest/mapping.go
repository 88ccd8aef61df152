package ingest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FieldMap maps one source schema's column names onto the normalizer's
// canonical field names. Columns not listed fall through under their
// canonical name, so a map only has to name the columns that differ.
type FieldMap struct {
	// Schema is the source-schema identifier carried on each SourceRow.
	Schema string `yaml:"schema"`

	// Kind selects which entity the rows of this schema describe.
	Kind RecordKind `yaml:"kind"`

	// Columns maps canonical field name -> source column name.
	Columns map[string]string `yaml:"columns"`
}

// builtinFieldMaps covers the source datasets the pipeline ships with.
// Additional per-deployment schemas load from YAML via LoadFieldMaps.
var builtinFieldMaps = []FieldMap{
	{
		Schema: "kaggle_players",
		Kind:   KindPlayer,
		Columns: map[string]string{
			"name":        "player_name",
			"position":    "position",
			"birth_date":  "date_of_birth",
			"nationality": "nationality",
			"team":        "current_club",
		},
	},
	{
		Schema: "kaggle_teams",
		Kind:   KindTeam,
		Columns: map[string]string{
			"name":    "team_name",
			"founded": "founded_year",
			"stadium": "home_stadium",
		},
	},
	{
		Schema: "kaggle_matches",
		Kind:   KindMatch,
		Columns: map[string]string{
			"date":        "datetime",
			"home_team":   "home_team",
			"away_team":   "away_team",
			"home_score":  "home_goal",
			"away_score":  "away_goal",
			"competition": "tournament",
			"stadium":     "stadium",
			"scorers":     "goal_scorers",
			"assists":     "assisters",
		},
	},
	{
		Schema: "fbref_matches",
		Kind:   KindMatch,
		Columns: map[string]string{
			"date":        "match_date",
			"home_team":   "home",
			"away_team":   "away",
			"home_score":  "hg",
			"away_score":  "ag",
			"competition": "comp",
			"stadium":     "venue",
		},
	},
	{
		Schema: "cbf_competitions",
		Kind:   KindCompetition,
		Columns: map[string]string{
			"name":     "competition_name",
			"category": "competition_type",
		},
	},
	{
		Schema: "cbf_stadiums",
		Kind:   KindStadium,
		Columns: map[string]string{
			"name":     "stadium_name",
			"capacity": "capacity",
		},
	},
	{
		Schema: "cbf_coaches",
		Kind:   KindCoach,
		Columns: map[string]string{
			"name": "coach_name",
			"team": "team_name",
		},
	},
	{
		Schema: "transfermarkt_transfers",
		Kind:   KindTransfer,
		Columns: map[string]string{
			"player":    "player_name",
			"date":      "transfer_date",
			"from_team": "club_left",
			"to_team":   "club_joined",
			"fee":       "transfer_fee",
		},
	},
}

// LoadFieldMaps reads additional field maps from a YAML file:
//
//	- schema: my_source_matches
//	  kind: match
//	  columns:
//	    date: game_date
//	    home_team: mandante
//	    away_team: visitante
func LoadFieldMaps(path string) ([]FieldMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read field maps: %w", err)
	}

	var maps []FieldMap
	if err := yaml.Unmarshal(data, &maps); err != nil {
		return nil, fmt.Errorf("failed to parse field maps: %w", err)
	}

	for i, fm := range maps {
		if fm.Schema == "" {
			return nil, fmt.Errorf("field map %d: schema is required", i)
		}
		switch fm.Kind {
		case KindPlayer, KindTeam, KindMatch, KindCompetition, KindStadium, KindCoach, KindTransfer:
		default:
			return nil, fmt.Errorf("field map %q: unknown kind %q", fm.Schema, fm.Kind)
		}
	}
	return maps, nil
}
