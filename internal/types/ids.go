package types

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID is a custom type that wraps a UUID string.
// It provides type-safe UUID generation, validation, and serialization.
type ID string

// Entity ID namespaces. Each entity label derives its identifiers from its own
// UUIDv5 namespace so that identical natural keys under different labels never
// collide.
var (
	nsRoot        = uuid.MustParse("7b1f48a2-9c33-5d1e-8f24-b60c1a2e9d07")
	nsPlayer      = uuid.NewSHA1(nsRoot, []byte("player"))
	nsTeam        = uuid.NewSHA1(nsRoot, []byte("team"))
	nsMatch       = uuid.NewSHA1(nsRoot, []byte("match"))
	nsCompetition = uuid.NewSHA1(nsRoot, []byte("competition"))
	nsStadium     = uuid.NewSHA1(nsRoot, []byte("stadium"))
	nsCoach       = uuid.NewSHA1(nsRoot, []byte("coach"))
	nsTransfer    = uuid.NewSHA1(nsRoot, []byte("transfer"))
)

var namespaceByKind = map[string]uuid.UUID{
	"player":      nsPlayer,
	"team":        nsTeam,
	"match":       nsMatch,
	"competition": nsCompetition,
	"stadium":     nsStadium,
	"coach":       nsCoach,
	"transfer":    nsTransfer,
}

// NewID generates a new random UUIDv4 ID.
// Used for ephemeral identifiers only; entity ids must use DeriveID.
func NewID() ID {
	return ID(uuid.New().String())
}

// DeriveID deterministically derives an entity ID from its kind and natural
// key parts. The same kind and parts always yield the same ID, which is what
// makes re-ingestion an upsert rather than a duplicate insert.
func DeriveID(kind string, parts ...string) ID {
	ns, ok := namespaceByKind[kind]
	if !ok {
		ns = uuid.NewSHA1(nsRoot, []byte(kind))
	}
	key := strings.Join(parts, "|")
	return ID(uuid.NewSHA1(ns, []byte(key)).String())
}

// ParseID parses and validates a string as a UUID, returning an ID.
// It returns an error if the string is not a valid UUID format.
func ParseID(s string) (ID, error) {
	if s == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}

	parsedUUID, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid UUID format: %w", err)
	}

	return ID(parsedUUID.String()), nil
}

// Validate checks if the ID is a valid UUID.
// Returns an error if the ID is invalid or empty.
func (id ID) Validate() error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}

	_, err := uuid.Parse(string(id))
	if err != nil {
		return fmt.Errorf("invalid UUID format: %w", err)
	}

	return nil
}

// String returns the string representation of the ID.
func (id ID) String() string {
	return string(id)
}

// IsZero checks if the ID is empty or zero-valued.
func (id ID) IsZero() bool {
	return id == ""
}
