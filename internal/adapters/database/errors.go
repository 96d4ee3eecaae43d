package database

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
)

const uniqueViolation = "23505"

// wrapError maps driver failures onto the application error taxonomy.
// Unique violations become CONFLICT, everything else PERSISTENCE.
func wrapError(message string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return apperrors.NewConflictError(message, err)
	}
	return apperrors.NewPersistenceError(message, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere in the column
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
