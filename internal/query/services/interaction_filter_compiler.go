package services

import (
	"time"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
)

// CompileScope combines the customer restriction and the date filter into a scope.
// A day expands to [00:00:00.000, 23:59:59.999] UTC.
func CompileScope(match *CustomerMatch, day *time.Time) repositories.InteractionScope {
	var scope repositories.InteractionScope

	if match != nil && match.Restricted {
		scope.Restricted = true
		scope.CustomerIDs = match.IDs
		scope.CustomerNames = match.Names
	}

	if day != nil {
		start, end := entities.DayRange(*day)
		scope.DayStart = &start
		scope.DayEnd = &end
	}

	return scope
}
