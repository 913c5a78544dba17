package importer

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-cli/internal/model"
)

// RefSource supplies the reference tables an import session resolves
// free-text column values against.
type RefSource interface {
	ListCountries(ctx context.Context) ([]model.Country, error)
	ListStatuses(ctx context.Context) ([]model.Status, error)
	ListAssignableUsers(ctx context.Context) ([]model.User, error)
}

// RefSet holds the reference tables for one import session. All resolution
// is exact case-insensitive matching: ambiguous input stays unresolved and
// is surfaced in the preview rather than guessed.
type RefSet struct {
	Countries []model.Country
	Statuses  []model.Status // ascending sort order
	Owners    []model.User
}

// LoadRefs fetches countries, statuses, and assignable owners with the
// three requests issued concurrently. Statuses come back sorted so the
// first entry is the default for unresolved status text.
func LoadRefs(ctx context.Context, src RefSource) (*RefSet, error) {
	refs := &RefSet{}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		countries, err := src.ListCountries(gCtx)
		if err != nil {
			return eris.Wrap(err, "importer: list countries")
		}
		refs.Countries = countries
		return nil
	})
	g.Go(func() error {
		statuses, err := src.ListStatuses(gCtx)
		if err != nil {
			return eris.Wrap(err, "importer: list statuses")
		}
		refs.Statuses = statuses
		return nil
	})
	g.Go(func() error {
		owners, err := src.ListAssignableUsers(gCtx)
		if err != nil {
			return eris.Wrap(err, "importer: list assignable users")
		}
		refs.Owners = owners
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(refs.Statuses, func(i, j int) bool {
		return refs.Statuses[i].SortOrder < refs.Statuses[j].SortOrder
	})

	return refs, nil
}

// ResolveCountry matches text against country names first, then codes.
// Returns nil when nothing matches.
func (r *RefSet) ResolveCountry(text string) *string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	for i := range r.Countries {
		if strings.EqualFold(r.Countries[i].Name, text) {
			return &r.Countries[i].ID
		}
	}
	for i := range r.Countries {
		if strings.EqualFold(r.Countries[i].Code, text) {
			return &r.Countries[i].ID
		}
	}
	return nil
}

// ResolveStatus matches text against status names, falling back to the
// first status in sort order. Nil only when no statuses exist at all.
func (r *RefSet) ResolveStatus(text string) *string {
	text = strings.TrimSpace(text)
	for i := range r.Statuses {
		if text != "" && strings.EqualFold(r.Statuses[i].Name, text) {
			return &r.Statuses[i].ID
		}
	}
	if len(r.Statuses) == 0 {
		return nil
	}
	return &r.Statuses[0].ID
}

// ResolveOwner matches text against the full names of assignable users.
// No fuzzy matching: a nickname or typo resolves to unassigned (nil).
func (r *RefSet) ResolveOwner(text string) *string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	for i := range r.Owners {
		if strings.EqualFold(r.Owners[i].FullName, text) {
			return &r.Owners[i].ID
		}
	}
	return nil
}

// CountryName maps a resolved country ID back to its display name.
func (r *RefSet) CountryName(id *string) string {
	if id == nil {
		return ""
	}
	for i := range r.Countries {
		if r.Countries[i].ID == *id {
			return r.Countries[i].Name
		}
	}
	return ""
}

// StatusName maps a resolved status ID back to its display name.
func (r *RefSet) StatusName(id *string) string {
	if id == nil {
		return ""
	}
	for i := range r.Statuses {
		if r.Statuses[i].ID == *id {
			return r.Statuses[i].Name
		}
	}
	return ""
}

// OwnerName maps a resolved owner ID back to the user's full name.
func (r *RefSet) OwnerName(id *string) string {
	if id == nil {
		return ""
	}
	for i := range r.Owners {
		if r.Owners[i].ID == *id {
			return r.Owners[i].FullName
		}
	}
	return ""
}
