package entity

import "time"

// ReferenceItem is an {id, name} pair describing a source or a category.
// Provider is set when the entry comes from the merged catalog.
type ReferenceItem struct {
	ID       string     `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name"`
	Provider ProviderID `json:"provider,omitempty" yaml:"-"`
}

// UserPreferences holds the per-user defaults used to seed search sessions.
type UserPreferences struct {
	UserID              string    `json:"userId"`
	PreferredSources    []string  `json:"preferredSources"`
	PreferredCategories []string  `json:"preferredCategories"`
	PreferredAuthors    []string  `json:"preferredAuthors"`
	DarkMode            bool      `json:"darkMode"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// DefaultPreferences returns the preferences of a user who never saved any.
func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:              userID,
		PreferredSources:    []string{},
		PreferredCategories: []string{},
		PreferredAuthors:    []string{},
	}
}

// Clone returns a deep copy of the preferences.
func (p UserPreferences) Clone() UserPreferences {
	out := p
	out.PreferredSources = nonNil(cloneStrings(p.PreferredSources))
	out.PreferredCategories = nonNil(cloneStrings(p.PreferredCategories))
	out.PreferredAuthors = nonNil(cloneStrings(p.PreferredAuthors))
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
