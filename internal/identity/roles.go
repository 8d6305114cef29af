// Package identity maps platform roles and users onto the bot's own notions
// of staff category and account age.
package identity

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Category is a role the bot treats specially.
type Category int

const (
	CategoryAdmin Category = iota
	CategoryModerator
	CategoryTraineeModerator
	CategoryMuted
	CategoryNoReactions
	CategoryNoRequests
)

// Categories lists every category in lookup order.
var Categories = []Category{
	CategoryAdmin,
	CategoryModerator,
	CategoryTraineeModerator,
	CategoryMuted,
	CategoryNoReactions,
	CategoryNoRequests,
}

// Key is the configuration key for the category.
func (c Category) Key() string {
	switch c {
	case CategoryAdmin:
		return "admin"
	case CategoryModerator:
		return "moderator"
	case CategoryTraineeModerator:
		return "trainee_moderator"
	case CategoryMuted:
		return "muted"
	case CategoryNoReactions:
		return "no_reactions"
	case CategoryNoRequests:
		return "no_requests"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

func (c Category) String() string { return c.Key() }

// ParseCategory is the inverse of Key.
func ParseCategory(key string) (Category, bool) {
	for _, c := range Categories {
		if c.Key() == key {
			return c, true
		}
	}
	return 0, false
}

// RoleSource returns the role snowflake configured for a category, or "".
type RoleSource interface {
	RoleID(c Category) string
}

// RoleTable is a RoleSource backed by a map keyed by category.
type RoleTable map[Category]string

func (t RoleTable) RoleID(c Category) string { return t[c] }

// CategoryOf finds the category configured with roleID. ok is false when no
// category uses it, which is an expected outcome.
func CategoryOf(src RoleSource, roleID string) (Category, bool) {
	if roleID == "" {
		return 0, false
	}
	for _, c := range Categories {
		if src.RoleID(c) == roleID {
			return c, true
		}
	}
	return 0, false
}

// CategoriesOf maps a member's role list to categories, dropping unknown roles.
func CategoriesOf(src RoleSource, roleIDs []string) []Category {
	var out []Category
	for _, id := range roleIDs {
		if c, ok := CategoryOf(src, id); ok {
			out = append(out, c)
		}
	}
	return out
}

const (
	// discordEpoch is 2015-01-01T00:00:00Z in milliseconds.
	discordEpoch   = 1420070400000
	timestampShift = 22

	// NewAccountWindow is how long an account counts as recently created.
	NewAccountWindow = 3 * 24 * time.Hour
)

// CreatedAt derives a user's creation time from their snowflake.
func CreatedAt(userID string) (time.Time, error) {
	id, err := snowflake.ParseString(userID)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse snowflake %q: %w", userID, err)
	}
	ms := id.Int64()>>timestampShift + discordEpoch
	return time.UnixMilli(ms).UTC(), nil
}

// IsRecentlyCreated reports whether the account behind userID is younger than
// NewAccountWindow at now. Unparseable IDs are not recent.
func IsRecentlyCreated(userID string, now time.Time) bool {
	created, err := CreatedAt(userID)
	if err != nil {
		return false
	}
	return IsRecent(created, now)
}

// IsRecent reports whether an account created at created is younger than
// NewAccountWindow at now.
func IsRecent(created, now time.Time) bool {
	return now.Sub(created) < NewAccountWindow
}
