package leave

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// LEAVE CATEGORY
// =============================================================================

// LeaveCategory is the semantic class of a leave type.
type LeaveCategory string

const (
	CategoryPaid     LeaveCategory = "paid"
	CategoryUnpaid   LeaveCategory = "unpaid"
	CategoryRemote   LeaveCategory = "remote"
	CategorySickness LeaveCategory = "sickness"
	CategoryOther    LeaveCategory = "other"
)

// Categories lists every category in display order.
var Categories = []LeaveCategory{CategoryPaid, CategoryUnpaid, CategoryRemote, CategorySickness, CategoryOther}

// ParseCategory validates a category name.
func ParseCategory(s string) (LeaveCategory, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown leave category %q", s)
}

// AutoAllocatable reports whether intelligent mode may assign days to the
// category. Sickness and other are only ever chosen explicitly.
func (c LeaveCategory) AutoAllocatable() bool {
	return c == CategoryPaid || c == CategoryUnpaid || c == CategoryRemote
}

// =============================================================================
// CATEGORY TABLE - Explicit leaveTypeID -> category mapping
// =============================================================================

// CategoryTable maps leave type ids to categories. It is configuration,
// loaded once per snapshot; the allocation path never classifies strings.
type CategoryTable map[string]LeaveCategory

// Category returns the mapped category, CategoryOther when unmapped.
func (t CategoryTable) Category(leaveTypeID string) LeaveCategory {
	if c, ok := t[leaveTypeID]; ok {
		return c
	}
	return CategoryOther
}

// FirstOfCategory returns the first type (in configuration order) mapped to c.
func (t CategoryTable) FirstOfCategory(types []LeaveType, c LeaveCategory) (string, bool) {
	for _, lt := range types {
		if t.Category(lt.ID) == c {
			return lt.ID, true
		}
	}
	return "", false
}

// =============================================================================
// CLASSIFICATION HEURISTIC - Seeding only
// =============================================================================

var categoryKeywords = []struct {
	category LeaveCategory
	keywords []string
}{
	{CategorySickness, []string{"sick", "maladi"}},
	{CategoryUnpaid, []string{"unpaid", "sans", "solde"}},
	{CategoryPaid, []string{"paid", "cong", "cp"}},
	{CategoryRemote, []string{"remote", "tele", "tt"}},
}

// Classify guesses a category from a leave type's name and code using
// case-insensitive, accent-insensitive English and French keywords. Order
// matters: "unpaid" contains "paid" and "congé sans solde" contains "cong".
func Classify(name, code string) LeaveCategory {
	source := foldAccents(strings.ToLower(code + " " + name))
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(source, kw) {
				return entry.category
			}
		}
	}
	return CategoryOther
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// SeedCategoryTable builds a table from leave type names, letting balance
// rows (which also carry a code) refine the guess. Entries already present in
// existing are kept as configured.
func SeedCategoryTable(existing CategoryTable, types []LeaveType, balances []LeaveBalanceItem) CategoryTable {
	table := make(CategoryTable, len(types))
	for _, lt := range types {
		table[lt.ID] = Classify(lt.Name, lt.Code)
	}
	for _, b := range balances {
		code := ""
		if b.Code != nil {
			code = *b.Code
		}
		table[b.LeaveTypeID] = Classify(b.Name, code)
	}
	for id, c := range existing {
		table[id] = c
	}
	return table
}
