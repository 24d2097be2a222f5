// Package normalize converts raw BASIS meeting entries into the canonical
// Meeting record. Only identity and date are required; every optional field
// degrades to an empty value instead of failing the record.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gavelak/gavel-exporter/internal/basis"
	"github.com/gavelak/gavel-exporter/internal/models"
)

// Error reports a raw entry that cannot become a Meeting. Field names the
// missing or malformed required value.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("cannot normalize meeting: %s %s", e.Field, e.Reason)
}

var titleCaser = cases.Title(language.AmericanEnglish)

// dateLayouts covers the date renderings seen across BASIS versions.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// Meeting builds the canonical record from one raw entry. Deterministic:
// the same raw input always yields the same Meeting.
func Meeting(raw basis.Meeting) (models.Meeting, error) {
	date, err := parseDate(raw.Date)
	if err != nil {
		return models.Meeting{}, err
	}

	id := customID(raw, date)
	if id == "" {
		return models.Meeting{}, &Error{Field: "id", Reason: "no chamber, sponsor, or time to derive an identifier from"}
	}

	bills, general := extractBills(raw.Slices.Items)

	m := models.Meeting{
		ID:          id,
		Date:        date,
		StartTime:   strings.TrimSpace(raw.Time),
		EndTime:     strings.TrimSpace(raw.EndTime),
		Title:       buildTitle(raw),
		Location:    strings.TrimSpace(raw.Location),
		Status:      status(raw),
		Description: buildDescription(raw, bills, general),
		Bills:       toBillRefs(bills),
	}
	return m, nil
}

// ShouldSkip reports placeholder entries ("no meeting scheduled") that BASIS
// emits for empty calendar days.
func ShouldSkip(raw basis.Meeting) bool {
	for _, s := range raw.Slices.Items {
		if strings.EqualFold(strings.TrimSpace(s.Highlight), "no meeting scheduled") {
			return true
		}
	}
	return false
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, &Error{Field: "date", Reason: "is missing"}
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, &Error{Field: "date", Reason: fmt.Sprintf("%q is not a calendar date", raw)}
}

// customID derives the stable identifier the downstream schedule joins on:
// chamber and sponsor plus the compacted date and time.
func customID(raw basis.Meeting, date time.Time) string {
	chamber := strings.TrimSpace(raw.Chamber)
	sponsor := strings.TrimSpace(raw.Sponsor)
	clock := strings.ReplaceAll(strings.TrimSpace(raw.Time), ":", "")
	if chamber == "" && sponsor == "" && clock == "" {
		return ""
	}
	return fmt.Sprintf("%s-%s%s%s", chamber, sponsor, date.Format("20060102"), clock)
}

func status(raw basis.Meeting) string {
	if bool(raw.Canceled) {
		return "CANCELED"
	}
	return "Active"
}

func chamberName(code string) string {
	switch strings.TrimSpace(code) {
	case "S":
		return "Senate"
	case "H":
		return "House"
	}
	return ""
}

// buildTitle phrases the committee name the way the broadcast schedule lists
// it, based on the sponsor type.
func buildTitle(raw basis.Meeting) string {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return ""
	}

	chamber := chamberName(raw.Chamber)
	committee := titleCaser.String(strings.ToLower(title))

	if chamber != "" {
		switch strings.TrimSpace(raw.SponsorType) {
		case "Standing Committee":
			return fmt.Sprintf("%s %s Committee", chamber, committee)
		case "Special Committee":
			return fmt.Sprintf("%s %s Special Committee", chamber, committee)
		case "Finance SubCommittee":
			return fmt.Sprintf("%s Finance: %s Subcommittee", chamber, committee)
		}
	}
	return committee
}

// billGroup pairs a bill with the agenda details listed under it.
type billGroup struct {
	number  string
	title   string
	details []string
}

// extractBills groups agenda slices by bill and collects bill-less highlight
// text separately. The bill context carries forward, so detail slices that
// follow a bill attach to it even without their own BillRoot. Cancellation
// banners never count as details.
func extractBills(slices []basis.Slice) ([]billGroup, []string) {
	var groups []billGroup
	used := make(map[string]struct{})

	byNumber := make(map[string]int)
	current := -1
	for _, s := range slices {
		bill := strings.TrimSpace(s.BillRoot)
		text := strings.TrimSpace(s.Highlight)
		if bill == "" && text == "" {
			continue
		}

		if bill != "" {
			idx, ok := byNumber[bill]
			if !ok {
				groups = append(groups, billGroup{number: bill, title: strings.TrimSpace(s.ShortTitle)})
				idx = len(groups) - 1
				byNumber[bill] = idx
			}
			if groups[idx].title == "" {
				groups[idx].title = strings.TrimSpace(s.ShortTitle)
			}
			current = idx
		}

		if current < 0 || text == "" || text == bill || isCancelBanner(text) {
			continue
		}
		used[text] = struct{}{}
		if cleaned := stripStreaming(text); cleaned != "" {
			groups[current].details = append(groups[current].details, cleaned)
		}
	}

	var general []string
	seen := make(map[string]struct{})
	for _, s := range slices {
		if strings.TrimSpace(s.BillRoot) != "" {
			continue
		}
		text := strings.TrimSpace(s.Highlight)
		if text == "" || isCancelBanner(text) {
			continue
		}
		if _, ok := used[text]; ok {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		if cleaned := stripStreaming(text); cleaned != "" {
			general = append(general, cleaned)
		}
	}

	return groups, general
}

func isCancelBanner(text string) bool {
	return strings.Contains(strings.ToUpper(text), "MEETING CANCELED")
}

// stripStreaming removes the AKL.tv boilerplate the legislature embeds in
// agenda text; the broadcast system adds its own streaming notice.
func stripStreaming(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "**Streamed live on AKL.tv**", ""))
}

func toBillRefs(groups []billGroup) []models.Bill {
	if len(groups) == 0 {
		return nil
	}
	bills := make([]models.Bill, 0, len(groups))
	for _, g := range groups {
		bills = append(bills, models.Bill{Number: g.number, Title: g.title})
	}
	return bills
}

// buildDescription assembles the exported description: cancellation marker,
// bills with their details, then general agenda items. Streaming boilerplate
// is stripped because the broadcast system adds its own.
func buildDescription(raw basis.Meeting, bills []billGroup, general []string) string {
	var parts []string

	if bool(raw.Canceled) {
		parts = append(parts, "** MEETING CANCELED **")
	}

	if len(bills) > 0 {
		texts := make([]string, 0, len(bills))
		for _, g := range bills {
			text := g.number
			if g.title != "" {
				text += " " + g.title
			}
			if len(g.details) > 0 {
				text += " " + strings.Join(g.details, " ")
			}
			texts = append(texts, text)
		}
		parts = append(parts, "Bills: "+strings.Join(texts, ", "))
	}

	if len(general) > 0 {
		parts = append(parts, strings.Join(general, " | "))
	}

	return strings.Join(parts, " | ")
}
