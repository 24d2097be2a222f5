package export_test

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gavelak/gavel-exporter/internal/export"
	"github.com/gavelak/gavel-exporter/internal/models"
)

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return rows
}

func sampleMeetings() []models.Meeting {
	date := time.Date(2025, 4, 22, 0, 0, 0, 0, time.UTC)
	return []models.Meeting{
		{
			ID:        "S-FIN20250422090000",
			Date:      date,
			StartTime: "09:00:00",
			Title:     "Senate Finance Committee",
			Location:  "Room 532",
			Status:    "Active",
		},
		{
			ID:          "H-RLS20250422133000",
			Date:        date,
			StartTime:   "13:30:00",
			EndTime:     "15:00:00",
			Title:       "House Rules Committee",
			Location:    "Room 106",
			Status:      "Active",
			Description: `Bills: HB 1 "An Act", SB 2`,
			Bills: []models.Bill{
				{Number: "HB 1", Title: "An Act relating to budgets"},
				{Number: "SB 2", Title: "An Act, with commas"},
			},
		},
	}
}

func TestStandardEmptyCollection(t *testing.T) {
	data, err := export.Standard(nil)
	require.NoError(t, err)

	rows := parseCSV(t, data)
	require.Len(t, rows, 1)
	require.Equal(t, export.StandardHeader, rows[0])
}

func TestStandardRowPerMeeting(t *testing.T) {
	meetings := sampleMeetings()
	data, err := export.Standard(meetings)
	require.NoError(t, err)

	rows := parseCSV(t, data)
	require.Len(t, rows, len(meetings)+1)

	first := rows[1]
	require.Equal(t, "2025-04-22", first[0])
	require.Equal(t, "09:00:00", first[1])
	require.Equal(t, "", first[2])
	require.Equal(t, "Room 532", first[3])
	require.Equal(t, "Active", first[4])
	require.Equal(t, "", first[6])

	second := rows[2]
	require.Equal(t, "HB 1; SB 2", second[6])
	require.Equal(t, "An Act relating to budgets; An Act, with commas", second[7])
}

func TestStandardRoundTripsQuotedFields(t *testing.T) {
	meetings := sampleMeetings()
	data, err := export.Standard(meetings)
	require.NoError(t, err)

	rows := parseCSV(t, data)
	// Commas and quotes inside the description must survive a parse cycle.
	require.Equal(t, meetings[1].Description, rows[2][5])
	require.Equal(t, meetings[1].Location, rows[2][3])
}

func TestInvintusSelectsAnnotatedOnly(t *testing.T) {
	meetings := sampleMeetings()
	annotations := map[string]models.Annotation{
		"H-RLS20250422133000": {Selected: true, Encoder: "hm4mevet", RuntimeMinutes: 45},
	}

	data, err := export.Invintus(meetings, annotations, export.InvintusOptions{
		Encoders:    []string{"hm4mevet"},
		LiveToBreak: true,
	})
	require.NoError(t, err)

	rows := parseCSV(t, data)
	require.Len(t, rows, 2)
	require.Equal(t, export.InvintusHeader, rows[0])

	row := rows[1]
	require.Equal(t, "House Rules Committee", row[0])
	require.Equal(t, "H-RLS20250422133000", row[1])
	require.Equal(t, "2025-04-22 13:30:00", row[2])
	require.Equal(t, "hm4mevet", row[4])
	require.Equal(t, "Gavel Alaska, House Rules Committee", row[5])
	require.Equal(t, "00:45", row[7])
	require.Equal(t, "TRUE", row[8])
}

func TestInvintusEmptyWhenNothingSelected(t *testing.T) {
	data, err := export.Invintus(sampleMeetings(), nil, export.InvintusOptions{})
	require.NoError(t, err)

	rows := parseCSV(t, data)
	require.Len(t, rows, 1)
}

func TestInvintusValidation(t *testing.T) {
	meetings := sampleMeetings()

	tests := []struct {
		name       string
		annotation models.Annotation
		opts       export.InvintusOptions
		wantErr    bool
	}{
		{
			name:       "complete",
			annotation: models.Annotation{Selected: true, Encoder: "hm4mevet", RuntimeMinutes: 60},
			opts:       export.InvintusOptions{Encoders: []string{"hm4mevet"}},
		},
		{
			name:       "missing encoder",
			annotation: models.Annotation{Selected: true, RuntimeMinutes: 60},
			wantErr:    true,
		},
		{
			name:       "encoder off roster",
			annotation: models.Annotation{Selected: true, Encoder: "rogue", RuntimeMinutes: 60},
			opts:       export.InvintusOptions{Encoders: []string{"hm4mevet"}},
			wantErr:    true,
		},
		{
			name:       "zero runtime",
			annotation: models.Annotation{Selected: true, Encoder: "hm4mevet"},
			opts:       export.InvintusOptions{Encoders: []string{"hm4mevet"}},
			wantErr:    true,
		},
		{
			name:       "negative runtime",
			annotation: models.Annotation{Selected: true, Encoder: "hm4mevet", RuntimeMinutes: -5},
			opts:       export.InvintusOptions{Encoders: []string{"hm4mevet"}},
			wantErr:    true,
		},
		{
			name:       "incomplete but unselected",
			annotation: models.Annotation{Selected: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			annotations := map[string]models.Annotation{meetings[0].ID: tt.annotation}
			_, err := export.Invintus(meetings, annotations, tt.opts)
			if tt.wantErr {
				var verr *export.ValidationError
				require.ErrorAs(t, err, &verr)
				require.Equal(t, meetings[0].ID, verr.MeetingID)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestInvintusChronologicalOrder(t *testing.T) {
	d22 := time.Date(2025, 4, 22, 0, 0, 0, 0, time.UTC)
	d23 := time.Date(2025, 4, 23, 0, 0, 0, 0, time.UTC)
	meetings := []models.Meeting{
		{ID: "b", Date: d23, StartTime: "08:00:00"},
		{ID: "c", Date: d22, StartTime: "14:00:00"},
		{ID: "a", Date: d22, StartTime: "09:00:00"},
		{ID: "e", Date: d22, StartTime: "09:00:00"},
		{ID: "d", Date: d22, StartTime: "09:00:00"},
	}
	annotations := make(map[string]models.Annotation)
	for _, m := range meetings {
		annotations[m.ID] = models.Annotation{Selected: true, Encoder: "enc", RuntimeMinutes: 30}
	}

	data, err := export.Invintus(meetings, annotations, export.InvintusOptions{})
	require.NoError(t, err)

	rows := parseCSV(t, data)
	ids := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		ids = append(ids, row[1])
	}
	require.Equal(t, []string{"a", "d", "e", "c", "b"}, ids)
}

func TestRuntimeRendersAsHoursMinutes(t *testing.T) {
	meetings := sampleMeetings()[:1]
	annotations := map[string]models.Annotation{
		meetings[0].ID: {Selected: true, Encoder: "enc", RuntimeMinutes: 150},
	}

	data, err := export.Invintus(meetings, annotations, export.InvintusOptions{})
	require.NoError(t, err)

	rows := parseCSV(t, data)
	require.Equal(t, "02:30", rows[1][7])
}

// The end-to-end shape: two meetings fetched, only the second selected with
// encoder and runtime set.
func TestStandardAndInvintusTogether(t *testing.T) {
	date := time.Date(2025, 4, 22, 0, 0, 0, 0, time.UTC)
	meetings := []models.Meeting{
		{ID: "m1", Date: date, StartTime: "09:00:00"},
		{ID: "m2", Date: date, StartTime: "13:00:00", Bills: []models.Bill{
			{Number: "HB 1"}, {Number: "SB 2"},
		}},
	}
	annotations := map[string]models.Annotation{
		"m2": {Selected: true, Encoder: "ENC-A", RuntimeMinutes: 45},
	}

	standard, err := export.Standard(meetings)
	require.NoError(t, err)
	require.Len(t, parseCSV(t, standard), 3)

	invintus, err := export.Invintus(meetings, annotations, export.InvintusOptions{
		Encoders: []string{"ENC-A"},
	})
	require.NoError(t, err)

	rows := parseCSV(t, invintus)
	require.Len(t, rows, 2)
	require.Equal(t, "m2", rows[1][1])
	require.Equal(t, "ENC-A", rows[1][4])
	require.Equal(t, "00:45", rows[1][7])
}
