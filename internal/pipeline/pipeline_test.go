package pipeline_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gavelak/gavel-exporter/internal/basis"
	"github.com/gavelak/gavel-exporter/internal/pipeline"
)

type stubFetcher struct {
	payloads map[string][]basis.Meeting
	errs     map[string]error
	delays   map[string]time.Duration
}

func (s *stubFetcher) Fetch(_ context.Context, date time.Time) ([]basis.Meeting, error) {
	key := date.Format("2006-01-02")
	if d, ok := s.delays[key]; ok {
		time.Sleep(d)
	}
	if err, ok := s.errs[key]; ok {
		return nil, err
	}
	return s.payloads[key], nil
}

func day(d int) time.Time {
	return time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC)
}

func rawMeeting(t *testing.T, chamber, title, date, clock string) basis.Meeting {
	t.Helper()
	var m basis.Meeting
	body := fmt.Sprintf(`{"Chamber":%q,"MeetingTitle":%q,"MeetingDate":%q,"MeetingTime":%q}`, chamber, title, date, clock)
	require.NoError(t, json.Unmarshal([]byte(body), &m))
	return m
}

func TestRunMergesInDateOrder(t *testing.T) {
	fetcher := &stubFetcher{
		payloads: map[string][]basis.Meeting{
			"2025-04-22": {rawMeeting(t, "S", "FINANCE", "2025-04-22", "09:00:00")},
			"2025-04-23": {rawMeeting(t, "H", "RULES", "2025-04-23", "08:00:00")},
			"2025-04-24": {rawMeeting(t, "S", "JUDICIARY", "2025-04-24", "10:00:00")},
		},
		// The earliest date finishes last; output order must not change.
		delays: map[string]time.Duration{"2025-04-22": 30 * time.Millisecond},
	}

	runner := pipeline.NewRunner(fetcher, 3, nil)
	result := runner.Run(context.Background(), []time.Time{day(22), day(23), day(24)})

	require.Empty(t, result.Failed)
	require.Len(t, result.Meetings, 3)
	require.Equal(t, "Finance", result.Meetings[0].Title)
	require.Equal(t, "Rules", result.Meetings[1].Title)
	require.Equal(t, "Judiciary", result.Meetings[2].Title)
}

func TestRunCollectsPerDateFailures(t *testing.T) {
	fetcher := &stubFetcher{
		payloads: map[string][]basis.Meeting{
			"2025-04-22": {rawMeeting(t, "S", "FINANCE", "2025-04-22", "09:00:00")},
		},
		errs: map[string]error{
			"2025-04-23": &basis.FetchError{Kind: basis.KindRemote, Date: day(23), Status: 500},
		},
	}

	runner := pipeline.NewRunner(fetcher, 2, nil)
	result := runner.Run(context.Background(), []time.Time{day(22), day(23)})

	require.Len(t, result.Meetings, 1)
	require.Len(t, result.Failed, 1)
	require.Equal(t, day(23), result.Failed[0].Date)
}

func TestRunDropsMalformedRecords(t *testing.T) {
	noDate := rawMeeting(t, "S", "FINANCE", "", "09:00:00")
	fetcher := &stubFetcher{
		payloads: map[string][]basis.Meeting{
			"2025-04-22": {
				noDate,
				rawMeeting(t, "H", "RULES", "2025-04-22", "08:00:00"),
			},
		},
	}

	runner := pipeline.NewRunner(fetcher, 1, nil)
	result := runner.Run(context.Background(), []time.Time{day(22)})

	require.Len(t, result.Meetings, 1)
	require.Len(t, result.Dropped, 1)
	require.Equal(t, "Rules", result.Meetings[0].Title)
}

func TestRunSkipsPlaceholders(t *testing.T) {
	var placeholder basis.Meeting
	require.NoError(t, json.Unmarshal([]byte(
		`{"MeetingDate":"2025-04-22","MeetingSlices":[{"SliceHighliteText":"No meeting scheduled"}]}`,
	), &placeholder))

	fetcher := &stubFetcher{
		payloads: map[string][]basis.Meeting{
			"2025-04-22": {placeholder},
		},
	}

	runner := pipeline.NewRunner(fetcher, 1, nil)
	result := runner.Run(context.Background(), []time.Time{day(22)})

	require.Empty(t, result.Meetings)
	require.Empty(t, result.Dropped)
}

func TestRunDuplicateIDLastFetchWins(t *testing.T) {
	early := rawMeeting(t, "S", "FINANCE", "2025-04-22", "09:00:00")
	late := rawMeeting(t, "S", "FINANCE AMENDED", "2025-04-22", "09:00:00")
	// Same chamber/sponsor/date/time yields the same derived ID.
	fetcher := &stubFetcher{
		payloads: map[string][]basis.Meeting{
			"2025-04-22": {early, late},
		},
	}

	runner := pipeline.NewRunner(fetcher, 1, nil)
	result := runner.Run(context.Background(), []time.Time{day(22)})

	require.Len(t, result.Meetings, 1)
	require.Equal(t, "Finance Amended", result.Meetings[0].Title)
}
