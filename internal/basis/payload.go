package basis

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// payload is the outer BASIS envelope: {"Basis": {"Meetings": ...}}.
type payload struct {
	Basis *basisBody `json:"Basis"`
}

type basisBody struct {
	Meetings meetingList `json:"Meetings"`
}

// Meeting is one raw BASIS meeting entry, untouched except for JSON decoding.
// Field presence varies between deployments; normalization happens elsewhere.
type Meeting struct {
	Chamber     string    `json:"Chamber"`
	Title       string    `json:"MeetingTitle"`
	SponsorType string    `json:"SponsorType"`
	Sponsor     string    `json:"MeetingSponsor"`
	Date        string    `json:"MeetingDate"`
	Time        string    `json:"MeetingTime"`
	EndTime     string    `json:"MeetingEndTime"`
	Location    string    `json:"Location"`
	Canceled    flexBool  `json:"MeetingCanceled"`
	Slices      sliceList `json:"MeetingSlices"`
}

// Slice is one agenda line: a bill reference, a free-text highlight, or both.
type Slice struct {
	BillRoot   string `json:"BillRoot"`
	ShortTitle string `json:"ShortTitle"`
	Highlight  string `json:"SliceHighliteText"`
}

// meetingList tolerates the three shapes BASIS has been observed to return:
// a plain array, {"Meeting": [...]}, and {"Meeting": {...}} for a single hit.
// Any other object shape is a decode error. present records whether the
// Meetings key appeared at all, so the client can reject envelopes that
// silently dropped it.
type meetingList struct {
	Items   []Meeting
	present bool
}

func (l *meetingList) UnmarshalJSON(data []byte) error {
	l.present = true
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		l.Items = nil
		return nil
	}

	if data[0] == '[' {
		return json.Unmarshal(data, &l.Items)
	}

	var wrapper struct {
		Meeting json.RawMessage `json:"Meeting"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	if wrapper.Meeting == nil {
		return errors.New("unexpected structure in Meetings element")
	}
	inner := bytes.TrimSpace(wrapper.Meeting)
	if len(inner) == 0 || bytes.Equal(inner, []byte("null")) {
		l.Items = nil
		return nil
	}
	if inner[0] == '[' {
		return json.Unmarshal(inner, &l.Items)
	}

	var single Meeting
	if err := json.Unmarshal(inner, &single); err != nil {
		return err
	}
	l.Items = []Meeting{single}
	return nil
}

// sliceList tolerates MeetingSlices arriving as an array, a single object, or
// being absent entirely.
type sliceList struct {
	Items []Slice
}

func (l *sliceList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		l.Items = nil
		return nil
	}
	if data[0] == '[' {
		return json.Unmarshal(data, &l.Items)
	}
	var single Slice
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	l.Items = []Slice{single}
	return nil
}

// flexBool accepts JSON booleans as well as the string renderings some BASIS
// exports use ("true", "Y").
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "y", "yes", "1":
			*b = true
		default:
			*b = false
		}
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = flexBool(v)
	return nil
}
