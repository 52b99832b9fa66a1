package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MeetingID keys a meeting room. Clients send it as a string or a number,
// storage keeps it numeric.
type MeetingID string

func (m MeetingID) Int64() (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(string(m)), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid meeting id %q", string(m))
	}
	return id, nil
}

func (m *MeetingID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] != '"' {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("meeting id: %w", err)
		}
		*m = MeetingID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("meeting id: %w", err)
	}
	*m = MeetingID(strings.TrimSpace(s))
	return nil
}
