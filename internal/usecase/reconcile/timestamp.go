package reconcile

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTranscriptTimestamp converts a transcript position string to seconds.
// Three colon-separated parts are H:M:S, two are M:S. Anything else is a
// per-entry parse error; the caller drops that entry only.
func ParseTranscriptTimestamp(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")

	switch len(parts) {
	case 3:
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		sec, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return 0, fmt.Errorf("malformed H:M:S timestamp %q", s)
		}
		return h*3600 + m*60 + sec, nil
	case 2:
		m, err1 := strconv.Atoi(parts[0])
		sec, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return 0, fmt.Errorf("malformed M:S timestamp %q", s)
		}
		return m*60 + sec, nil
	default:
		return 0, fmt.Errorf("unrecognized timestamp shape %q", s)
	}
}
