package reconcile

import (
	"github.com/g37/meeting-manager/internal/infrastructure/external/automation"
)

// ResolveEventID picks the source-local identity of an automation event from
// its three possible id fields, in order: id, eventId, meetingId.
//
// This fallback chain is a heuristic inherited from the automation system's
// inconsistent payloads. It can mis-match when two fields disagree; do not
// tighten or loosen the rule without product sign-off.
func ResolveEventID(ev automation.Event) (string, bool) {
	for _, candidate := range []string{string(ev.ID), string(ev.EventID), string(ev.MeetingID)} {
		if candidate != "" {
			return candidate, true
		}
	}
	return "", false
}
