package model

// SessionType is managed by the mentor profile CRUD; slot generation only reads
// its duration, reservation copies the meeting details onto the booking.
type SessionType struct {
	ID               string
	MentorID         string
	DurationMinutes  int
	MeetingPlatforms []string
	// PlatformContacts maps a platform name to the mentor's contact/link for it.
	PlatformContacts map[string]string
}

// SupportsPlatform reports whether the session type offers the given platform.
// An empty platform list places no restriction.
func (s SessionType) SupportsPlatform(platform string) bool {
	if len(s.MeetingPlatforms) == 0 {
		return true
	}
	for _, p := range s.MeetingPlatforms {
		if p == platform {
			return true
		}
	}
	return false
}
