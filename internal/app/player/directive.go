package player

// DirectiveKind identifies what the playback surface should do next.
type DirectiveKind int

const (
	DirectiveNone       DirectiveKind = iota // nothing to do
	DirectiveReplaceAll                      // replace current and enqueued streams
	DirectiveEnqueue                         // enqueue after the current stream
	DirectiveStop                            // stop playback
)

// String returns the string representation of the directive kind.
func (k DirectiveKind) String() string {
	switch k {
	case DirectiveNone:
		return "none"
	case DirectiveReplaceAll:
		return "replace_all"
	case DirectiveEnqueue:
		return "enqueue"
	case DirectiveStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Directive is the playback instruction emitted to the host playback surface.
type Directive struct {
	Kind     DirectiveKind
	TrackID  string
	URL      string
	OffsetMS int64

	// ExpectedPreviousTrackID lets the surface detect stale enqueues: the
	// enqueue only applies if this track is still the one playing.
	ExpectedPreviousTrackID string
}

func replaceAll(trackID, url string, offsetMS int64) Directive {
	return Directive{Kind: DirectiveReplaceAll, TrackID: trackID, URL: url, OffsetMS: offsetMS}
}

func enqueue(trackID, url, expectedPrev string) Directive {
	return Directive{Kind: DirectiveEnqueue, TrackID: trackID, URL: url, ExpectedPreviousTrackID: expectedPrev}
}

func stop() Directive {
	return Directive{Kind: DirectiveStop}
}

func none() Directive {
	return Directive{Kind: DirectiveNone}
}
