package progress

// Event kinds emitted over an import session's progress stream. Done is the
// stream terminator: consumers stop reading when they see it.
const (
	KindStatus     = "status"
	KindGame       = "game"
	KindScreenshot = "screenshot"
	KindError      = "error"
	KindDone       = "done"
)

// Event is one progress update. Data is JSON-encoded as-is for transport,
// so values should be plain maps or structs with json tags.
type Event struct {
	Kind string      `json:"kind"`
	Data interface{} `json:"data,omitempty"`
}

func Done() Event {
	return Event{Kind: KindDone}
}
