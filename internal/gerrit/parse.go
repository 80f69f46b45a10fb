package gerrit

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownEventType is returned by ParseEvent for event kinds this
// integration does not model. Callers typically skip such lines.
var ErrUnknownEventType = errors.New("unknown gerrit event type")

// ParseEvent decodes one stream-events JSON line into a typed event.
func ParseEvent(line []byte) (Event, error) {
	var probe struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(line, &probe); err != nil {
		return nil, fmt.Errorf("decoding event envelope: %w", err)
	}

	var event Event
	switch probe.Type {
	case TypePatchsetCreated:
		event = &PatchsetCreated{}
	case TypeChangeAbandoned:
		event = &ChangeAbandoned{}
	case TypeChangeMerged:
		event = &ChangeMerged{}
	case TypeCommentAdded:
		event = &CommentAdded{}
	case TypeRefUpdated:
		event = &RefUpdated{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, probe.Type)
	}

	if err := json.Unmarshal(line, event); err != nil {
		return nil, fmt.Errorf("decoding %s event: %w", probe.Type, err)
	}
	return event, nil
}
