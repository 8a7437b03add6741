package gateway

import "strings"

// EventFilter reports whether a chat event should reach subscribers.
type EventFilter func(message *Message) bool

// AllowAll accepts every event.
func AllowAll(*Message) bool { return true }

// FromRooms accepts events from the given rooms. Blank names are ignored and
// an empty set accepts every room.
func FromRooms(rooms ...string) EventFilter {
	allowed := make(map[string]struct{}, len(rooms))
	for _, room := range rooms {
		if room = strings.TrimSpace(room); room != "" {
			allowed[room] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return AllowAll
	}
	return func(message *Message) bool {
		if message == nil {
			return false
		}
		_, ok := allowed[message.Room]
		return ok
	}
}

// ExcludeSenders drops events posted by the given display names, typically
// the bot itself.
func ExcludeSenders(names ...string) EventFilter {
	excluded := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name != "" {
			excluded[name] = struct{}{}
		}
	}
	if len(excluded) == 0 {
		return AllowAll
	}
	return func(message *Message) bool {
		_, skip := excluded[message.SenderName()]
		return !skip
	}
}

// AllOf accepts an event only when every filter does. Nil filters are skipped.
func AllOf(filters ...EventFilter) EventFilter {
	return func(message *Message) bool {
		for _, filter := range filters {
			if filter != nil && !filter(message) {
				return false
			}
		}
		return true
	}
}
