package models

import "time"

// EventKind discriminates operator input decoded at the transport boundary.
type EventKind string

const (
	EventOpenPanel   EventKind = "open_panel"
	EventListRecords EventKind = "list_records"
	EventStartEdit   EventKind = "start_edit"
	EventChooseField EventKind = "choose_field"
	EventSubmitValue EventKind = "submit_value"
	EventCancel      EventKind = "cancel"
)

// Event is a typed operator input. Fields irrelevant to Kind are left zero.
type Event struct {
	OperatorID int64     `json:"operator_id" validate:"required"`
	Kind       EventKind `json:"kind" validate:"required,oneof=open_panel list_records start_edit choose_field submit_value cancel"`
	Catalog    Catalog   `json:"catalog,omitempty"`
	RecordID   *int64    `json:"record_id,omitempty"`
	FieldID    string    `json:"field_id,omitempty"`
	Payload    string    `json:"payload,omitempty"`
}

// Choice is one button offered alongside a prompt.
type Choice struct {
	Label string
	Event Event
}

// DialogueState names where a session sits in the edit state machine.
type DialogueState string

const (
	StateIdle          DialogueState = "idle"
	StateAwaitingField DialogueState = "awaiting_field"
)

// DialogueSession is the in-progress edit of one operator. A stored session is always
// AwaitingField; Idle is represented by the absence of a session.
type DialogueSession struct {
	ID         string            `json:"id"`
	OperatorID int64             `json:"operator_id"`
	Catalog    Catalog           `json:"catalog"`
	RecordID   *int64            `json:"record_id,omitempty"`
	Flow       []string          `json:"flow"`
	Step       int               `json:"step"`
	Collected  map[string]string `json:"collected"`
	Current    map[string]string `json:"current,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// State reports the state machine position of s.
func (s *DialogueSession) State() DialogueState {
	if s == nil || s.Step >= len(s.Flow) {
		return StateIdle
	}
	return StateAwaitingField
}

// CurrentField returns the field awaiting input, or "" when the flow is exhausted.
func (s *DialogueSession) CurrentField() string {
	if s.State() != StateAwaitingField {
		return ""
	}
	return s.Flow[s.Step]
}

// Record stores value under the current field and advances the flow. It reports whether
// every field of the flow has now been collected.
func (s *DialogueSession) Record(value string, now time.Time) bool {
	field := s.CurrentField()
	if field == "" {
		return true
	}
	if s.Collected == nil {
		s.Collected = make(map[string]string, len(s.Flow))
	}
	s.Collected[field] = value
	s.Step++
	s.UpdatedAt = now
	return s.Step >= len(s.Flow)
}

// Merged overlays collected answers on the record's current values.
func (s *DialogueSession) Merged() map[string]string {
	merged := make(map[string]string, len(s.Current)+len(s.Collected))
	for k, v := range s.Current {
		merged[k] = v
	}
	for k, v := range s.Collected {
		merged[k] = v
	}
	return merged
}

// Expired reports whether the session has been idle for longer than ttl. A non-positive ttl
// never expires.
func (s *DialogueSession) Expired(now time.Time, ttl time.Duration) bool {
	if s == nil || ttl <= 0 {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}

// Clone returns a deep copy so stores never share maps with callers.
func (s *DialogueSession) Clone() *DialogueSession {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Flow = append([]string(nil), s.Flow...)
	if s.RecordID != nil {
		id := *s.RecordID
		cp.RecordID = &id
	}
	cp.Collected = copyValues(s.Collected)
	cp.Current = copyValues(s.Current)
	return &cp
}

func copyValues(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
