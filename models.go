package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// timestampLayout is the on-disk format for message and comment timestamps.
const timestampLayout = "2006-01-02 15:04:05"

// Message is a single board post. Keys other than the four known ones are
// kept in Extra and written back unchanged.
type Message struct {
	ID        string
	Name      string
	Message   string
	Timestamp string
	Extra     map[string]json.RawMessage
}

type messageFields struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

var messageKeys = []string{"id", "name", "message", "timestamp"}

func (m *Message) UnmarshalJSON(b []byte) error {
	var f messageFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for _, k := range messageKeys {
		delete(all, k)
	}
	if len(all) == 0 {
		all = nil
	}
	*m = Message{ID: f.ID, Name: f.Name, Message: f.Message, Timestamp: f.Timestamp, Extra: all}
	return nil
}

func (m Message) MarshalJSON() ([]byte, error) {
	f := messageFields{ID: m.ID, Name: m.Name, Message: m.Message, Timestamp: m.Timestamp}
	if len(m.Extra) == 0 {
		return json.Marshal(f)
	}

	out := make(map[string]json.RawMessage, len(m.Extra)+len(messageKeys))
	for k, v := range m.Extra {
		out[k] = v
	}
	for k, v := range map[string]string{"id": f.ID, "name": f.Name, "message": f.Message, "timestamp": f.Timestamp} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = b
	}
	return json.Marshal(out)
}

// Comment is attached to a message by MessageID.
type Comment struct {
	MessageID string `json:"messageId"`
	User      string `json:"user"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// User is an account record. Passwords are stored as given.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UnmarshalJSON requires both keys to be present; a record without a
// password must not match an empty one at login.
func (u *User) UnmarshalJSON(b []byte) error {
	var raw struct {
		Username *string `json:"username"`
		Password *string `json:"password"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch {
	case raw.Username == nil:
		return errors.New("user record has no username")
	case raw.Password == nil:
		return fmt.Errorf("user record %q has no password", *raw.Username)
	}
	u.Username, u.Password = *raw.Username, *raw.Password
	return nil
}

// Messages is the contents of messages.json, newest first.
type Messages []Message

// backfillIDs assigns an id to every message that lacks one and reports how
// many were assigned.
func (m Messages) backfillIDs(newID func() string) int {
	n := 0
	for i := range m {
		if m[i].ID == "" {
			m[i].ID = newID()
			n++
		}
	}
	return n
}

// CommentIndex is the contents of comments.json: message id -> comments in
// append order.
type CommentIndex map[string][]Comment

// Users is the contents of users.json.
type Users []User

// Validate rejects records that cannot take part in a credential lookup.
func (u Users) Validate() error {
	for i, user := range u {
		if user.Username == "" {
			return fmt.Errorf("user record %d has no username", i)
		}
	}
	return nil
}

func (u Users) find(username string) (User, bool) {
	for _, user := range u {
		if user.Username == username {
			return user, true
		}
	}
	return User{}, false
}

func formatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}
