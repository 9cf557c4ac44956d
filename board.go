package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store file names inside the data directory.
const (
	messagesFile = "messages.json"
	commentsFile = "comments.json"
	usersFile    = "users.json"
)

// Board groups the three services. Each owns its own store file.
type Board struct {
	Messages *MessageService
	Comments *CommentService
	Users    *UserService
}

// OpenBoard opens (and if needed creates) the store files under dataDir.
func OpenBoard(dataDir string, logger *Logger) (*Board, error) {
	messages, err := OpenJSONStore(filepath.Join(dataDir, messagesFile), Messages{}, logger)
	if err != nil {
		return nil, fmt.Errorf("open message store: %w", err)
	}
	comments, err := OpenJSONStore(filepath.Join(dataDir, commentsFile), CommentIndex{}, logger)
	if err != nil {
		return nil, fmt.Errorf("open comment store: %w", err)
	}
	users, err := OpenJSONStore(filepath.Join(dataDir, usersFile), Users{}, logger)
	if err != nil {
		return nil, fmt.Errorf("open user store: %w", err)
	}

	return &Board{
		Messages: &MessageService{store: messages, now: time.Now, newID: uuid.NewString, logger: logger},
		Comments: &CommentService{store: comments, now: time.Now},
		Users:    &UserService{store: users},
	}, nil
}

// Check reports the first store that can no longer be read.
func (b *Board) Check() error {
	if _, err := b.Messages.store.Raw(); err != nil {
		return err
	}
	if _, err := b.Comments.store.Raw(); err != nil {
		return err
	}
	_, err := b.Users.store.Raw()
	return err
}

// MessageService lists and posts board messages.
type MessageService struct {
	store  *JSONStore[Messages]
	now    func() time.Time
	newID  func() string
	logger *Logger
}

// List returns every message, newest first. Messages stored without an id get
// one, and the backfill is written back before returning.
func (s *MessageService) List() (Messages, error) {
	var out Messages
	err := s.store.Update(func(msgs *Messages) (bool, error) {
		n := msgs.backfillIDs(s.newID)
		out = slices.Clone(*msgs)
		if n > 0 {
			IDsBackfilled.Add(float64(n))
			s.logger.Info(ComponentBoard, fmt.Sprintf("Backfilled %d message ids", n))
		}
		return n > 0, nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = Messages{}
	}
	return out, nil
}

// Post stores a new message at the front of the board.
func (s *MessageService) Post(name, message string) (Message, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(message) == "" {
		return Message{}, validationError("Name and message cannot be empty.")
	}

	msg := Message{
		ID:        s.newID(),
		Name:      name,
		Message:   message,
		Timestamp: formatTimestamp(s.now()),
	}
	err := s.store.Update(func(msgs *Messages) (bool, error) {
		*msgs = slices.Insert(*msgs, 0, msg)
		return true, nil
	})
	if err != nil {
		return Message{}, err
	}
	return msg, nil
}

// CommentService lists and adds comments keyed by message id.
type CommentService struct {
	store *JSONStore[CommentIndex]
	now   func() time.Time
}

// List returns the comments for postID in the order they were added. An
// unknown or empty postID yields an empty list.
func (s *CommentService) List(postID string) ([]Comment, error) {
	idx, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	comments := idx[postID]
	if comments == nil {
		comments = []Comment{}
	}
	return comments, nil
}

// Add timestamps a comment and appends it under messageID. The message is
// not required to exist.
func (s *CommentService) Add(messageID, user, text string) (Comment, error) {
	c := Comment{
		MessageID: messageID,
		User:      user,
		Text:      text,
		Timestamp: formatTimestamp(s.now()),
	}
	err := s.store.Update(func(idx *CommentIndex) (bool, error) {
		if *idx == nil {
			*idx = CommentIndex{}
		}
		(*idx)[messageID] = append((*idx)[messageID], c)
		return true, nil
	})
	if err != nil {
		return Comment{}, err
	}
	return c, nil
}

// UserService handles accounts.
type UserService struct {
	store *JSONStore[Users]
}

// Raw returns users.json verbatim.
func (s *UserService) Raw() ([]byte, error) {
	return s.store.Raw()
}

// Login succeeds only on an exact, case-sensitive match of both fields.
func (s *UserService) Login(username, password string) (User, error) {
	users, err := s.store.Load()
	if err != nil {
		return User{}, err
	}
	for _, u := range users {
		if u.Username == username && u.Password == password {
			return u, nil
		}
	}
	return User{}, authError("Invalid credentials")
}

// Signup appends a new account unless the username is taken.
func (s *UserService) Signup(username, password string) (User, error) {
	if strings.TrimSpace(username) == "" {
		return User{}, validationError("Username cannot be empty.")
	}

	user := User{Username: username, Password: password}
	err := s.store.Update(func(users *Users) (bool, error) {
		if _, ok := users.find(username); ok {
			return false, conflictError("Username already exists. Please choose another one.")
		}
		*users = append(*users, user)
		return true, nil
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}
