package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"
)

var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 13, 45, 0, 0, time.Local)
}

func openTestBoard(t *testing.T, dir string) *Board {
	t.Helper()
	b, err := OpenBoard(dir, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	b.Messages.now = fixedClock
	b.Comments.now = fixedClock
	return b
}

func TestOpenBoardCreatesStoreFiles(t *testing.T) {
	dir := t.TempDir()
	openTestBoard(t, dir)

	want := map[string]string{messagesFile: "[]", commentsFile: "{}", usersFile: "[]"}
	for name, content := range want {
		if got := readFile(t, filepath.Join(dir, name)); got != content {
			t.Fatalf("%s: expected %q, got %q", name, content, got)
		}
	}
}

func TestListMessagesBackfillsIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, messagesFile), `[
		{"name":"a","message":"one","timestamp":"2023-01-01 10:00:00"},
		{"id":"keep","name":"b","message":"two","timestamp":"2023-01-01 09:00:00"},
		{"name":"c","message":"three","timestamp":"2023-01-01 08:00:00"}
	]`)
	b := openTestBoard(t, dir)

	first, err := b.Messages.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(first))
	}
	seen := map[string]bool{}
	for _, m := range first {
		if m.ID == "" {
			t.Fatalf("message %q has no id", m.Message)
		}
		if seen[m.ID] {
			t.Fatalf("duplicate id %s", m.ID)
		}
		seen[m.ID] = true
	}
	if first[1].ID != "keep" {
		t.Fatalf("existing id overwritten: %s", first[1].ID)
	}

	var onDisk Messages
	if err := json.Unmarshal([]byte(readFile(t, filepath.Join(dir, messagesFile))), &onDisk); err != nil {
		t.Fatal(err)
	}
	for i := range onDisk {
		if onDisk[i].ID != first[i].ID {
			t.Fatalf("backfill not persisted: disk %q, listed %q", onDisk[i].ID, first[i].ID)
		}
	}

	second, err := b.Messages.List()
	if err != nil {
		t.Fatal(err)
	}
	for i := range second {
		if second[i].ID != first[i].ID {
			t.Fatalf("id changed between lists: %q -> %q", first[i].ID, second[i].ID)
		}
	}
}

func TestPostMessageRejectsEmptyFields(t *testing.T) {
	b := openTestBoard(t, t.TempDir())

	cases := []struct{ name, message string }{
		{"", "x"},
		{"x", ""},
		{"", ""},
		{"   ", "x"},
		{"x", "\t\n"},
	}
	for _, tc := range cases {
		_, err := b.Messages.Post(tc.name, tc.message)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("Post(%q, %q): expected validation error, got %v", tc.name, tc.message, err)
		}
	}

	msgs, err := b.Messages.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Fatalf("rejected posts were stored: %+v", msgs)
	}
}

func TestBackfillKeepsUnknownMessageKeys(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, messagesFile),
		`[{"name":"a","message":"one","timestamp":"2023-01-01 10:00:00","likes":3,"tags":["x"]}]`)
	b := openTestBoard(t, dir)

	msgs, err := b.Messages.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].ID == "" {
		t.Fatalf("expected one backfilled message, got %+v", msgs)
	}
	if string(msgs[0].Extra["likes"]) != "3" {
		t.Fatalf("expected likes to survive, got %+v", msgs[0].Extra)
	}

	var onDisk []map[string]any
	if err := json.Unmarshal([]byte(readFile(t, filepath.Join(dir, messagesFile))), &onDisk); err != nil {
		t.Fatal(err)
	}
	m := onDisk[0]
	if m["id"] != msgs[0].ID || m["name"] != "a" || m["message"] != "one" {
		t.Fatalf("known fields not written back: %v", m)
	}
	if m["likes"] != float64(3) {
		t.Fatalf("likes dropped from file: %v", m)
	}
	if tags, ok := m["tags"].([]any); !ok || len(tags) != 1 || tags[0] != "x" {
		t.Fatalf("tags dropped from file: %v", m)
	}
}

func TestMessageWithoutExtrasEncodesKnownKeysOnly(t *testing.T) {
	raw, err := json.Marshal(Message{ID: "1", Name: "a", Message: "b", Timestamp: "t"})
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"id":"1","name":"a","message":"b","timestamp":"t"}`; string(raw) != want {
		t.Fatalf("expected %s, got %s", want, raw)
	}
	if strings.Contains(string(raw), "Extra") {
		t.Fatalf("overflow field leaked: %s", raw)
	}
}

func TestPostMessageInsertsAtFront(t *testing.T) {
	b := openTestBoard(t, t.TempDir())

	if _, err := b.Messages.Post("Bob", "first"); err != nil {
		t.Fatal(err)
	}
	posted, err := b.Messages.Post("Alice", "Hello")
	if err != nil {
		t.Fatal(err)
	}

	msgs, err := b.Messages.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	got := msgs[0]
	if !reflect.DeepEqual(got, posted) {
		t.Fatalf("expected %+v at index 0, got %+v", posted, got)
	}
	if got.ID == "" {
		t.Fatal("posted message has no id")
	}
	if !timestampPattern.MatchString(got.Timestamp) {
		t.Fatalf("bad timestamp %q", got.Timestamp)
	}
	if got.Timestamp != "2024-05-01 13:45:00" {
		t.Fatalf("expected clock time, got %q", got.Timestamp)
	}
}

func TestListCommentsUnknownPost(t *testing.T) {
	b := openTestBoard(t, t.TempDir())

	comments, err := b.Comments.List("nope")
	if err != nil {
		t.Fatal(err)
	}
	if comments == nil || len(comments) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", comments)
	}
}

func TestListCommentsEmptyPostID(t *testing.T) {
	b := openTestBoard(t, t.TempDir())

	comments, err := b.Comments.List("")
	if err != nil {
		t.Fatal(err)
	}
	if comments == nil || len(comments) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", comments)
	}
}

func TestAddCommentThenList(t *testing.T) {
	b := openTestBoard(t, t.TempDir())

	if _, err := b.Comments.Add("m1", "bob", "hi"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Comments.Add("m2", "eve", "other"); err != nil {
		t.Fatal(err)
	}

	comments, err := b.Comments.List("m1")
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(comments))
	}
	want := Comment{MessageID: "m1", User: "bob", Text: "hi", Timestamp: "2024-05-01 13:45:00"}
	if comments[0] != want {
		t.Fatalf("expected %+v, got %+v", want, comments[0])
	}
}

func TestAddCommentKeepsAppendOrder(t *testing.T) {
	b := openTestBoard(t, t.TempDir())

	for _, text := range []string{"one", "two", "three"} {
		if _, err := b.Comments.Add("m1", "bob", text); err != nil {
			t.Fatal(err)
		}
	}
	comments, err := b.Comments.List("m1")
	if err != nil {
		t.Fatal(err)
	}
	for i, text := range []string{"one", "two", "three"} {
		if comments[i].Text != text {
			t.Fatalf("comment %d: expected %q, got %q", i, text, comments[i].Text)
		}
	}
}

func TestSignupRejectsDuplicateUsername(t *testing.T) {
	dir := t.TempDir()
	b := openTestBoard(t, dir)

	if _, err := b.Users.Signup("alice", "pw1"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Users.Signup("alice", "pw2"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := b.Users.Signup("Alice", "pw3"); err != nil {
		t.Fatalf("usernames are case-sensitive, got %v", err)
	}

	users, err := b.Users.store.Load()
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, u := range users {
		if u.Username == "alice" {
			count++
			if u.Password != "pw1" {
				t.Fatalf("expected pw1, got %q", u.Password)
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected one alice, got %d", count)
	}
}

func TestSignupRejectsEmptyUsername(t *testing.T) {
	b := openTestBoard(t, t.TempDir())

	if _, err := b.Users.Signup(" ", "pw"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	b := openTestBoard(t, t.TempDir())
	if _, err := b.Users.Signup("alice", "pw1"); err != nil {
		t.Fatal(err)
	}

	user, err := b.Users.Login("alice", "pw1")
	if err != nil {
		t.Fatal(err)
	}
	if user.Username != "alice" {
		t.Fatalf("expected alice, got %q", user.Username)
	}

	for _, creds := range [][2]string{{"alice", "wrong"}, {"ALICE", "pw1"}, {"bob", "pw1"}, {"", ""}} {
		if _, err := b.Users.Login(creds[0], creds[1]); !errors.Is(err, ErrAuth) {
			t.Fatalf("Login(%q, %q): expected auth error, got %v", creds[0], creds[1], err)
		}
	}
}

func TestConcurrentWritesAreNotLost(t *testing.T) {
	b := openTestBoard(t, t.TempDir())
	const n = 25

	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if _, err := b.Users.Signup(fmt.Sprintf("user%d", i), "pw"); err != nil {
				errs <- err
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			if _, err := b.Comments.Add("m1", fmt.Sprintf("user%d", i), "hi"); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	users, err := b.Users.store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != n {
		t.Fatalf("expected %d users, got %d", n, len(users))
	}
	comments, err := b.Comments.List("m1")
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != n {
		t.Fatalf("expected %d comments, got %d", n, len(comments))
	}
}
