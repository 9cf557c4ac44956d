package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
)

// sessionCookie names the cookie set on a successful login.
const sessionCookie = "loggedInUser"

// Handlers binds the board services to HTTP.
type Handlers struct {
	board  *Board
	cfg    *Config
	logger *Logger
}

// NewHandlers creates the handler set.
func NewHandlers(board *Board, cfg *Config, logger *Logger) *Handlers {
	return &Handlers{board: board, cfg: cfg, logger: logger}
}

// ListMessages handles GET /messages.
func (h *Handlers) ListMessages(c *fiber.Ctx) error {
	msgs, err := h.board.Messages.List()
	if err != nil {
		return err
	}
	requestLogger(c).Success(ComponentBoard, fmt.Sprintf("Found %d messages. Responding with collection", len(msgs)))
	return c.JSON(msgs)
}

// PostMessage handles POST /post.
func (h *Handlers) PostMessage(c *fiber.Ctx) error {
	msg, err := h.board.Messages.Post(c.FormValue("name"), c.FormValue("message"))
	if err != nil {
		return err
	}
	MessagesPosted.Inc()
	requestLogger(c).Success(ComponentBoard, "Posted message "+msg.ID)
	return c.Redirect("/bulletinboard", fiber.StatusSeeOther)
}

// ListComments handles GET /comments?postId=. The key must be present; an
// empty value is allowed.
func (h *Handlers) ListComments(c *fiber.Ctx) error {
	if !c.Context().QueryArgs().Has("postId") {
		return validationError("Missing postId parameter.")
	}
	comments, err := h.board.Comments.List(c.Query("postId"))
	if err != nil {
		return err
	}
	return c.JSON(comments)
}

type commentPayload struct {
	MessageID *string `json:"messageId"`
	User      *string `json:"user"`
	Text      *string `json:"text"`
}

func (p commentPayload) complete() bool {
	return p.MessageID != nil && p.User != nil && p.Text != nil
}

// AddComment handles POST /add-comment. Storage failures are answered here
// with a 500 instead of going through the shared error handler.
func (h *Handlers) AddComment(c *fiber.Ctx) error {
	var p commentPayload
	if err := json.Unmarshal(c.Body(), &p); err != nil || !p.complete() {
		return validationError("Invalid comment data. Ensure messageId, user, and text are provided.")
	}

	comment, err := h.board.Comments.Add(*p.MessageID, *p.User, *p.Text)
	if err != nil {
		requestLogger(c).Error(ComponentBoard, "Failed to submit comment: "+err.Error())
		body := "Failed to submit comment"
		if h.cfg.ExposeErrors {
			body += ": " + err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).SendString(body)
	}

	CommentsAdded.Inc()
	requestLogger(c).Success(ComponentBoard, "Comment added to message "+comment.MessageID)
	return c.SendString("Comment submitted successfully.")
}

// ListUsers handles GET /users. The store content is returned as-is.
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	raw, err := h.board.Users.Raw()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

// Login handles POST /login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	user, err := h.board.Users.Login(c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		if statusFor(err) == fiber.StatusUnauthorized {
			Logins.WithLabelValues("failure").Inc()
		}
		return err
	}

	Logins.WithLabelValues("success").Inc()
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    user.Username,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return c.SendString("Success")
}

// Signup handles POST /signup.
func (h *Handlers) Signup(c *fiber.Ctx) error {
	user, err := h.board.Users.Signup(c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		return err
	}
	Signups.Inc()
	requestLogger(c).Success(ComponentBoard, "Created account "+user.Username)
	return c.Redirect("/login.html", fiber.StatusSeeOther)
}

// BulletinBoard serves the board page.
func (h *Handlers) BulletinBoard(c *fiber.Ctx) error {
	return c.SendFile(filepath.Join(h.cfg.StaticDir, "index.html"))
}

// Health reports whether every store file can still be read.
func (h *Handlers) Health(c *fiber.Ctx) error {
	status, code := "ok", fiber.StatusOK
	if err := h.board.Check(); err != nil {
		requestLogger(c).Error(ComponentStore, "Health check failed: "+err.Error())
		status, code = "unavailable", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   Version,
		"service":   AppName,
	})
}

// APIDoc serves the embedded OpenAPI description.
func (h *Handlers) APIDoc(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "application/yaml")
	return c.Send(apiSpec)
}

// errorHandler renders errors returned by handlers as plain text with the
// status statusFor assigns.
func errorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		requestLogger(c).Error(ComponentHTTPServer, err.Error())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(publicMessage(err))
}
