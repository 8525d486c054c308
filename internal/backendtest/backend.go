// Package backendtest provides an in-process fake of the archive backend for
// tests. It serves /start, /query and /send from a fiber app mounted on an
// httptest.Server.
package backendtest

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/archiveai/pkg/llm"
)

// Reply is a canned HTTP response. A string Body is written verbatim;
// anything else is encoded as JSON.
type Reply struct {
	Status int
	Body   any
}

// Upload is a file received on /send.
type Upload struct {
	Filename string
	Data     []byte
}

// Server is the fake backend.
type Server struct {
	app *fiber.App
	srv *httptest.Server

	mu         sync.Mutex
	startFunc  func() Reply
	queryFunc  func(prompt string) Reply
	sendStatus int
	prompts    []string
	uploads    []Upload
	hits       map[string]int
}

// New starts a fake backend that greets with "Hello", echoes prompts and
// accepts every upload.
func New() *Server {
	s := &Server{
		startFunc: func() Reply {
			return Reply{Status: fiber.StatusOK, Body: llm.Response{Response: "Hello"}}
		},
		queryFunc: func(prompt string) Reply {
			return Reply{Status: fiber.StatusOK, Body: llm.Response{Response: "You said: " + prompt}}
		},
		sendStatus: fiber.StatusOK,
		hits:       make(map[string]int),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Get("/start", s.handleStart)
	app.Post("/query", s.handleQuery)
	app.Post("/send", s.handleSend)

	s.app = app
	s.srv = httptest.NewServer(adaptor.FiberApp(app))
	return s
}

// URL returns the base URL of the fake backend.
func (s *Server) URL() string {
	return s.srv.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// OnStart replaces the /start reply.
func (s *Server) OnStart(fn func() Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startFunc = fn
}

// OnQuery replaces the /query reply.
func (s *Server) OnQuery(fn func(prompt string) Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryFunc = fn
}

// SetSendStatus sets the status code returned by /send.
func (s *Server) SetSendStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendStatus = status
}

// Prompts returns every prompt received on /query, in order.
func (s *Server) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Uploads returns every file received on /send, in order.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

// Hits returns how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *Server) handleStart(c *fiber.Ctx) error {
	s.mu.Lock()
	s.hits["/start"]++
	fn := s.startFunc
	s.mu.Unlock()

	return writeReply(c, fn())
}

func (s *Server) handleQuery(c *fiber.Ctx) error {
	var req llm.QueryRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	s.mu.Lock()
	s.hits["/query"]++
	s.prompts = append(s.prompts, req.Prompt)
	fn := s.queryFunc
	s.mu.Unlock()

	if req.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "Prompt not provided"})
	}
	return writeReply(c, fn(req.Prompt))
}

func (s *Server) handleSend(c *fiber.Ctx) error {
	s.mu.Lock()
	s.hits["/send"]++
	s.mu.Unlock()

	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "file not provided"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "could not open upload"})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "could not read upload"})
	}

	s.mu.Lock()
	s.uploads = append(s.uploads, Upload{Filename: fh.Filename, Data: data})
	status := s.sendStatus
	s.mu.Unlock()

	return c.Status(status).JSON(map[string]string{"status": "received"})
}

func writeReply(c *fiber.Ctx, r Reply) error {
	status := r.Status
	if status == 0 {
		status = fiber.StatusOK
	}
	if raw, ok := r.Body.(string); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(status).SendString(raw)
	}
	return c.Status(status).JSON(r.Body)
}
