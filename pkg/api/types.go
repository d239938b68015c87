package api

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/honeycarbs/hirepipe/pkg/logging"
)

// TokenSource yields the current bearer token, "" when there is none
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// SessionHandler is told when the backend rejects the token
type SessionHandler interface {
	Expire(ctx context.Context)
}

// Notifier surfaces interception messages to the user
type Notifier interface {
	Error(ctx context.Context, msg string)
}

// Config defines backend client settings
type Config struct {
	BaseURL    string // origin of the backend, e.g. http://localhost:8000
	BasePath   string // default /api
	HTTPClient *http.Client

	// RequestsPerSecond throttles outbound calls; 0 disables the limiter
	RequestsPerSecond float64
	Burst             int

	Tokens   TokenSource
	Session  SessionHandler
	Notifier Notifier
	Logger   *logging.Logger
}

// Client sends requests to the recruitment backend
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter

	tokens   TokenSource
	session  SessionHandler
	notifier Notifier
	logger   *logging.Logger
}

// Request describes one backend call. Path is relative to the base path.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// Body is encoded as JSON unless Form is set
	Body any
	Form *Form
}

// Form is an ordered multipart/form-data payload
type Form struct {
	Fields []FormField
	Files  []FormFile
}

type FormField struct {
	Name  string
	Value string
}

type FormFile struct {
	Field    string
	FileName string
	Content  io.Reader
}

// Add appends a text field
func (f *Form) Add(name, value string) *Form {
	f.Fields = append(f.Fields, FormField{Name: name, Value: value})
	return f
}

// AddFile appends a file part
func (f *Form) AddFile(field, fileName string, content io.Reader) *Form {
	f.Files = append(f.Files, FormFile{Field: field, FileName: fileName, Content: content})
	return f
}

// Response is a successful backend reply
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
