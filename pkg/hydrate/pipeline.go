package hydrate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/CTAG07/hxql/pkg/pages"
)

// DefaultTemplateExt is the extension of files that are rendered.
const DefaultTemplateExt = "html"

// HTMLContentType is sent with every rendered page.
const HTMLContentType = "text/html"

// Config is the per-run configuration. It is passed into every run rather
// than held by the Pipeline, so one Pipeline can serve differently configured
// sites.
type Config struct {
	// GraphQLEndpoint is the URL GraphQL requests are posted to. Empty
	// disables GraphQL population.
	GraphQLEndpoint string
	// SourceDir is the directory request paths are resolved under.
	SourceDir string
	// EnableHydrate turns rendering on. When off every file is passed through.
	EnableHydrate bool
	// TemplateExt is the extension of files that are rendered. Empty means
	// DefaultTemplateExt.
	TemplateExt string
	// StrictParams rejects malformed variables or props JSON instead of
	// ignoring the field.
	StrictParams bool
}

func (c Config) templateExt() string {
	if c.TemplateExt == "" {
		return DefaultTemplateExt
	}
	return strings.TrimPrefix(c.TemplateExt, ".")
}

// Request is the immutable input of one pipeline run.
type Request struct {
	// Path is the URL path of the request.
	Path string
	// Body holds the parsed form body.
	Body url.Values
	// Query holds the parsed query string.
	Query url.Values
	// Header is carried for completeness; no stage acts on it.
	Header http.Header
	// FormErr is the error from parsing the query string or form body, if
	// any. It only fails runs that go on to hydrate.
	FormErr error
	Config  Config
}

// NewRequest builds a Request from an incoming HTTP request. A query string
// or body that cannot be parsed is recorded in FormErr rather than failing
// here, so passthrough files are served regardless.
func NewRequest(r *http.Request, cfg Config) Request {
	formErr := r.ParseForm()
	return Request{
		Path:    r.URL.Path,
		Body:    r.PostForm,
		Query:   r.URL.Query(),
		Header:  r.Header.Clone(),
		FormErr: formErr,
		Config:  cfg,
	}
}

// Response is the result of a successful run.
type Response struct {
	// Body is the rendered page, or the raw file for passthrough responses.
	Body []byte
	// ContentType is empty when none should be sent.
	ContentType string
	// File is the file the request resolved to.
	File pages.ResolvedFile
	// Hydrated reports whether Body was rendered.
	Hydrated bool
	// Source is where the render context came from.
	Source Source
}

// Pipeline runs requests through resolve, validate, populate and render.
type Pipeline struct {
	fetcher  Fetcher
	hydrator *Hydrator
	logger   *slog.Logger
}

// NewPipeline returns a Pipeline that fetches GraphQL data with fetcher.
// fetcher may be nil, in which case GraphQL population never runs.
func NewPipeline(fetcher Fetcher, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		fetcher:  fetcher,
		hydrator: NewHydrator(),
		logger:   logger,
	}
}

// Run executes the pipeline for req. The stages run strictly in order and
// the first failure ends the run; the returned error wraps pages.ErrNotFound,
// ErrInvalidRequest, ErrUpstream or ErrRender.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Response, error) {
	file, err := pages.Resolve(req.Config.SourceDir, req.Path)
	if err != nil {
		return nil, err
	}

	if !req.Config.EnableHydrate || !strings.EqualFold(file.Ext, req.Config.templateExt()) {
		return passthrough(file), nil
	}

	if req.FormErr != nil {
		return nil, fmt.Errorf("%w: failed to parse form: %v", ErrInvalidRequest, req.FormErr)
	}

	params, err := Extract(req.Body, req.Query, req.Config.StrictParams, p.logger)
	if err != nil {
		return nil, err
	}
	if err = params.Validate(); err != nil {
		return nil, err
	}

	hctx, err := BuildContext(ctx, p.fetcher, req.Config.GraphQLEndpoint, params)
	if err != nil {
		return nil, err
	}

	html, err := p.hydrator.Render(string(file.Content), hctx)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("Hydrated page", "path", req.Path, "file", file.Path, "context_source", hctx.Source.String())

	return &Response{
		Body:        []byte(html),
		ContentType: HTMLContentType,
		File:        file,
		Hydrated:    true,
		Source:      hctx.Source,
	}, nil
}

func passthrough(file pages.ResolvedFile) *Response {
	ct, _ := pages.ContentType(file.Ext)
	return &Response{
		Body:        file.Content,
		ContentType: ct,
		File:        file,
	}
}
