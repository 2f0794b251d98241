package server

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vango-dev/drizzle/pkg/hydrate"
	"github.com/vango-dev/drizzle/pkg/middleware"
	"github.com/vango-dev/drizzle/pkg/render"
	"github.com/vango-dev/drizzle/pkg/vdom"
)

// ErrNotFound can be returned by a PropsFunc to answer 404.
var ErrNotFound = stderrors.New("not found")

// PropsFunc builds the props of one page request. The props are rendered
// into the markup and become the island's hydration payload, so they must
// be JSON-encodable.
type PropsFunc func(r *http.Request) (map[string]any, error)

// PageOption configures a page route.
type PageOption func(*pageOptions)

type pageOptions struct {
	title       string
	meta        []render.MetaTag
	styleSheets []string
	scripts     []render.ScriptTag
	static      bool
}

// WithTitle sets the page title.
func WithTitle(title string) PageOption {
	return func(o *pageOptions) { o.title = title }
}

// WithMeta adds meta tags.
func WithMeta(meta ...render.MetaTag) PageOption {
	return func(o *pageOptions) { o.meta = append(o.meta, meta...) }
}

// WithStyleSheets adds stylesheet links.
func WithStyleSheets(hrefs ...string) PageOption {
	return func(o *pageOptions) { o.styleSheets = append(o.styleSheets, hrefs...) }
}

// WithScripts adds script tags after the runtime script.
func WithScripts(scripts ...render.ScriptTag) PageOption {
	return func(o *pageOptions) { o.scripts = append(o.scripts, scripts...) }
}

// Static renders the component without a hydration call.
func Static() PageOption {
	return func(o *pageOptions) { o.static = true }
}

// Page registers a GET route rendering comp. For each request props builds
// the props (nil means none); the component renders inside the island
// container and the props are embedded as its hydration payload.
func (s *Server) Page(pattern string, comp hydrate.Component, props PropsFunc, opts ...PageOption) {
	var o pageOptions
	for _, opt := range opts {
		opt(&o)
	}
	s.router.Get(pattern, s.pageHandler(comp, props, o))
}

func (s *Server) pageHandler(comp hydrate.Component, propsFn PropsFunc, o pageOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.Start(r.Context(), "render "+comp.Name)
		defer span.End()
		span.SetAttributes(attribute.String("drizzle.component", comp.Name))

		props := map[string]any{}
		if propsFn != nil {
			p, err := propsFn(r.WithContext(ctx))
			if err != nil {
				status := http.StatusInternalServerError
				if stderrors.Is(err, ErrNotFound) {
					status = http.StatusNotFound
				} else {
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
					s.logger.Error("page props failed",
						slog.String("component", comp.Name),
						slog.String("request_id", middleware.RequestIDFrom(ctx)),
						slog.Any("error", err))
				}
				http.Error(w, http.StatusText(status), status)
				return
			}
			if p != nil {
				props = p
			}
		}

		page := render.PageData{
			Title:         o.title,
			Lang:          s.config.Lang,
			Meta:          o.meta,
			StyleSheets:   o.styleSheets,
			Scripts:       o.scripts,
			Body:          vdom.H(comp.Render, vdom.Props(props)),
			Container:     s.config.Container,
			RuntimeScript: s.config.RuntimeScript,
		}
		if comp.Render == nil {
			page.Body = nil
		}
		if !o.static {
			page.Component = comp.Name
			page.Props = props
		}
		if s.config.CSP {
			nonce, err := newNonce()
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			page.Nonce = nonce
			w.Header().Set("Content-Security-Policy", "script-src 'nonce-"+nonce+"'")
		}

		var buf bytes.Buffer
		start := time.Now()
		if err := s.renderer.RenderPage(&buf, page); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Error("page render failed",
				slog.String("component", comp.Name),
				slog.String("request_id", middleware.RequestIDFrom(ctx)),
				slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.metrics.PageRendered(page.Component, time.Since(start))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	}
}

func newNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
