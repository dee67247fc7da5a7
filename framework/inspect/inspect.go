package inspect

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/km-arc/go-dice/framework/container"
	gohttp "github.com/km-arc/go-dice/framework/http"
	"github.com/km-arc/go-dice/framework/routing"
	"github.com/km-arc/go-dice/framework/typeinfo"
)

// Handler serves read-mostly introspection of a live container.
type Handler struct {
	c   *container.Container
	log *zap.Logger
}

// New creates a Handler for c. A nil log falls back to the container's logger.
func New(c *container.Container, log *zap.Logger) *Handler {
	if log == nil {
		log = c.Logger()
	}
	return &Handler{c: c, log: log}
}

// Register adds the inspection routes to r.
//
//	GET  /rules            every rule, wildcard included
//	GET  /rules/{name}     the rule that applies to name
//	GET  /instances        keys of cached shared instances
//	GET  /types            registered type descriptors
//	POST /resolve/{name}   resolve name, optional body {"args":{},"force_new":false,"share":[]}
func (h *Handler) Register(r *routing.Router) {
	r.Get("/rules", h.rules)
	r.Get("/rules/{name}", h.rule)
	r.Get("/instances", h.instances)
	r.Get("/types", h.types)
	r.Post("/resolve/{name}", h.resolve)
}

// NewRouter returns a router serving only the inspection routes.
func NewRouter(c *container.Container, log *zap.Logger) *routing.Router {
	r := routing.New(log)
	New(c, log).Register(r)
	return r
}

// ── Rules ─────────────────────────────────────────────────────────────────────

func (h *Handler) rules(w http.ResponseWriter, r *http.Request) {
	names := h.c.RuleNames()
	out := make([]RuleView, 0, len(names))
	for _, n := range names {
		out = append(out, viewRule(h.c.Rule(n), true))
	}
	gohttp.NewResponse(w).Success(out)
}

func (h *Handler) rule(w http.ResponseWriter, r *http.Request) {
	name := gohttp.NewRequest(r).RouteParam("name")
	res := gohttp.NewResponse(w)
	if typeinfo.Normalize(name) == "" {
		res.BadRequest("type name required")
		return
	}
	res.Success(viewRule(h.c.Rule(name), h.c.HasRule(name)))
}

// ── Instances & types ─────────────────────────────────────────────────────────

func (h *Handler) instances(w http.ResponseWriter, r *http.Request) {
	gohttp.NewResponse(w).Success(h.c.Instances())
}

type nameLister interface{ Names() []string }

func (h *Handler) types(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	lister, ok := h.c.Types().(nameLister)
	if !ok {
		res.Error(http.StatusNotImplemented, "type provider cannot list its types")
		return
	}

	out := []TypeView{}
	for _, n := range lister.Names() {
		t, ok := h.c.Types().Lookup(n)
		if !ok {
			continue
		}
		out = append(out, viewType(t, h.c.Types().Ancestors(n)))
	}
	res.Success(out)
}

// ── Resolve ───────────────────────────────────────────────────────────────────

type resolveRequest struct {
	Args     map[string]any `json:"args"`
	ForceNew bool           `json:"force_new"`
	Share    []string       `json:"share"`
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	req := gohttp.NewRequest(r)
	res := gohttp.NewResponse(w)
	name := req.RouteParam("name")

	var body resolveRequest
	if err := req.BindOptional(&body); err != nil {
		res.BadRequest(err.Error())
		return
	}

	var opts []container.ResolveOption
	if len(body.Args) > 0 {
		opts = append(opts, container.WithArgs(container.Args(numbers(body.Args).(map[string]any))))
	}
	forceNew := body.ForceNew || req.QueryBool("force_new")
	if forceNew {
		opts = append(opts, container.ForceNew())
	}
	for _, s := range body.Share {
		opts = append(opts, container.WithShare(s))
	}

	inst, err := h.c.Get(name, opts...)
	if err != nil {
		h.log.Warn("inspect resolve failed", zap.String("type", name), zap.Error(err))
		status, extra := errorBody(err)
		res.Fail(status, err.Error(), extra)
		return
	}

	h.log.Debug("inspect resolve", zap.String("type", name), zap.String("go_type", fmt.Sprintf("%T", inst)))
	res.Success(gohttp.Envelope{
		"type":    name,
		"go_type": fmt.Sprintf("%T", inst),
		"shared":  !forceNew && h.c.Resolved(name),
	})
}

// errorBody maps a resolution error to a status and the structured fields.
func errorBody(err error) (int, gohttp.Envelope) {
	var e *container.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, nil
	}

	status := http.StatusUnprocessableEntity
	switch e.Kind {
	case container.KindNotFound:
		status = http.StatusNotFound
	case container.KindCycle:
		status = http.StatusConflict
	case container.KindConstruct:
		status = http.StatusInternalServerError
	}

	extra := gohttp.Envelope{"kind": e.Kind}
	if e.Type != "" {
		extra["type"] = e.Type
	}
	if e.Param != "" {
		extra["param"] = e.Param
	}
	if e.Method != "" {
		extra["method"] = e.Method
	}
	if len(e.Path) > 0 {
		extra["path"] = e.Path
	}
	return status, extra
}

// numbers turns json.Number leaves into int64 or float64 so they convert
// to constructor parameter types.
func numbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = numbers(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = numbers(e)
		}
		return out
	}
	return v
}
