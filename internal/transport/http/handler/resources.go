package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/learninghub-api/internal/application/resource"
	"github.com/learninghub-api/internal/domain"
	"github.com/learninghub-api/internal/pkg/logger"
)

// ResourceHandler serves the CRUD routes of one resource.
type ResourceHandler struct {
	svc resource.Service
	// refQuery names the query parameter carrying the foreign-key filter, if any.
	refQuery string
	log      *logger.Logger
}

func NewResourceHandler(svc resource.Service, refQuery string, log *logger.Logger) *ResourceHandler {
	return &ResourceHandler{svc: svc, refQuery: refQuery, log: log}
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	var ref string
	if h.refQuery != "" {
		ref = r.URL.Query().Get(h.refQuery)
	}
	h.list(w, r, ref)
}

// ListByRef filters on the {userId} path parameter.
func (h *ResourceHandler) ListByRef(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "userId"))
}

func (h *ResourceHandler) list(w http.ResponseWriter, r *http.Request, ref string) {
	p := h.svc.Policy()
	items, err := h.svc.List(r.Context(), ref)
	if err != nil {
		writeEnvelope(w, r, h.log, domain.Failure(err, p.NotFoundMessage(), p.ListFailedMessage()))
		return
	}
	writeEnvelope(w, r, h.log, domain.List(items))
}

func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := h.svc.Policy()
	doc, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeEnvelope(w, r, h.log, domain.Failure(err, p.NotFoundMessage(), p.GetFailedMessage()))
		return
	}
	writeEnvelope(w, r, h.log, domain.OK(doc, ""))
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := h.svc.Policy()
	payload, err := decodeFields(r)
	if err != nil {
		writeEnvelope(w, r, h.log, domain.Failure(err, p.NotFoundMessage(), p.CreateFailedMessage()))
		return
	}
	doc, err := h.svc.Create(r.Context(), payload)
	if err != nil {
		writeEnvelope(w, r, h.log, domain.Failure(err, p.NotFoundMessage(), p.CreateFailedMessage()))
		return
	}
	writeEnvelope(w, r, h.log, domain.Created(doc, p.CreatedMessage()))
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	p := h.svc.Policy()
	payload, err := decodeFields(r)
	if err != nil {
		writeEnvelope(w, r, h.log, domain.Failure(err, p.NotFoundMessage(), p.UpdateFailedMessage()))
		return
	}
	doc, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeEnvelope(w, r, h.log, domain.Failure(err, p.NotFoundMessage(), p.UpdateFailedMessage()))
		return
	}
	writeEnvelope(w, r, h.log, domain.OK(doc, p.UpdatedMessage()))
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p := h.svc.Policy()
	if err := h.svc.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeEnvelope(w, r, h.log, domain.Failure(err, p.NotFoundMessage(), p.DeleteFailedMessage()))
		return
	}
	writeEnvelope(w, r, h.log, domain.Done(p.DeletedMessage()))
}

// Search matches the {query} path parameter against the policy's search fields.
func (h *ResourceHandler) Search(w http.ResponseWriter, r *http.Request) {
	p := h.svc.Policy()
	items, err := h.svc.Search(r.Context(), chi.URLParam(r, "query"))
	if err != nil {
		writeEnvelope(w, r, h.log, domain.Failure(err, p.NotFoundMessage(), p.SearchFailedMessage()))
		return
	}
	writeEnvelope(w, r, h.log, domain.List(items))
}
