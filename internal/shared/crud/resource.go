package crud

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ops-backend/internal/shared/metrics"
	"ops-backend/internal/shared/server/respond"
	"ops-backend/internal/shared/storage/db"
	"ops-backend/internal/shared/telemetry"
	"ops-backend/internal/shared/validate"
)

// Resource binds an entity type T and its request shape In to a route.
type Resource[T any, In any] struct {
	// Name is the singular label used in messages, e.g. "expert".
	Name  string
	Path  string
	Store Store[T]

	// FromModel converts a stored row into its request shape. PATCH decodes
	// the body over this value.
	FromModel func(T) In
	// ToModel converts validated input into a row. existing is nil on create.
	ToModel func(ctx context.Context, in In, existing *T) (T, error)
	// Present renders a row for responses.
	Present func(T) any

	// Check adds rules that struct tags cannot express.
	Check func(ctx context.Context, in *In, existing *T) validate.Errors
	// Decode replaces JSON body decoding, e.g. for multipart forms.
	Decode func(c *gin.Context, in *In) error
	// Discard runs when a converted row could not be persisted.
	Discard func(ctx context.Context, v T)
	// AfterUpdate runs once an update has been persisted.
	AfterUpdate func(ctx context.Context, previous, saved T)
	// AfterDelete runs once a row has been deleted.
	AfterDelete func(ctx context.Context, v T)

	// Fields maps column names to JSON field names where they differ.
	Fields map[string]string
}

// Register attaches the five CRUD routes under r.Path.
func (r *Resource[T, In]) Register(rg gin.IRouter, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	g := rg.Group(r.Path, handlers...)
	g.GET("/", r.List)
	g.POST("/", r.Create)
	g.GET("/:id/", r.Retrieve)
	g.PUT("/:id/", r.Update)
	g.PATCH("/:id/", r.PartialUpdate)
	g.DELETE("/:id/", r.Destroy)
	return g
}

func (r *Resource[T, In]) List(c *gin.Context) {
	items, err := r.Store.List(c.Request.Context())
	if err != nil {
		r.Fail(c, "list", err)
		return
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, r.Present(item))
	}
	metrics.ObserveCRUD(r.Name, "list", "ok")
	respond.OK(c, out)
}

func (r *Resource[T, In]) Retrieve(c *gin.Context) {
	id, ok := r.ParseID(c)
	if !ok {
		return
	}
	item, err := r.Store.Get(c.Request.Context(), id)
	if err != nil {
		r.Fail(c, "retrieve", err)
		return
	}
	metrics.ObserveCRUD(r.Name, "retrieve", "ok")
	respond.OK(c, r.Present(item))
}

func (r *Resource[T, In]) Create(c *gin.Context) {
	var in In
	if err := r.decode(c, &in); err != nil {
		r.Fail(c, "create", err)
		return
	}
	item, err := r.Save(c.Request.Context(), 0, in, nil)
	if err != nil {
		r.Fail(c, "create", err)
		return
	}
	metrics.ObserveCRUD(r.Name, "create", "ok")
	respond.Created(c, r.Present(item))
}

// Update replaces a row. Optional fields missing from the body are reset.
func (r *Resource[T, In]) Update(c *gin.Context) {
	r.update(c, "update", false)
}

// PartialUpdate changes only the fields present in the body.
func (r *Resource[T, In]) PartialUpdate(c *gin.Context) {
	r.update(c, "partial_update", true)
}

func (r *Resource[T, In]) update(c *gin.Context, op string, partial bool) {
	id, ok := r.ParseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	existing, err := r.Store.Get(ctx, id)
	if err != nil {
		r.Fail(c, op, err)
		return
	}

	var in In
	if partial {
		in = r.FromModel(existing)
	}
	if err := r.decode(c, &in); err != nil {
		r.Fail(c, op, err)
		return
	}
	item, err := r.Save(ctx, id, in, &existing)
	if err != nil {
		r.Fail(c, op, err)
		return
	}
	metrics.ObserveCRUD(r.Name, op, "ok")
	respond.OK(c, r.Present(item))
}

func (r *Resource[T, In]) Destroy(c *gin.Context) {
	id, ok := r.ParseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var existing T
	if r.AfterDelete != nil {
		var err error
		if existing, err = r.Store.Get(ctx, id); err != nil {
			r.Fail(c, "destroy", err)
			return
		}
	}
	if err := r.Store.Delete(ctx, id); err != nil {
		r.Fail(c, "destroy", err)
		return
	}
	if r.AfterDelete != nil {
		r.AfterDelete(ctx, existing)
	}
	metrics.ObserveCRUD(r.Name, "destroy", "ok")
	respond.NoContent(c)
}

// Validate runs tag rules and Check, returning every violation at once.
func (r *Resource[T, In]) Validate(ctx context.Context, in *In, existing *T) validate.Errors {
	errs := validate.Errors{}
	errs.Merge(validate.Struct(in))
	if r.Check != nil {
		errs.Merge(r.Check(ctx, in, existing))
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Save validates in, converts it and writes it. existing is nil on create.
func (r *Resource[T, In]) Save(ctx context.Context, id int64, in In, existing *T) (T, error) {
	var zero T
	if errs := r.Validate(ctx, &in, existing); errs != nil {
		return zero, errs
	}
	item, err := r.ToModel(ctx, in, existing)
	if err != nil {
		return zero, err
	}

	var saved T
	if existing == nil {
		saved, err = r.Store.Create(ctx, item)
	} else {
		saved, err = r.Store.Update(ctx, id, item)
	}
	if err != nil {
		if r.Discard != nil {
			r.Discard(ctx, item)
		}
		return zero, err
	}
	if existing != nil && r.AfterUpdate != nil {
		r.AfterUpdate(ctx, *existing, saved)
	}
	return saved, nil
}

// ParseID reads the :id path parameter, answering 404 when it is not a key.
func (r *Resource[T, In]) ParseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		r.Fail(c, "parse_id", ErrNotFound)
		return 0, false
	}
	return id, true
}

// Fail maps err onto the API error envelope.
func (r *Resource[T, In]) Fail(c *gin.Context, op string, err error) {
	if errs, ok := validate.AsErrors(err); ok {
		metrics.ObserveCRUD(r.Name, op, "invalid")
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid input.", errs)
		return
	}
	var ce *db.ConstraintError
	if errors.As(err, &ce) {
		metrics.ObserveCRUD(r.Name, op, "invalid")
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid input.", r.constraintErrors(ce))
		return
	}
	var be *bodyError
	if errors.As(err, &be) {
		metrics.ObserveCRUD(r.Name, op, "invalid")
		respond.Error(c, http.StatusBadRequest, "parse_error", be.Error(), nil)
		return
	}
	if errors.Is(err, ErrNotFound) {
		metrics.ObserveCRUD(r.Name, op, "not_found")
		respond.Error(c, http.StatusNotFound, "not_found", "Not found.", nil)
		return
	}

	metrics.ObserveCRUD(r.Name, op, "error")
	telemetry.ErrorContext(c.Request.Context(), "crud.failed", map[string]any{
		"resource":  r.Name,
		"operation": op,
		"error":     err,
	})
	respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error.", nil)
}

func (r *Resource[T, In]) constraintErrors(ce *db.ConstraintError) validate.Errors {
	field := ce.Column
	if renamed, ok := r.Fields[field]; ok {
		field = renamed
	}
	if field == "" {
		field = validate.NonFieldErrors
	}

	var msg string
	switch ce.Kind {
	case db.Unique:
		msg = fmt.Sprintf("%s with this %s already exists.", r.Name, strings.ReplaceAll(field, "_", " "))
	case db.ForeignKey:
		msg = fmt.Sprintf("Invalid pk %q - object does not exist.", ce.Value)
	case db.NotNull:
		msg = "This field may not be null."
	case db.TooLong:
		msg = "Ensure this field is not longer than allowed."
	default:
		msg = "Invalid value."
	}
	return validate.Errors{field: msg}
}

func (r *Resource[T, In]) decode(c *gin.Context, in *In) error {
	if r.Decode != nil {
		return r.Decode(c, in)
	}
	return DecodeJSON(c, in)
}
