package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/crudbase/go-crud-backend/internal/http/middleware"
	"github.com/crudbase/go-crud-backend/internal/repo"
	"github.com/crudbase/go-crud-backend/internal/schema"
	"github.com/crudbase/go-crud-backend/internal/services"
	"github.com/crudbase/go-crud-backend/internal/utils"
)

// Resource mounts the full CRUD route set for one entity type onto a gin
// router group. C and U are the create and update payload shapes; a Resource
// built without schemas (NewResource) registers only the read, delete, and
// metadata routes.
//
// Mounted routes, relative to the group:
//
//	GET    ""                   paginated listing
//	GET    "/all"               offset/limit slice
//	GET    "/count"             visible row count
//	GET    "/search"            substring search over configured columns
//	GET    "/:id"               fetch one
//	GET    "/:id/exists"        existence probe
//	POST   ""                   create (schema resources only)
//	POST   "/bulk"              atomic batch create (schema resources only)
//	PUT    "/:id"               partial update (schema resources only)
//	DELETE "/:id"               soft delete
//	PATCH  "/:id/restore"       undo soft delete
//	DELETE "/:id/force"         permanent delete
//	GET    "/model/fields"      field definitions
//	GET    "/model/form-config" admin form configuration
//	GET    "/model/schemas"     create/update schema shapes
type Resource[T schema.Entity, C any, U any] struct {
	svc      *services.Service[T]
	basePath string

	withCreate bool
	withUpdate bool
}

// NewResource builds a read-and-delete-only resource: no create or update
// routes are registered. basePath is the API prefix used when generating
// relationship option endpoints in the form configuration.
func NewResource[T schema.Entity](svc *services.Service[T], basePath string) *Resource[T, struct{}, struct{}] {
	return &Resource[T, struct{}, struct{}]{svc: svc, basePath: basePath}
}

// NewResourceWithSchemas builds a full resource whose create and update
// payloads are validated against C and U.
func NewResourceWithSchemas[T schema.Entity, C any, U any](svc *services.Service[T], basePath string) *Resource[T, C, U] {
	return &Resource[T, C, U]{svc: svc, basePath: basePath, withCreate: true, withUpdate: true}
}

// Mount registers the resource's routes on rg.
func (rs *Resource[T, C, U]) Mount(rg *gin.RouterGroup) {
	rg.GET("", rs.list)
	rg.GET("/all", rs.getAll)
	rg.GET("/count", rs.count)
	rg.GET("/search", rs.search)
	rg.GET("/:id", rs.getByID)
	rg.GET("/:id/exists", rs.exists)
	rg.DELETE("/:id", rs.softDelete)
	rg.PATCH("/:id/restore", rs.restore)
	rg.DELETE("/:id/force", rs.forceDelete)
	rg.GET("/model/fields", rs.modelFields)
	rg.GET("/model/form-config", rs.modelFormConfig)
	rg.GET("/model/schemas", rs.modelSchemas)

	if rs.withCreate {
		rg.POST("", rs.create)
		rg.POST("/bulk", rs.createBulk)
	}
	if rs.withUpdate {
		rg.PUT("/:id", rs.update)
	}
}

// UseJSONFieldNames makes gin's validator report field names from json tags
// so validation details match the wire shape. Call once at startup.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// respondError maps layered errors onto status codes and envelope codes.
func (rs *Resource[T, C, U]) respondError(c *gin.Context, err error) {
	var ve *services.ValidationError
	var re *repo.Error

	switch {
	case errors.Is(err, services.ErrItemNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, fmt.Sprintf("%s not found", rs.svc.ModelName()))
	case errors.As(err, &ve):
		fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, ve.Message, detailsFrom(ve.Details)...)
	case errors.As(err, &re) && re.Kind == repo.KindConflict:
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.As(err, &re) && re.Kind == repo.KindValidation:
		fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeService, "an unexpected error occurred")
	}
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "item id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

func includeDeleted(c *gin.Context) bool {
	return utils.BoolDefault(c.Query("include_deleted"), false)
}

// decodeBody reads the request body once and returns both the raw key map
// (for partial-update semantics) and the typed payload validated against its
// binding rules. Validation failures come back as field details.
func decodeBody[P any](c *gin.Context) (map[string]any, *P, []ErrorDetail, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, nil, nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, nil, nil, err
	}
	var payload P
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil, nil, err
	}
	if err := binding.Validator.ValidateStruct(&payload); err != nil {
		return nil, nil, validationDetails(err), errInvalidPayload
	}
	return fields, &payload, nil, nil
}

var errInvalidPayload = errors.New("payload failed validation")

func validationDetails(err error) []ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ErrorDetail{{Field: "body", Code: "invalid", Message: err.Error(), Target: "body"}}
	}
	details := make([]ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, ErrorDetail{
			Field:   fe.Field(),
			Code:    fe.Tag(),
			Message: fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag()),
			Target:  "body",
		})
	}
	return details
}

// list godoc
//
//	@Summary     List items
//	@Description Returns one page of items with the pagination envelope.
//	@Produce     json
//	@Param       page            query int    false "Page number (default 1)"
//	@Param       per_page        query int    false "Items per page (1-100, default 10)"
//	@Param       include_deleted query bool   false "Include soft-deleted items"
//	@Success     200 {object} PaginatedResponse
//	@Failure     500 {object} ErrorResponse
//	@Router      /{resource} [get]
func (rs *Resource[T, C, U]) list(c *gin.Context) {
	page := utils.AtoiDefault(c.Query("page"), repo.DefaultPage)
	perPage := utils.AtoiDefault(c.Query("per_page"), repo.DefaultPerPage)

	pr, err := rs.svc.List(c.Request.Context(), page, perPage, includeDeleted(c), nil)
	if err != nil {
		rs.respondError(c, err)
		return
	}
	paginated(c, pr)
}

// getAll godoc
//
//	@Summary     Get a slice of items
//	@Description Returns up to limit items starting at skip, without the pagination envelope.
//	@Produce     json
//	@Param       skip            query int  false "Rows to skip (default 0)"
//	@Param       limit           query int  false "Maximum rows to return (default 100)"
//	@Param       include_deleted query bool false "Include soft-deleted items"
//	@Success     200 {object} Response
//	@Failure     500 {object} ErrorResponse
//	@Router      /{resource}/all [get]
func (rs *Resource[T, C, U]) getAll(c *gin.Context) {
	skip := utils.AtoiDefault(c.Query("skip"), 0)
	limit := utils.AtoiDefault(c.Query("limit"), repo.MaxPerPage)

	res, err := rs.svc.GetMany(c.Request.Context(), skip, limit, includeDeleted(c), nil)
	if err != nil {
		rs.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, res.Data, res.Message)
}

// getByID godoc
//
//	@Summary     Get one item
//	@Produce     json
//	@Param       id              path  int  true  "Item id"
//	@Param       include_deleted query bool false "Include soft-deleted items"
//	@Success     200 {object} Response
//	@Failure     400 {object} ErrorResponse
//	@Failure     404 {object} ErrorResponse
//	@Router      /{resource}/{id} [get]
func (rs *Resource[T, C, U]) getByID(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	res, err := rs.svc.GetByID(c.Request.Context(), id, includeDeleted(c), nil)
	if err != nil {
		rs.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, res.Data, res.Message)
}

// create godoc
//
//	@Summary     Create an item
//	@Description Validates the payload against the create schema and persists a new item.
//	@Accept      json
//	@Produce     json
//	@Success     201 {object} Response
//	@Failure     400 {object} ErrorResponse
//	@Failure     409 {object} ErrorResponse
//	@Failure     422 {object} ErrorResponse
//	@Router      /{resource} [post]
func (rs *Resource[T, C, U]) create(c *gin.Context) {
	fields, _, details, err := decodeBody[C](c)
	if err != nil {
		if details != nil {
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, "payload failed validation", details...)
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "request body must be a JSON object")
		return
	}
	res, err := rs.svc.Create(c.Request.Context(), fields)
	if err != nil {
		rs.respondError(c, err)
		return
	}
	middleware.ObserveEntityOp(rs.svc.ModelName(), "create")
	ok(c, http.StatusCreated, res.Data, res.Message)
}

// createBulk godoc
//
//	@Summary     Create many items
//	@Description Persists a batch of items in one transaction; either all rows are written or none.
//	@Accept      json
//	@Produce     json
//	@Success     201 {object} Response
//	@Failure     400 {object} ErrorResponse
//	@Failure     409 {object} ErrorResponse
//	@Failure     422 {object} ErrorResponse
//	@Router      /{resource}/bulk [post]
func (rs *Resource[T, C, U]) createBulk(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unable to read request body")
		return
	}
	var batch []map[string]any
	if err := json.Unmarshal(raw, &batch); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "request body must be a JSON array of objects")
		return
	}
	var payloads []C
	if err := json.Unmarshal(raw, &payloads); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "request body must be a JSON array of objects")
		return
	}
	for i := range payloads {
		if err := binding.Validator.ValidateStruct(&payloads[i]); err != nil {
			details := validationDetails(err)
			for j := range details {
				details[j].Target = fmt.Sprintf("body[%d]", i)
			}
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, "payload failed validation", details...)
			return
		}
	}
	res, err := rs.svc.CreateMany(c.Request.Context(), batch)
	if err != nil {
		rs.respondError(c, err)
		return
	}
	middleware.ObserveEntityOp(rs.svc.ModelName(), "create_bulk")
	ok(c, http.StatusCreated, res.Data, res.Message)
}

// update godoc
//
//	@Summary     Partially update an item
//	@Description Applies only the keys present in the body. An empty body is rejected.
//	@Accept      json
//	@Produce     json
//	@Param       id path int true "Item id"
//	@Success     200 {object} Response
//	@Failure     400 {object} ErrorResponse
//	@Failure     404 {object} ErrorResponse
//	@Failure     409 {object} ErrorResponse
//	@Failure     422 {object} ErrorResponse
//	@Router      /{resource}/{id} [put]
func (rs *Resource[T, C, U]) update(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	fields, _, details, err := decodeBody[U](c)
	if err != nil {
		if details != nil {
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, "payload failed validation", details...)
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "request body must be a JSON object")
		return
	}
	res, err := rs.svc.Update(c.Request.Context(), id, fields)
	if err != nil {
		rs.respondError(c, err)
		return
	}
	middleware.ObserveEntityOp(rs.svc.ModelName(), "update")
	ok(c, http.StatusOK, res.Data, res.Message)
}

// softDelete godoc
//
//	@Summary     Soft delete an item
//	@Description Hides the item from default queries without removing the row.
//	@Produce     json
//	@Param       id path int true "Item id"
//	@Success     200 {object} Response
//	@Failure     404 {object} ErrorResponse
//	@Router      /{resource}/{id} [delete]
func (rs *Resource[T, C, U]) softDelete(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	res, err := rs.svc.SoftDelete(c.Request.Context(), id)
	if err != nil {
		rs.respondError(c, err)
		return
	}
	middleware.ObserveEntityOp(rs.svc.ModelName(), "soft_delete")
	ok(c, http.StatusOK, nil, res.Message)
}

// restore godoc
//
//	@Summary     Restore a soft-deleted item
//	@Produce     json
//	@Param       id path int true "Item id"
//	@Success     200 {object} Response
//	@Failure     404 {object} ErrorResponse
//	@Router      /{resource}/{id}/restore [patch]
func (rs *Resource[T, C, U]) restore(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	res, err := rs.svc.Restore(c.Request.Context(), id)
	if err != nil {
		rs.respondError(c, err)
		return
	}
	middleware.ObserveEntityOp(rs.svc.ModelName(), "restore")
	ok(c, http.StatusOK, nil, res.Message)
}

// forceDelete godoc
//
//	@Summary     Permanently delete an item
//	@Description Removes the row regardless of its soft-delete state.
//	@Produce     json
//	@Param       id path int true "Item id"
//	@Success     200 {object} Response
//	@Failure     404 {object} ErrorResponse
//	@Router      /{resource}/{id}/force [delete]
func (rs *Resource[T, C, U]) forceDelete(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	res, err := rs.svc.ForceDelete(c.Request.Context(), id)
	if err != nil {
		rs.respondError(c, err)
		return
	}
	middleware.ObserveEntityOp(rs.svc.ModelName(), "force_delete")
	ok(c, http.StatusOK, nil, res.Message)
}

// exists godoc
//
//	@Summary     Check whether an item exists
//	@Produce     json
//	@Param       id              path  int  true  "Item id"
//	@Param       include_deleted query bool false "Include soft-deleted items"
//	@Success     200 {object} Response
//	@Failure     400 {object} ErrorResponse
//	@Router      /{resource}/{id}/exists [get]
func (rs *Resource[T, C, U]) exists(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	res, err := rs.svc.Exists(c.Request.Context(), id, includeDeleted(c))
	if err != nil {
		rs.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, res.Data, res.Message)
}

// count godoc
//
//	@Summary     Count items
//	@Produce     json
//	@Param       include_deleted query bool false "Include soft-deleted items"
//	@Success     200 {object} Response
//	@Router      /{resource}/count [get]
func (rs *Resource[T, C, U]) count(c *gin.Context) {
	res, err := rs.svc.Count(c.Request.Context(), includeDeleted(c), nil)
	if err != nil {
		rs.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, res.Data, res.Message)
}

// search godoc
//
//	@Summary     Search items
//	@Description Substring search over the resource's configured text columns.
//	@Produce     json
//	@Param       q        query string true  "Search query"
//	@Param       page     query int    false "Page number (default 1)"
//	@Param       per_page query int    false "Items per page (1-100, default 10)"
//	@Success     200 {object} PaginatedResponse
//	@Failure     500 {object} ErrorResponse
//	@Router      /{resource}/search [get]
func (rs *Resource[T, C, U]) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query parameter 'q' is required")
		return
	}
	page := utils.AtoiDefault(c.Query("page"), repo.DefaultPage)
	perPage := utils.AtoiDefault(c.Query("per_page"), repo.DefaultPerPage)

	pr, err := rs.svc.Search(c.Request.Context(), query, page, perPage, includeDeleted(c))
	if err != nil {
		var re *repo.Error
		if errors.As(err, &re) && re.Kind == repo.KindConfig {
			fail(c, http.StatusInternalServerError, ErrCodeSearch, "search is not configured for this resource")
			return
		}
		rs.respondError(c, err)
		return
	}
	paginated(c, pr)
}

// modelFields godoc
//
//	@Summary     Get field definitions
//	@Description Introspects the entity and returns per-field types, requirements, and relationships.
//	@Produce     json
//	@Success     200 {object} Response
//	@Failure     500 {object} ErrorResponse
//	@Router      /{resource}/model/fields [get]
func (rs *Resource[T, C, U]) modelFields(c *gin.Context) {
	def := rs.definition()
	ok(c, http.StatusOK, def, fmt.Sprintf("Field definitions for %s retrieved successfully", def.ModelName))
}

// modelFormConfig godoc
//
//	@Summary     Get form configuration
//	@Description Returns the admin form layout, widget types, and sparse validation rules.
//	@Produce     json
//	@Success     200 {object} Response
//	@Failure     500 {object} ErrorResponse
//	@Router      /{resource}/model/form-config [get]
func (rs *Resource[T, C, U]) modelFormConfig(c *gin.Context) {
	def := rs.definition()
	cfg := schema.FormConfigOf(def, rs.basePath)
	ok(c, http.StatusOK, cfg, fmt.Sprintf("Form configuration for %s retrieved successfully", def.ModelName))
}

// modelSchemas godoc
//
//	@Summary     Get create/update schemas
//	@Description Returns the create and update payload shapes derived from the entity definition.
//	@Produce     json
//	@Success     200 {object} Response
//	@Failure     500 {object} ErrorResponse
//	@Router      /{resource}/model/schemas [get]
func (rs *Resource[T, C, U]) modelSchemas(c *gin.Context) {
	def := rs.definition()
	out := schema.SchemasOf(def)
	ok(c, http.StatusOK, out, fmt.Sprintf("Schemas for %s retrieved successfully", def.ModelName))
}

// definition introspects T freshly on every call so metadata endpoints never
// serve stale shapes.
func (rs *Resource[T, C, U]) definition() schema.Definition {
	var zero T
	return schema.DefinitionOf(zero)
}
