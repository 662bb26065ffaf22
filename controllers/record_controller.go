package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/aagaur/studiocms/media"
	"github.com/aagaur/studiocms/records"
	"github.com/aagaur/studiocms/utils"
)

// RecordController exposes CRUD endpoints for one collection.
type RecordController struct {
	svc    *records.Service
	limits media.Limits
}

func NewRecordController(svc *records.Service, limits media.Limits) *RecordController {
	return &RecordController{svc: svc, limits: limits}
}

// List returns every matching record as a JSON array.
func (r *RecordController) List(ctx *gin.Context) {
	col := r.svc.Collection()
	q := records.ListQuery{Equals: map[string]string{}}
	for field := range col.Filters {
		if v := strings.TrimSpace(ctx.Query(field)); v != "" {
			q.Equals[field] = v
		}
	}
	q.Page, q.PageSize = parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	list, err := r.svc.List(ctx.Request.Context(), q)
	if err != nil {
		r.fail(ctx, err)
		return
	}
	utils.Success(ctx, list)
}

func (r *RecordController) Get(ctx *gin.Context) {
	rec, err := r.svc.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		r.fail(ctx, err)
		return
	}
	utils.Success(ctx, rec)
}

// Create accepts multipart/form-data with files, or a JSON body without files.
func (r *RecordController) Create(ctx *gin.Context) {
	in, err := r.readInput(ctx)
	if err != nil {
		r.fail(ctx, err)
		return
	}
	rec, err := r.svc.Create(ctx.Request.Context(), in)
	if err != nil {
		r.fail(ctx, err)
		return
	}
	utils.Created(ctx, rec)
}

func (r *RecordController) Update(ctx *gin.Context) {
	in, err := r.readInput(ctx)
	if err != nil {
		r.fail(ctx, err)
		return
	}
	rec, err := r.svc.Update(ctx.Request.Context(), ctx.Param("id"), in)
	if err != nil {
		r.fail(ctx, err)
		return
	}
	utils.Success(ctx, rec)
}

func (r *RecordController) Delete(ctx *gin.Context) {
	if err := r.svc.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		r.fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": r.svc.Collection().Label + " removed"})
}

func (r *RecordController) readInput(ctx *gin.Context) (records.Input, error) {
	in := records.Input{Fields: map[string]interface{}{}}
	switch ctx.ContentType() {
	case binding.MIMEMultipartPOSTForm:
		form, err := ctx.MultipartForm()
		if err != nil {
			return in, &records.ValidationError{Message: "invalid multipart body"}
		}
		for k, vs := range form.Value {
			if len(vs) > 0 {
				in.Fields[k] = vs[0]
			}
		}
		files, err := media.FromMultipart(form, r.svc.Collection().Schema.Images.FileFields(), r.limits)
		if err != nil {
			return in, records.AsValidation(err)
		}
		in.Files = files
	case binding.MIMEJSON:
		if err := ctx.ShouldBindJSON(&in.Fields); err != nil {
			return in, &records.ValidationError{Message: "invalid JSON body"}
		}
	default:
		if err := ctx.Request.ParseForm(); err != nil {
			return in, &records.ValidationError{Message: "invalid form body"}
		}
		for k, vs := range ctx.Request.PostForm {
			if len(vs) > 0 {
				in.Fields[k] = vs[0]
			}
		}
	}
	return in, nil
}

// fail maps service errors to the error envelope.
func (r *RecordController) fail(ctx *gin.Context, err error) {
	label := r.svc.Collection().Label
	var ve *records.ValidationError
	var ue *media.UploadError
	var pe *records.PersistenceError
	switch {
	case errors.As(err, &ve):
		utils.Error(ctx, http.StatusBadRequest, 40020, ve.Error())
	case errors.Is(err, records.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40420, fmt.Sprintf("%s not found", label))
	case errors.As(err, &ue):
		utils.Logger.Error("media upload failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, 50021, "media upload failed", err)
	case errors.As(err, &pe):
		utils.Logger.Error("record store failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, 50020, "server error", err)
	default:
		utils.Logger.Error("request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, 50000, "server error", err)
	}
}

// parsePagination returns 0, 0 when the client did not ask for pages.
func parsePagination(pageStr, sizeStr string) (int, int) {
	size, err := strconv.Atoi(strings.TrimSpace(sizeStr))
	if err != nil || size <= 0 {
		return 0, 0
	}
	if size > 100 {
		size = 100
	}
	page, err := strconv.Atoi(strings.TrimSpace(pageStr))
	if err != nil || page <= 0 {
		page = 1
	}
	return page, size
}
