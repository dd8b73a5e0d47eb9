package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/civeni/civeni-api/internal/api/handler/v1/response"
	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/service"
	"github.com/civeni/civeni-api/internal/storage"
)

const maxUploadSize = 10 << 20

type MediaService interface {
	Upload(ctx context.Context, objectPath, filename string, data []byte) (domain.MediaAsset, error)
	Get(ctx context.Context, id uuid.UUID) (domain.MediaAsset, error)
}

type ObjectReader interface {
	Get(p string) ([]byte, error)
}

type MediaHandler struct {
	svc     MediaService
	objects ObjectReader
}

func NewMediaHandler(svc MediaService, objects ObjectReader) *MediaHandler {
	return &MediaHandler{
		svc:     svc,
		objects: objects,
	}
}

func mediaResponse(a domain.MediaAsset) response.MediaResponse {
	return response.MediaResponse{MediaAsset: a, VersionedURL: a.VersionedURL()}
}

// HandleUpload godoc
// @Summary      Upload or replace an image
// @Description  The image is re-encoded, stored under path and its version bumped so cached urls change.
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file    true   "image"
// @Param        path  formData  string  false  "object path, e.g. banners/hero.jpg"
// @Success      201   {object}  response.MediaResponse
// @Failure      400   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /admin/media [post]
// @Security BearerAuth
func (h *MediaHandler) HandleUpload(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if header.Size > maxUploadSize {
		response.RenderErr(ctx, response.ErrPayloadTooLarge(fmt.Errorf("file exceeds %d bytes", maxUploadSize)))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	asset, err := h.svc.Upload(ctx.Request.Context(), ctx.PostForm("path"), path.Base(header.Filename), data)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedImage) || errors.Is(err, storage.ErrInvalidPath) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleUpload -> h.svc.Upload -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, mediaResponse(asset))
}

// HandleGetMedia godoc
// @Summary      Get a media asset
// @Tags         media
// @Produce      json
// @Param        id   path      string  true  "asset id"
// @Success      200  {object}  response.MediaResponse
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /media/{id} [get]
func (h *MediaHandler) HandleGetMedia(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	asset, err := h.svc.Get(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrMediaNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("media", "id", id))
			return
		}

		err = fmt.Errorf("v1.HandleGetMedia -> h.svc.Get -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, mediaResponse(asset))
}

// HandleServeObject streams a stored object. Versioned urls carry a query
// string, so the content can be cached for long.
func (h *MediaHandler) HandleServeObject(ctx *gin.Context) {
	key := ctx.Param("key")

	data, err := h.objects.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectAbsent) || errors.Is(err, storage.ErrInvalidPath) {
			response.RenderErr(ctx, response.ErrNotFound("object", "key", key))
			return
		}

		err = fmt.Errorf("v1.HandleServeObject -> h.objects.Get -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if ctx.Query("v") != "" {
		ctx.Header("Cache-Control", "public, max-age=31536000, immutable")
	}

	ctx.Data(http.StatusOK, contentType, data)
}
