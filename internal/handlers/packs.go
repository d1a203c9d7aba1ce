package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/user/stickers-back/internal/cache"
	"github.com/user/stickers-back/internal/logger"
	"github.com/user/stickers-back/internal/models"
	"github.com/user/stickers-back/internal/packs"
)

// maxImageSize is the upload cap for icons and stickers (5MB).
const maxImageSize = 5 << 20

type PacksHandler struct {
	service *packs.Service
	cache   *cache.RedisCache
	log     *logger.Logger
}

func NewPacksHandler(service *packs.Service, cache *cache.RedisCache, log *logger.Logger) *PacksHandler {
	return &PacksHandler{
		service: service,
		cache:   cache,
		log:     log,
	}
}

func callerID(r *http.Request) string {
	id, _ := r.Context().Value("userID").(string)
	return id
}

// fail logs operator detail for non-client errors, then writes the mapped
// status with a safe message.
func (h *PacksHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, packs.ErrDependency) || !isClientError(err) {
		h.log.Error("pack request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	respondServiceError(w, err)
}

func isClientError(err error) bool {
	return errors.Is(err, packs.ErrValidation) ||
		errors.Is(err, packs.ErrNotFound) ||
		errors.Is(err, packs.ErrUnauthorized) ||
		errors.Is(err, packs.ErrForbidden) ||
		errors.Is(err, packs.ErrConflict)
}

func (h *PacksHandler) invalidate(r *http.Request, key string) {
	if h.cache != nil {
		h.cache.Delete(r.Context(), cache.PackKey(key))
	}
}

// formImage extracts an optional image upload from a parsed multipart form.
// Returns nil when the field is absent.
func formImage(r *http.Request, field string) (*models.ImagePayload, func(), error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	return &models.ImagePayload{
		Reader:      file,
		ContentType: header.Header.Get("Content-Type"),
	}, func() { file.Close() }, nil
}

// List returns one page of published, listed packs. Anonymous.
func (h *PacksHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	filter := packs.ListFilter{
		Search: r.URL.Query().Get("search"),
		Sort:   r.URL.Query().Get("sort"),
		Page:   page,
	}

	infos, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"packs": infos,
		"total": total,
	})
}

// GetPack returns the full projection, read through the cache.
func (h *PacksHandler) GetPack(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	if h.cache != nil {
		var cached models.PackDetail
		if err := h.cache.GetJSON(r.Context(), cache.PackKey(key), &cached); err == nil {
			respondJSON(w, http.StatusOK, &cached)
			return
		}
	}

	pack, err := h.service.GetPack(r.Context(), key)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if h.cache != nil {
		h.cache.SetJSON(r.Context(), cache.PackKey(key), pack, cache.PackTTL)
	}

	respondJSON(w, http.StatusOK, pack)
}

// GetPackInfo returns pack metadata without stickers.
func (h *PacksHandler) GetPackInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.GetPackInfo(r.Context(), r.PathValue("key"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

// GetStickers returns only the embedded sticker list.
func (h *PacksHandler) GetStickers(w http.ResponseWriter, r *http.Request) {
	stickers, err := h.service.GetStickers(r.Context(), r.PathValue("key"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stickers)
}

// GetSticker returns one sticker by exact name.
func (h *PacksHandler) GetSticker(w http.ResponseWriter, r *http.Request) {
	sticker, err := h.service.GetSticker(r.Context(), r.PathValue("key"), r.PathValue("name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sticker)
}

// CreatePack creates a new unpublished pack from multipart fields plus a
// required icon file.
func (h *PacksHandler) CreatePack(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid body data")
		return
	}

	icon, closeIcon, err := formImage(r, "icon")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid body data")
		return
	}
	defer closeIcon()

	input := models.CreatePackInput{
		Name:        r.FormValue("name"),
		Key:         r.FormValue("key"),
		Description: r.FormValue("description"),
		Icon:        icon,
	}

	pack, err := h.service.Create(r.Context(), callerID(r), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, pack)
}

// Publish flips the pack public.
func (h *PacksHandler) Publish(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	pack, err := h.service.Publish(r.Context(), callerID(r), key)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.invalidate(r, key)
	respondJSON(w, http.StatusOK, pack)
}

// AddSticker adds one sticker from a multipart form holding either a raw
// image file or a url field.
func (h *PacksHandler) AddSticker(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid body data")
		return
	}

	file, closeFile, err := formImage(r, "sticker")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid body data")
		return
	}
	defer closeFile()

	input := models.AddStickerInput{
		Name: r.FormValue("name"),
		File: file,
		URL:  r.FormValue("url"),
	}

	sticker, err := h.service.AddSticker(r.Context(), callerID(r), key, input)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.invalidate(r, key)
	respondJSON(w, http.StatusCreated, sticker)
}

// IncrementUse bumps a sticker's use counter. Reached only through the bot
// middleware.
func (h *PacksHandler) IncrementUse(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	sticker, err := h.service.IncrementUse(r.Context(), key, r.PathValue("name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.invalidate(r, key)
	respondJSON(w, http.StatusOK, sticker)
}

// UpdatePack edits pack metadata; the icon file is optional.
func (h *PacksHandler) UpdatePack(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid body data")
		return
	}

	icon, closeIcon, err := formImage(r, "icon")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid body data")
		return
	}
	defer closeIcon()

	input := models.UpdatePackInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Icon:        icon,
	}

	info, err := h.service.UpdateMetadata(r.Context(), callerID(r), key, input)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.invalidate(r, key)
	respondJSON(w, http.StatusOK, info)
}

// EditSticker renames a sticker.
func (h *PacksHandler) EditSticker(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid body data")
		return
	}

	if err := h.service.EditStickerName(r.Context(), callerID(r), key, r.PathValue("name"), body.Name); err != nil {
		h.fail(w, r, err)
		return
	}

	h.invalidate(r, key)
	respondMessage(w, "Successfully updated sticker")
}

// DeletePack cancels creation of an unpublished pack.
func (h *PacksHandler) DeletePack(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	if err := h.service.CancelCreation(r.Context(), callerID(r), key); err != nil {
		h.fail(w, r, err)
		return
	}

	h.invalidate(r, key)
	respondMessage(w, "Successfully cancelled creation of pack")
}

// DeleteSticker removes a sticker and its asset.
func (h *PacksHandler) DeleteSticker(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	if err := h.service.DeleteSticker(r.Context(), callerID(r), key, r.PathValue("name")); err != nil {
		h.fail(w, r, err)
		return
	}

	h.invalidate(r, key)
	respondMessage(w, "Successfully deleted sticker")
}
