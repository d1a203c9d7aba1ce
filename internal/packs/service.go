package packs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/user/stickers-back/internal/logger"
	"github.com/user/stickers-back/internal/models"
)

// MaxStickers is the hard cap on a pack's embedded sticker list.
const MaxStickers = 400

// MinStickersToPublish is the minimum list size before a pack may go public.
const MinStickersToPublish = 4

// BanCreatePack is the moderation ban blocking pack creation and publishing.
const BanCreatePack = "CREATE_STICKER_PACK"

// PackStore is the aggregate persistence contract.
type PackStore interface {
	GetByKey(ctx context.Context, key string) (*models.StickerPack, error)
	List(ctx context.Context, filter ListFilter) ([]*models.StickerPack, int, error)
	Create(ctx context.Context, pack *models.StickerPack) error
	Save(ctx context.Context, pack *models.StickerPack) error
	Delete(ctx context.Context, key string) error
}

// AssetStore uploads and removes image blobs, returning stable URLs.
type AssetStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// BanStore answers moderation-ban lookups for a user.
type BanStore interface {
	HasBan(ctx context.Context, userID, ban string) (bool, error)
}

// VoteGate confirms a user performed a qualifying vote within the last 24h.
type VoteGate interface {
	Enabled() bool
	HasVoted(ctx context.Context, userID string) (bool, error)
}

// Notifier broadcasts pack lifecycle events to connected frontends.
type Notifier interface {
	Broadcast(event string, data interface{})
}

// Realtime event types.
const (
	EventPackPublished  = "PACK_PUBLISHED"
	EventPackDeleted    = "PACK_DELETED"
	EventStickerAdded   = "STICKER_ADDED"
	EventStickerDeleted = "STICKER_DELETED"
)

// Service owns the sticker-pack aggregate lifecycle and every invariant that
// must hold across its mutations.
type Service struct {
	store    PackStore
	assets   AssetStore
	bans     BanStore
	votes    VoteGate
	notifier Notifier
	validate *validator.Validate
	log      *logger.Logger
	now      func() time.Time
}

func NewService(store PackStore, assets AssetStore, bans BanStore, votes VoteGate, notifier Notifier, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		assets:   assets,
		bans:     bans,
		votes:    votes,
		notifier: notifier,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
	}
}

// List returns one page of published, listed packs without sticker bodies.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.PackInfo, int, error) {
	filter.Search = collapseWhitespace(filter.Search)

	packs, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]models.PackInfo, 0, len(packs))
	for _, pack := range packs {
		infos = append(infos, infoView(pack))
	}
	return infos, total, nil
}

// GetPack returns the full projection including stickers.
func (s *Service) GetPack(ctx context.Context, key string) (*models.PackDetail, error) {
	pack, err := s.store.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return detailView(pack), nil
}

// GetPackInfo returns the metadata projection, stickers stripped.
func (s *Service) GetPackInfo(ctx context.Context, key string) (*models.PackInfo, error) {
	pack, err := s.store.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	info := infoView(pack)
	return &info, nil
}

// GetStickers returns only the embedded sticker list.
func (s *Service) GetStickers(ctx context.Context, key string) ([]models.Sticker, error) {
	pack, err := s.store.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if pack.Stickers == nil {
		return []models.Sticker{}, nil
	}
	return pack.Stickers, nil
}

// GetSticker returns a single sticker by exact name.
func (s *Service) GetSticker(ctx context.Context, key, name string) (*models.Sticker, error) {
	pack, err := s.store.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	i := findSticker(pack, name)
	if i < 0 {
		return nil, failf(ErrNotFound, "sticker pack does not contain a sticker with that name")
	}
	sticker := pack.Stickers[i]
	return &sticker, nil
}

// Create builds a new unpublished pack owned by the caller. The icon is
// uploaded before anything is persisted; an upload failure aborts the whole
// operation.
func (s *Service) Create(ctx context.Context, callerID string, in models.CreatePackInput) (*models.PackDetail, error) {
	if callerID == "" {
		return nil, failf(ErrUnauthorized, "unauthorized")
	}

	in.Name = collapseWhitespace(in.Name)
	in.Key = collapseWhitespace(in.Key)
	in.Description = collapseWhitespace(in.Description)

	if err := s.validate.Struct(in); err != nil {
		return nil, failf(ErrValidation, "invalid body data")
	}
	if !keyPattern.MatchString(in.Key) {
		return nil, failf(ErrValidation, "sticker pack key must contain lowercase letters and numbers only")
	}
	if in.Icon == nil {
		return nil, failf(ErrValidation, "an icon image is required")
	}

	if err := s.requireNotBanned(ctx, callerID); err != nil {
		return nil, err
	}

	// Service-level existence check for a clean error; the unique index on
	// key remains the backstop under concurrent creates.
	if _, err := s.store.GetByKey(ctx, in.Key); err == nil {
		return nil, failf(ErrConflict, "there is already a sticker pack with that key")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if s.votes != nil && s.votes.Enabled() {
		voted, err := s.votes.HasVoted(ctx, callerID)
		if err != nil {
			return nil, failf(ErrDependency, "vote check failed")
		}
		if !voted {
			return nil, failf(ErrForbidden, "user has not voted today")
		}
	}

	now := s.now()
	iconURL, err := s.assets.Upload(ctx, fmt.Sprintf("%s-ICON-%d", in.Key, now.UnixMilli()), in.Icon.ContentType, in.Icon.Reader)
	if err != nil {
		return nil, failf(ErrDependency, "icon upload failed")
	}

	pack := &models.StickerPack{
		ID:          uuid.New(),
		Key:         in.Key,
		Name:        in.Name,
		Description: in.Description,
		Icon:        &iconURL,
		Published:   false,
		Listed:      true,
		CreatedAt:   now,
		CreatorID:   callerID,
		Stickers:    []models.Sticker{},
	}

	if err := s.store.Create(ctx, pack); err != nil {
		return nil, err
	}
	return detailView(pack), nil
}

// UpdateMetadata edits name, description and optionally the icon. The key is
// immutable and never revalidated.
func (s *Service) UpdateMetadata(ctx context.Context, callerID, key string, in models.UpdatePackInput) (*models.PackInfo, error) {
	in.Name = collapseWhitespace(in.Name)
	in.Description = collapseWhitespace(in.Description)

	if err := s.validate.Struct(in); err != nil {
		return nil, failf(ErrValidation, "invalid body data")
	}

	pack, err := s.getOwned(ctx, callerID, key)
	if err != nil {
		return nil, err
	}

	pack.Name = in.Name
	pack.Description = in.Description

	if in.Icon != nil {
		iconURL, err := s.assets.Upload(ctx, fmt.Sprintf("%s-ICON-%d", key, s.now().UnixMilli()), in.Icon.ContentType, in.Icon.Reader)
		if err != nil {
			return nil, failf(ErrDependency, "icon upload failed")
		}
		pack.Icon = &iconURL
	}

	if err := s.store.Save(ctx, pack); err != nil {
		return nil, err
	}
	info := infoView(pack)
	return &info, nil
}

// Publish flips the pack public. The transition is monotonic; nothing in this
// service ever reverses it.
func (s *Service) Publish(ctx context.Context, callerID, key string) (*models.PackDetail, error) {
	pack, err := s.getOwned(ctx, callerID, key)
	if err != nil {
		return nil, err
	}

	if len(pack.Stickers) < MinStickersToPublish {
		return nil, failf(ErrValidation, "at least %d stickers must be in this pack before publishing", MinStickersToPublish)
	}

	if err := s.requireNotBanned(ctx, callerID); err != nil {
		return nil, err
	}

	pack.Published = true
	if err := s.store.Save(ctx, pack); err != nil {
		return nil, err
	}

	s.broadcast(EventPackPublished, infoView(pack))
	return detailView(pack), nil
}

// CancelCreation destroys an unpublished pack entirely.
func (s *Service) CancelCreation(ctx context.Context, callerID, key string) error {
	pack, err := s.getOwned(ctx, callerID, key)
	if err != nil {
		return err
	}
	if pack.Published {
		return failf(ErrUnauthorized, "cannot cancel creation, pack already published")
	}

	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}

	s.broadcast(EventPackDeleted, map[string]string{"key": key})
	return nil
}

// AddSticker prepends a new sticker. Exactly one of a raw image or an
// external URL must be supplied; the raw path uploads before persisting.
func (s *Service) AddSticker(ctx context.Context, callerID, key string, in models.AddStickerInput) (*models.Sticker, error) {
	if in.Name == "" {
		return nil, failf(ErrValidation, "invalid body data")
	}
	if (in.File == nil) == (in.URL == "") {
		return nil, failf(ErrValidation, "either an image or a url must be provided")
	}
	if len(in.Name) > 20 {
		return nil, failf(ErrValidation, "sticker name cannot be longer than 20 characters")
	}
	if !stickerNamePattern.MatchString(in.Name) {
		return nil, failf(ErrValidation, "sticker name must contain lowercase letters and numbers only")
	}

	name := normalizeStickerName(in.Name)

	pack, err := s.getOwned(ctx, callerID, key)
	if err != nil {
		return nil, err
	}

	if findSticker(pack, name) >= 0 {
		return nil, failf(ErrConflict, "sticker pack already has a sticker with that name")
	}
	if len(pack.Stickers) >= MaxStickers {
		return nil, failf(ErrForbidden, "sticker pack has reached maximum amount of stickers (%d)", MaxStickers)
	}

	now := s.now()
	sticker := models.Sticker{
		Name:      name,
		Uses:      0,
		CreatorID: callerID,
		CreatedAt: now,
		GroupType: models.StickerGroupTypePack,
		GroupID:   pack.Key,
	}

	if in.File != nil {
		url, err := s.assets.Upload(ctx, fmt.Sprintf("%s-%d-%s", pack.Key, now.UnixMilli(), name), in.File.ContentType, in.File.Reader)
		if err != nil {
			return nil, failf(ErrDependency, "sticker upload failed")
		}
		sticker.URL = url
		sticker.CreatedVia = models.StickerCreatedViaWebsite
	} else {
		sticker.URL = in.URL
		sticker.CreatedVia = models.StickerCreatedViaDiscord
	}

	pack.Stickers = append([]models.Sticker{sticker}, pack.Stickers...)
	if err := s.store.Save(ctx, pack); err != nil {
		return nil, err
	}

	s.broadcast(EventStickerAdded, map[string]interface{}{"pack": pack.Key, "sticker": sticker})
	return &sticker, nil
}

// IncrementUse bumps a sticker's use counter by one. Invoked by the trusted
// bot, so there is no ownership check.
func (s *Service) IncrementUse(ctx context.Context, key, stickerName string) (*models.Sticker, error) {
	pack, err := s.store.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	i := findSticker(pack, stickerName)
	if i < 0 {
		return nil, failf(ErrNotFound, "sticker pack does not have a sticker with that name")
	}

	pack.Stickers[i].Uses++
	if err := s.store.Save(ctx, pack); err != nil {
		return nil, err
	}

	sticker := pack.Stickers[i]
	return &sticker, nil
}

// EditStickerName renames a sticker in place, keeping its position and all
// other fields. The new name must not collide with a sibling.
func (s *Service) EditStickerName(ctx context.Context, callerID, key, stickerName, newName string) error {
	if newName == "" {
		return failf(ErrValidation, "invalid body data")
	}
	if len(newName) > 20 {
		return failf(ErrValidation, "sticker name cannot be longer than 20 characters")
	}
	if !stickerNamePattern.MatchString(newName) {
		return failf(ErrValidation, "sticker name must contain lowercase letters and numbers only")
	}

	name := normalizeStickerName(newName)

	pack, err := s.getOwned(ctx, callerID, key)
	if err != nil {
		return err
	}

	i := findSticker(pack, stickerName)
	if i < 0 {
		return failf(ErrNotFound, "sticker pack does not have a sticker with that name")
	}
	if name != stickerName && findSticker(pack, name) >= 0 {
		return failf(ErrConflict, "sticker pack already has a sticker with that name")
	}

	pack.Stickers[i].Name = name
	return s.store.Save(ctx, pack)
}

// DeleteSticker removes a sticker and requests deletion of its asset. The
// asset deletion is fire-and-forget: a failure is logged and the removal from
// the pack proceeds.
func (s *Service) DeleteSticker(ctx context.Context, callerID, key, stickerName string) error {
	pack, err := s.getOwned(ctx, callerID, key)
	if err != nil {
		return err
	}

	i := findSticker(pack, stickerName)
	if i < 0 {
		return failf(ErrNotFound, "sticker pack does not have a sticker with that name")
	}

	if err := s.assets.Delete(ctx, pack.Stickers[i].URL); err != nil {
		s.log.Warn("failed to delete sticker asset", "pack", key, "sticker", stickerName, "error", err)
	}

	pack.Stickers = append(pack.Stickers[:i], pack.Stickers[i+1:]...)
	if err := s.store.Save(ctx, pack); err != nil {
		return err
	}

	s.broadcast(EventStickerDeleted, map[string]string{"pack": key, "sticker": stickerName})
	return nil
}

// getOwned loads the pack and enforces ownership. Existence is always
// checked first, so an ownership failure implies the pack exists.
func (s *Service) getOwned(ctx context.Context, callerID, key string) (*models.StickerPack, error) {
	pack, err := s.store.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if pack.CreatorID != callerID {
		return nil, failf(ErrUnauthorized, "unauthorized")
	}
	return pack, nil
}

func (s *Service) requireNotBanned(ctx context.Context, callerID string) error {
	banned, err := s.bans.HasBan(ctx, callerID, BanCreatePack)
	if err != nil {
		return failf(ErrDependency, "ban check failed")
	}
	if banned {
		return failf(ErrForbidden, "user is banned from creating sticker packs")
	}
	return nil
}

func (s *Service) broadcast(event string, data interface{}) {
	if s.notifier != nil {
		s.notifier.Broadcast(event, data)
	}
}

func findSticker(pack *models.StickerPack, name string) int {
	for i, sticker := range pack.Stickers {
		if sticker.Name == name {
			return i
		}
	}
	return -1
}
