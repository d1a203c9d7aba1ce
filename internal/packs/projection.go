package packs

import "github.com/user/stickers-back/internal/models"

// Boundary projections. Storage surrogate ids never cross here; the embedded
// sticker list is included only in the detail shape.

func infoView(pack *models.StickerPack) models.PackInfo {
	return models.PackInfo{
		Key:             pack.Key,
		Name:            pack.Name,
		Description:     pack.Description,
		Icon:            pack.Icon,
		Published:       pack.Published,
		Listed:          pack.Listed,
		SubscriberCount: pack.SubscriberCount,
		CreatedAt:       pack.CreatedAt,
		CreatorID:       pack.CreatorID,
	}
}

func detailView(pack *models.StickerPack) *models.PackDetail {
	stickers := pack.Stickers
	if stickers == nil {
		stickers = []models.Sticker{}
	}
	return &models.PackDetail{
		PackInfo: infoView(pack),
		Stickers: stickers,
	}
}
