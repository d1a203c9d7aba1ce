package models

import (
	"io"
	"time"

	"github.com/google/uuid"
)

const (
	// StickerCreatedViaWebsite marks stickers uploaded as raw images.
	StickerCreatedViaWebsite = "website"
	// StickerCreatedViaDiscord marks stickers submitted by URL through the bot.
	StickerCreatedViaDiscord = "discord"

	StickerGroupTypePack = "sticker-pack"
)

// StickerPack is the aggregate root. Stickers live embedded in the pack row
// and have no identity outside it.
type StickerPack struct {
	ID              uuid.UUID `json:"-"`
	Key             string    `json:"key"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Icon            *string   `json:"icon"`
	Published       bool      `json:"published"`
	Listed          bool      `json:"listed"`
	SubscriberCount int       `json:"subscriberCount"`
	CreatedAt       time.Time `json:"createdAt"`
	CreatorID       string    `json:"creatorId"`
	Stickers        []Sticker `json:"stickers"`
}

type Sticker struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Uses       int       `json:"uses"`
	CreatorID  string    `json:"creatorId"`
	CreatedAt  time.Time `json:"createdAt"`
	CreatedVia string    `json:"createdVia"`
	GroupType  string    `json:"groupType"`
	GroupID    string    `json:"groupId"`
}

// PackInfo is the boundary shape without the embedded sticker list.
type PackInfo struct {
	Key             string    `json:"key"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Icon            *string   `json:"icon"`
	Published       bool      `json:"published"`
	Listed          bool      `json:"listed"`
	SubscriberCount int       `json:"subscriberCount"`
	CreatedAt       time.Time `json:"createdAt"`
	CreatorID       string    `json:"creatorId"`
}

// PackDetail is the full boundary shape including stickers.
type PackDetail struct {
	PackInfo
	Stickers []Sticker `json:"stickers"`
}

// ImagePayload is a raw image arriving through the boundary.
type ImagePayload struct {
	Reader      io.Reader
	ContentType string
}

// Command inputs, normalized before validation.

type CreatePackInput struct {
	Name        string `validate:"required,max=60"`
	Key         string `validate:"required,max=8"`
	Description string `validate:"required,max=110"`
	Icon        *ImagePayload
}

type UpdatePackInput struct {
	Name        string `validate:"required,max=60"`
	Description string `validate:"required,max=110"`
	Icon        *ImagePayload
}

type AddStickerInput struct {
	Name string
	File *ImagePayload
	URL  string
}
