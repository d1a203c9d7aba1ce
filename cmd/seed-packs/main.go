package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/stickers-back/internal/config"
	"github.com/user/stickers-back/internal/models"
)

// Imports a directory of images as a published sticker pack. Usage:
//
//	seed-packs <dir> <key> [name]
func main() {
	ctx := context.Background()
	cfg := config.Load()

	if len(os.Args) < 3 {
		log.Fatal("usage: seed-packs <dir> <key> [name]")
	}
	stickerDir := os.Args[1]
	packKey := os.Args[2]
	packName := "Seeded Pack"
	if len(os.Args) > 3 {
		packName = os.Args[3]
	}

	if !regexp.MustCompile(`^[a-z0-9]{1,8}$`).MatchString(packKey) {
		log.Fatalf("invalid pack key %q", packKey)
	}

	// Connect to DB
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create S3 client
	s3Client := s3.New(s3.Options{
		Region:       cfg.S3Region,
		BaseEndpoint: aws.String(cfg.S3Endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		UsePathStyle: true,
	})

	cdnURL := cfg.S3CDNURL
	if cdnURL == "" {
		cdnURL = fmt.Sprintf("%s/%s", cfg.S3Endpoint, cfg.S3Bucket)
	}

	files, err := os.ReadDir(stickerDir)
	if err != nil {
		log.Fatalf("Failed to read sticker directory: %v", err)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name() < files[j].Name()
	})

	nameStrip := regexp.MustCompile(`[^a-z0-9]`)
	now := time.Now()

	var stickers []models.Sticker
	var iconURL *string

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		filename := file.Name()
		ext := strings.ToLower(filepath.Ext(filename))

		var contentType string
		switch ext {
		case ".jpg", ".jpeg":
			contentType = "image/jpeg"
		case ".webp":
			contentType = "image/webp"
		case ".png":
			contentType = "image/png"
		case ".gif":
			contentType = "image/gif"
		default:
			log.Printf("Skipping unsupported file: %s", filename)
			continue
		}

		name := nameStrip.ReplaceAllString(strings.ToLower(strings.TrimSuffix(filename, ext)), "")
		if name == "" || len(name) > 20 {
			log.Printf("Skipping file with unusable name: %s", filename)
			continue
		}

		fileData, err := os.Open(filepath.Join(stickerDir, filename))
		if err != nil {
			log.Printf("Failed to open %s: %v", filename, err)
			continue
		}

		s3Key := fmt.Sprintf("packs/%s-%d-%s%s", packKey, now.UnixMilli(), name, ext)
		_, err = s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(cfg.S3Bucket),
			Key:         aws.String(s3Key),
			Body:        fileData,
			ContentType: aws.String(contentType),
			ACL:         types.ObjectCannedACLPublicRead,
		})
		fileData.Close()
		if err != nil {
			log.Printf("Failed to upload %s: %v", filename, err)
			continue
		}

		fileURL := fmt.Sprintf("%s/%s", strings.TrimSuffix(cdnURL, "/"), s3Key)
		if iconURL == nil {
			iconURL = &fileURL
		}

		stickers = append(stickers, models.Sticker{
			Name:       name,
			URL:        fileURL,
			CreatorID:  "unknown",
			CreatedAt:  now,
			CreatedVia: models.StickerCreatedViaWebsite,
			GroupType:  models.StickerGroupTypePack,
			GroupID:    packKey,
		})
		log.Printf("Uploaded: %s as %q", filename, name)
	}

	if len(stickers) == 0 {
		log.Fatal("no stickers uploaded, not creating pack")
	}

	published := len(stickers) >= 4

	_, err = pool.Exec(ctx, `
		INSERT INTO sticker_packs (id, key, name, description, icon, published, listed, subscriber_count, created_at, creator_id, stickers)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, 0, $7, 'unknown', $8)
	`, uuid.New(), packKey, packName, "Imported sticker pack", iconURL, published, now, stickers)
	if err != nil {
		log.Fatalf("Failed to create sticker pack: %v", err)
	}

	log.Printf("Done! Created pack %q with %d stickers (published=%v)", packKey, len(stickers), published)
}
