package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	appconfig "dateflix-backend/internal/config"
	"dateflix-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const (
	posterURLExpiry = time.Hour
	maxPosterBytes  = 10 << 20
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type objectPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// PosterArchive copies a matched movie's poster into S3 so the match view
// keeps its artwork even if the catalog image goes away.
type PosterArchive struct {
	objects      objectPutter
	presigner    objectPresigner
	matches      MatchStore
	bucket       string
	imageBaseURL string
	httpClient   *http.Client
}

// NewPosterArchive creates an archive backed by the configured bucket
func NewPosterArchive(ctx context.Context, cfg appconfig.AWSConfig, imageBaseURL string, matches MatchStore) (*PosterArchive, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return newPosterArchive(client, s3.NewPresignClient(client), matches, cfg.S3Bucket, imageBaseURL), nil
}

func newPosterArchive(objects objectPutter, presigner objectPresigner, matches MatchStore, bucket, imageBaseURL string) *PosterArchive {
	return &PosterArchive{
		objects:      objects,
		presigner:    presigner,
		matches:      matches,
		bucket:       bucket,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// MatchCreated archives the poster of the matched movie
func (a *PosterArchive) MatchCreated(ctx context.Context, match *models.Match, _ string) {
	key, err := a.Archive(ctx, match)
	if err != nil {
		log.Warn().Err(err).Str("match_id", match.ID).Int64("movie_id", match.MovieID).Msg("Failed to archive poster")
		return
	}
	if key == "" {
		return
	}
	if err := a.matches.SetPosterKey(ctx, match.ID, key); err != nil {
		log.Warn().Err(err).Str("match_id", match.ID).Msg("Failed to record archived poster")
	}
}

// SessionCreated is a no-op for the archive
func (a *PosterArchive) SessionCreated(context.Context, *models.Session, string) {}

// Archive downloads the poster and stores it under posters/{movie_id}{ext}.
// It returns an empty key when the movie has no poster.
func (a *PosterArchive) Archive(ctx context.Context, match *models.Match) (string, error) {
	posterPath := match.MovieData.PosterPath
	if posterPath == "" {
		return "", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.imageBaseURL+posterPath, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build poster request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download poster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("poster download returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPosterBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read poster: %w", err)
	}
	if len(data) > maxPosterBytes {
		return "", fmt.Errorf("poster exceeds %d bytes", maxPosterBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	ext := path.Ext(posterPath)
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("posters/%d%s", match.MovieID, ext)

	_, err = a.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload poster: %w", err)
	}

	log.Info().Str("match_id", match.ID).Str("key", key).Msg("Poster archived")
	return key, nil
}

// PosterURL returns a pre-signed download URL for an archived poster
func (a *PosterArchive) PosterURL(ctx context.Context, key string) (string, error) {
	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = posterURLExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}
	return req.URL, nil
}
