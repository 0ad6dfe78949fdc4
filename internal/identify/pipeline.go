// Package identify implements the Identification Pipeline of spec §4.6:
// validate images, run the Router identification call and the photo
// upload in parallel, resolve a species, and shape the response. Grounded
// on the teacher's errgroup fan-out pattern in
// internal/modules/chat/steps/maintain.go, generalized from chunk
// embedding to a two-branch join.
package identify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ssingh-rookie/LeafWise-API/internal/domain/photo"
	photorepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/photo"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/apierr"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
	"github.com/ssingh-rookie/LeafWise-API/internal/providers"
	"github.com/ssingh-rookie/LeafWise-API/internal/resolver"
	"github.com/ssingh-rookie/LeafWise-API/internal/router"
	"github.com/ssingh-rookie/LeafWise-API/internal/storage"
)

const (
	maxDecodedImageBytes = 10 * 1024 * 1024
	lowConfidenceThreshold = 0.70
	maxAlternates          = 5
	signedURLTTL            = time.Hour
)

// Suggestion mirrors providers.IdentificationSuggestion plus the resolved
// species id, shaped for the wire response.
type Suggestion struct {
	SpeciesID      *uuid.UUID
	ScientificName string
	CommonNames    []string
	Confidence     float64
	Family         string
	Genus          string
}

type Result struct {
	SpeciesID         *uuid.UUID
	Top               Suggestion
	SimilarSpecies    []Suggestion // populated only when Top.Confidence < 0.70, truncated to <=5
	PhotoURL          string
	ThumbnailURL      string
	Provider          string
	ProcessingTimeMS  int64
}

type Pipeline struct {
	log       *logger.Logger
	router    *router.Router
	resolver  resolver.Resolver
	bucket    storage.Bucket
	photoRepo photorepo.Repo
}

func New(rt *router.Router, res resolver.Resolver, bucket storage.Bucket, photoRepo photorepo.Repo, baseLog *logger.Logger) *Pipeline {
	return &Pipeline{
		log:       baseLog.With("component", "identification_pipeline"),
		router:    rt,
		resolver:  res,
		bucket:    bucket,
		photoRepo: photoRepo,
	}
}

// ImageTooLargeError names the offending index per spec §4.6 step 1.
type ImageTooLargeError struct {
	Index int
}

func (e *ImageTooLargeError) Error() string {
	return fmt.Sprintf("image at index %d exceeds the 10MB size limit", e.Index)
}

// ImageCountError reports a request outside the 1-5 image range spec §4.6
// step 1 allows.
type ImageCountError struct {
	Count int
}

func (e *ImageCountError) Error() string {
	return fmt.Sprintf("identification accepts between 1 and 5 images, got %d", e.Count)
}

// Run executes the full pipeline for 1-5 normalized (data-URI-stripped)
// base64 images.
func (p *Pipeline) Run(ctx context.Context, userID uuid.UUID, imagesBase64 []string) (*Result, error) {
	started := time.Now()

	if err := validateImageSizes(imagesBase64); err != nil {
		var tooLarge *ImageTooLargeError
		if ok := asImageTooLarge(err, &tooLarge); ok {
			return nil, apierr.BadRequest("IMAGE_TOO_LARGE", tooLarge.Error(), err).WithDetails(map[string]any{"index": tooLarge.Index})
		}
		var countErr *ImageCountError
		if ok := asImageCountError(err, &countErr); ok {
			return nil, apierr.Validation(countErr.Error(), err)
		}
		return nil, apierr.Internal(err)
	}

	var (
		routerResult router.Result[providers.IdentificationResult]
		routerErr    error
		photoURL     string
		thumbURL     string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := p.router.Identify(gctx, userID, imagesBase64)
		routerResult, routerErr = res, err
		return nil // errors are handled explicitly below, not via errgroup cancellation
	})
	g.Go(func() error {
		photoURL, thumbURL = p.uploadFirstImage(gctx, userID, imagesBase64[0])
		return nil
	})
	_ = g.Wait()

	if routerErr != nil {
		var aiErr *router.AIRouterError
		if ok := asAIRouterError(routerErr, &aiErr); ok {
			return nil, apierr.AIUnavailable(aiErr.AttemptedProviders, aiErr)
		}
		return nil, apierr.Internal(routerErr)
	}

	top := routerResult.Value.Top
	speciesID, resolveErr := p.resolver.Resolve(ctx, top)
	var speciesIDPtr *uuid.UUID
	if resolveErr != nil {
		p.log.Warn("species resolution failed (non-fatal)", "error", resolveErr)
	} else {
		speciesIDPtr = &speciesID
	}

	result := &Result{
		SpeciesID:        speciesIDPtr,
		Top:              toSuggestion(top, speciesIDPtr),
		PhotoURL:         photoURL,
		ThumbnailURL:     thumbURL,
		Provider:         routerResult.Provider,
		ProcessingTimeMS: time.Since(started).Milliseconds(),
	}

	if top.Confidence < lowConfidenceThreshold {
		alternates := routerResult.Value.Alternates
		if len(alternates) > maxAlternates {
			alternates = alternates[:maxAlternates]
		}
		for _, alt := range alternates {
			result.SimilarSpecies = append(result.SimilarSpecies, toSuggestion(alt, nil))
		}
	}

	return result, nil
}

func toSuggestion(s providers.IdentificationSuggestion, speciesID *uuid.UUID) Suggestion {
	return Suggestion{
		SpeciesID:      speciesID,
		ScientificName: s.ScientificName,
		CommonNames:    s.CommonNames,
		Confidence:     s.Confidence,
		Family:         s.Family,
		Genus:          s.Genus,
	}
}

// uploadFirstImage is best-effort: on any failure both URLs come back
// empty and identification proceeds regardless (spec §4.6 step 2).
func (p *Pipeline) uploadFirstImage(ctx context.Context, userID uuid.UUID, imageBase64 string) (photoURL, thumbURL string) {
	decoded, err := decodeBase64Image(imageBase64)
	if err != nil {
		p.log.Warn("photo decode failed (non-fatal)", "error", err)
		return "", ""
	}

	ts := time.Now().UnixMilli()
	tempID := fmt.Sprintf("temp-%d", ts)
	key := fmt.Sprintf("%s/%s/identification-%d.jpg", userID.String(), tempID, ts)
	thumbKey := fmt.Sprintf("%s/%s/identification-%d-thumb.jpg", userID.String(), tempID, ts)

	if err := p.bucket.Put(ctx, key, bytesReader(decoded)); err != nil {
		p.log.Warn("photo upload failed (non-fatal)", "error", err)
		return "", ""
	}

	thumb, err := storage.Thumbnail(decoded)
	if err != nil {
		p.log.Warn("thumbnail generation failed (non-fatal)", "error", err)
	} else if err := p.bucket.Put(ctx, thumbKey, bytesReader(thumb)); err != nil {
		p.log.Warn("thumbnail upload failed (non-fatal)", "error", err)
		thumbKey = ""
	}

	photoURL, err = p.bucket.SignedURL(ctx, key, signedURLTTL)
	if err != nil {
		p.log.Warn("photo signed url failed (non-fatal)", "error", err)
		return "", ""
	}
	if thumbKey == "" {
		return photoURL, ""
	}
	thumbURL, err = p.bucket.SignedURL(ctx, thumbKey, signedURLTTL)
	if err != nil {
		p.log.Warn("thumbnail signed url failed (non-fatal)", "error", err)
		return photoURL, ""
	}

	if _, err := p.photoRepo.Create(ctx, nil, &photo.Photo{
		UserID:       userID,
		Kind:         photo.KindIdentification,
		BucketKey:    key,
		ThumbnailKey: thumbKey,
	}); err != nil {
		p.log.Warn("photo record create failed (non-fatal)", "error", err)
	}

	return photoURL, thumbURL
}

func asAIRouterError(err error, target **router.AIRouterError) bool {
	for err != nil {
		if re, ok := err.(*router.AIRouterError); ok {
			*target = re
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func asImageTooLarge(err error, target **ImageTooLargeError) bool {
	for err != nil {
		if ie, ok := err.(*ImageTooLargeError); ok {
			*target = ie
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func asImageCountError(err error, target **ImageCountError) bool {
	for err != nil {
		if ce, ok := err.(*ImageCountError); ok {
			*target = ce
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
