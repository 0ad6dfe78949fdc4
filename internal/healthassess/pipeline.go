// Package healthassess implements the Health Assessment endpoint's
// pipeline (SPEC_FULL.md supplement, built the same way as
// internal/identify's Identification Pipeline): route the health_assessment
// task, persist the resulting HealthIssue/TreatmentStep rows, respond.
package healthassess

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	healthdomain "github.com/ssingh-rookie/LeafWise-API/internal/domain/health"
	healthrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/health"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/apierr"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
	"github.com/ssingh-rookie/LeafWise-API/internal/providers"
	"github.com/ssingh-rookie/LeafWise-API/internal/router"
)

const maxDecodedImageBytes = 10 * 1024 * 1024

// ImageTooLargeError names the offending index, the same size cap
// internal/identify's pipeline enforces (spec §4.1 input normalization).
type ImageTooLargeError struct {
	Index int
}

func (e *ImageTooLargeError) Error() string {
	return fmt.Sprintf("image at index %d exceeds the 10MB size limit", e.Index)
}

func validateImageSizes(imagesBase64 []string) error {
	for i, img := range imagesBase64 {
		stripped := providers.StripDataURI(img)
		estimated := int(math.Ceil(float64(len(stripped)) * 0.75))
		if estimated > maxDecodedImageBytes {
			return &ImageTooLargeError{Index: i}
		}
	}
	return nil
}

// IssueResult pairs one persisted diagnosis with its ordered treatment
// steps; Result.Issues preserves the vendor/LLM's ranking order.
type IssueResult struct {
	Issue *healthdomain.Issue
	Steps []*healthdomain.Step
}

type Result struct {
	Issues   []IssueResult
	Provider string
}

type Pipeline struct {
	log        *logger.Logger
	router     *router.Router
	healthRepo healthrepo.Repo
}

func New(rt *router.Router, healthRepo healthrepo.Repo, baseLog *logger.Logger) *Pipeline {
	return &Pipeline{log: baseLog.With("component", "health_assessment_pipeline"), router: rt, healthRepo: healthRepo}
}

func (p *Pipeline) Run(ctx context.Context, userID, plantID uuid.UUID, imagesBase64 []string, symptomsDescription string) (*Result, error) {
	if err := validateImageSizes(imagesBase64); err != nil {
		var tooLarge *ImageTooLargeError
		if ok := asImageTooLarge(err, &tooLarge); ok {
			return nil, apierr.BadRequest("IMAGE_TOO_LARGE", tooLarge.Error(), err).WithDetails(map[string]any{"index": tooLarge.Index})
		}
		return nil, apierr.Internal(err)
	}

	res, err := p.router.AssessHealth(ctx, userID, imagesBase64, symptomsDescription)
	if err != nil {
		var aiErr *router.AIRouterError
		if ok := asAIRouterError(err, &aiErr); ok {
			return nil, apierr.AIUnavailable(aiErr.AttemptedProviders, aiErr)
		}
		return nil, apierr.Internal(err)
	}

	if len(res.Value.Diagnoses) == 0 {
		return &Result{Provider: res.Provider}, nil
	}

	issues := make([]IssueResult, 0, len(res.Value.Diagnoses))
	for _, diagnosis := range res.Value.Diagnoses {
		issue := &healthdomain.Issue{
			PlantID:    plantID,
			Diagnosis:  diagnosis.Name,
			Confidence: diagnosis.Confidence,
			Status:     healthdomain.StatusActive,
		}
		steps := make([]*healthdomain.Step, 0, len(diagnosis.Steps))
		for _, instruction := range diagnosis.Steps {
			steps = append(steps, &healthdomain.Step{Instruction: instruction})
		}

		createdIssue, createdSteps, err := p.healthRepo.CreateIssue(ctx, nil, issue, steps)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		issues = append(issues, IssueResult{Issue: createdIssue, Steps: createdSteps})
	}

	return &Result{Issues: issues, Provider: res.Provider}, nil
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
