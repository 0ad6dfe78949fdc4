// Package resolver implements the Species Resolver of spec §4.5:
// guarantees at most one Species row per normalized scientific name,
// inserting with defaults or enriching an existing row as needed.
// Grounded on the teacher's repository-and-service layering, in particular
// the idempotent get-or-create pattern its enrollment services use.
package resolver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	speciesdomain "github.com/ssingh-rookie/LeafWise-API/internal/domain/species"
	speciesrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/species"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
	"github.com/ssingh-rookie/LeafWise-API/internal/providers"
)

type Resolver interface {
	// Resolve guarantees at most one Species row for the normalized
	// scientific name in suggestion and returns its stable id. Failures
	// are logged and surfaced to the caller but are never fatal to the
	// pipeline that calls it (spec §4.6: "failures non-fatal").
	Resolve(ctx context.Context, suggestion providers.IdentificationSuggestion) (uuid.UUID, error)
}

type resolver struct {
	log  *logger.Logger
	repo speciesrepo.Repo
}

func New(repo speciesrepo.Repo, baseLog *logger.Logger) Resolver {
	return &resolver{log: baseLog.With("component", "species_resolver"), repo: repo}
}

// Normalize lowercases, trims, and collapses internal whitespace to a
// single space, per spec §4.5 step 1.
func Normalize(scientificName string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(scientificName)))
	return strings.Join(fields, " ")
}

func (r *resolver) Resolve(ctx context.Context, suggestion providers.IdentificationSuggestion) (uuid.UUID, error) {
	normalized := Normalize(suggestion.ScientificName)

	existing, err := r.repo.GetByNormalizedName(ctx, nil, normalized)
	if err != nil {
		return uuid.Nil, err
	}

	if existing == nil {
		created, err := r.repo.Create(ctx, nil, newSpeciesRow(normalized, suggestion))
		if err != nil {
			return uuid.Nil, err
		}
		return created.ID, nil
	}

	updates := enrichmentUpdates(existing, suggestion)
	if len(updates) > 0 {
		if err := r.repo.Update(ctx, nil, existing.ID, updates); err != nil {
			r.log.Warn("species enrichment update failed", "speciesId", existing.ID, "error", err)
		}
	}
	return existing.ID, nil
}

// newSpeciesRow builds the insert per spec §4.5 step 3: ScientificName and
// Family default to "Unknown" when missing, difficulty to "moderate", and
// genus to the first whitespace-delimited token of the normalized name,
// title-cased. Description, Toxicity and PlantIDSpeciesID are stored as
// given (empty when missing), so enrichmentUpdates can fill them later.
func newSpeciesRow(normalized string, s providers.IdentificationSuggestion) *speciesdomain.Species {
	genus := orUnknown(s.Genus)
	if genus == "Unknown" {
		if fields := strings.Fields(normalized); len(fields) > 0 {
			genus = titleCase(fields[0])
		}
	}

	return &speciesdomain.Species{
		ScientificName:   orUnknown(s.ScientificName),
		NormalizedName:   normalized,
		CommonNames:      commonNamesJSON(s.CommonNames),
		Family:           orUnknown(s.Family),
		Genus:            genus,
		Difficulty:       speciesdomain.DifficultyModerate,
		Description:      s.Description,
		Toxicity:         s.Toxicity,
		PlantIDSpeciesID: s.PlantIDSpeciesID,
	}
}

// enrichmentUpdates computes the update set for an existing row per spec
// §4.5 step 4: set PlantIDSpeciesID/description/toxicity only when the
// existing value is null/empty; merge commonNames by case-insensitive set
// union preserving the existing items' order first.
func enrichmentUpdates(existing *speciesdomain.Species, s providers.IdentificationSuggestion) map[string]any {
	updates := map[string]any{}

	mergedNames := mergeCommonNames(existing.CommonNames, s.CommonNames)
	if mergedNames != nil {
		updates["common_names"] = mergedNames
	}
	if strings.TrimSpace(existing.Description) == "" && strings.TrimSpace(s.Description) != "" {
		updates["description"] = s.Description
	}
	if strings.TrimSpace(existing.Toxicity) == "" && strings.TrimSpace(s.Toxicity) != "" {
		updates["toxicity"] = s.Toxicity
	}
	if strings.TrimSpace(existing.PlantIDSpeciesID) == "" && strings.TrimSpace(s.PlantIDSpeciesID) != "" {
		updates["plant_id_species_id"] = s.PlantIDSpeciesID
	}

	return updates
}

func mergeCommonNames(existingJSON datatypes.JSON, incoming []string) datatypes.JSON {
	var existingNames []string
	_ = json.Unmarshal(existingJSON, &existingNames)

	seen := make(map[string]bool, len(existingNames))
	merged := make([]string, 0, len(existingNames)+len(incoming))
	for _, n := range existingNames {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, n)
	}

	changed := false
	for _, n := range incoming {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, n)
		changed = true
	}

	if !changed {
		return nil
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func commonNamesJSON(names []string) datatypes.JSON {
	if names == nil {
		names = []string{}
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
