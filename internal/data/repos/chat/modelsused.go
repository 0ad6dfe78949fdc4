package chat

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// mergeModelsUsed adds model to the set encoded in existing, preserving
// insertion order and skipping duplicates.
func mergeModelsUsed(existing datatypes.JSON, model string) datatypes.JSON {
	var models []string
	if len(existing) > 0 {
		_ = json.Unmarshal(existing, &models)
	}
	if model == "" {
		b, _ := json.Marshal(models)
		return datatypes.JSON(b)
	}
	for _, m := range models {
		if m == model {
			b, _ := json.Marshal(models)
			return datatypes.JSON(b)
		}
	}
	models = append(models, model)
	b, _ := json.Marshal(models)
	return datatypes.JSON(b)
}
