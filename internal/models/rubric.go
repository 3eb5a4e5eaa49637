package models

import (
	"time"

	"gorm.io/datatypes"
)

// RubricCriterion is one named, weighted criterion. Weights across a rubric
// sum to 1.0; the owning store enforces that, not the pipeline.
type RubricCriterion struct {
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// Rubric is an instructor-supplied, ordered set of evaluation criteria.
type Rubric struct {
	ID        uint                                 `gorm:"primaryKey" json:"id"`
	Name      string                               `gorm:"size:255;not null" json:"name"`
	Criteria  datatypes.JSONSlice[RubricCriterion] `json:"criteria"`
	CreatedAt time.Time                            `json:"created_at"`
	UpdatedAt time.Time                            `json:"updated_at"`
}
