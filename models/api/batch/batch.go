package batchapimodels

import (
	"github.com/go-playground/validator/v10"

	"hr-docgen-backend/lib/batch"
)

type StartRequest struct {
	PDF  *bool  `json:"pdf" query:"pdf"`                                               // convert to pdf, config default when empty
	Mode string `json:"mode" query:"mode" validate:"omitempty,oneof=merge individual"` // merge | individual
	Seed uint64 `json:"seed" query:"seed"`                                             // fixed random seed, 0 - random
}

func (r StartRequest) Validate() error {
	return validator.New().Struct(r)
}

type StartView struct {
	RunID string `json:"run_id"`
}

type StatusView struct {
	batch.Status
	Running bool `json:"running"`
}
