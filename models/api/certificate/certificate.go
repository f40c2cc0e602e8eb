package certificateapimodels

import (
	"github.com/go-playground/validator/v10"
)

// SubmitRequest carries the specimen name and the [key] values. Any extra form field is
// a placeholder value too.
type SubmitRequest struct {
	Template       string `json:"template" form:"template"` // specimen name, "Page 1" by default
	CompanyName    string `json:"companyname" form:"companyname" validate:"required"`
	CompanyProject string `json:"companyproject" form:"companyproject"`
	Country        string `json:"country" form:"country"`
}

func (r SubmitRequest) Validate() error {
	return validator.New().Struct(r)
}
