package recordsapimodels

import "hr-docgen-backend/models"

type RecordsView struct {
	Columns []string        `json:"columns"`
	Rows    []models.Record `json:"rows"`
}
