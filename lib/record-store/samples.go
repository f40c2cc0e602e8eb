package recordstore

import (
	"context"

	"hr-docgen-backend/models"

	"github.com/pkg/errors"
)

// ReadSamples loads an experience pool. Rows without a company are ignored.
func ReadSamples(path string) ([]models.ExperienceSample, error) {
	ds, err := NewInstance(path).Read()
	if err != nil {
		return nil, err
	}
	list := make([]models.ExperienceSample, 0, len(ds.Rows))
	for _, rec := range ds.Rows {
		sample := models.SampleFromRecord(rec)
		if sample.Company == "" {
			continue
		}
		list = append(list, sample)
	}
	return list, nil
}

// AppendSample adds one entry to an existing experience pool.
func AppendSample(ctx context.Context, path string, sample models.ExperienceSample) error {
	store := NewInstance(path)
	if _, err := store.Read(); err != nil {
		return errors.Wrap(err, "experience pool unavailable")
	}
	return store.Append(ctx, sample.ToRecord())
}
