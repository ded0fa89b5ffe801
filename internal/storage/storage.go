package storage

import (
	"context"
	"errors"

	"poolDeployer/internal/model"
)

// Recorder persists the outcome of a deployment run.
type Recorder interface {
	Record(ctx context.Context, record model.DeploymentRecord) error
}

// MultiRecorder fans a record out to every recorder and joins their errors.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(ctx context.Context, record model.DeploymentRecord) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Record(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
