package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/leadtriage/backend/internal/blob"
	"github.com/leadtriage/backend/internal/models"
)

// Persister loads and saves the whole lead collection. found is false only
// when nothing has ever been saved.
type Persister interface {
	Load(ctx context.Context) (leads []models.Lead, found bool, err error)
	Save(ctx context.Context, leads []models.Lead) error
}

// SeedProvider supplies the initial collection when nothing is persisted.
type SeedProvider interface {
	Seed(ctx context.Context) ([]models.Lead, error)
}

type snapshot struct {
	Leads []models.Lead `json:"leads"`
}

// BlobPersister keeps the collection as one JSON document under Key.
type BlobPersister struct {
	Blobs blob.Store
	Key   string
}

func (p BlobPersister) Load(ctx context.Context) ([]models.Lead, bool, error) {
	b, err := p.Blobs.Get(ctx, p.Key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: load: %w", err)
	}
	if len(b) == 0 {
		return []models.Lead{}, true, nil
	}
	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, true, fmt.Errorf("store: decode %s: %w", p.Key, err)
	}
	if snap.Leads == nil {
		snap.Leads = []models.Lead{}
	}
	return snap.Leads, true, nil
}

func (p BlobPersister) Save(ctx context.Context, leads []models.Lead) error {
	if leads == nil {
		leads = []models.Lead{}
	}
	b, err := json.Marshal(snapshot{Leads: leads})
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	if err := p.Blobs.Put(ctx, p.Key, b); err != nil {
		return fmt.Errorf("store: save: %w", err)
	}
	return nil
}
