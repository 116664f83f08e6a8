package ai

import (
	"context"

	"github.com/leadtriage/backend/internal/models"
)

// Qualifier scores a single lead against the BANT rubric.
type Qualifier interface {
	Qualify(ctx context.Context, lead models.Lead) (models.Qualification, error)
}

const systemInstruction = "You are a sales lead qualification assistant. Always respond with valid JSON only."
