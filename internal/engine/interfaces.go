package engine

import (
	"github.com/Veraticus/paycapture/internal/model"
)

// Classifier recognizes payments in normalized notification content.
type Classifier interface {
	Classify(sourceID, content string) (*model.Classification, error)
}
