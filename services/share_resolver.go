package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/kamaubrian/study_pal/database"
	"github.com/kamaubrian/study_pal/models"
	"github.com/kamaubrian/study_pal/utils"
)

// resolverStrategy turns one spelling of a shared-link path segment into an
// assessment. Strategies are tried in order; new token schemes slot in as
// new strategies without touching call sites.
type resolverStrategy interface {
	Resolve(segment string) (*models.Assessment, error)
}

// ShareResolver accepts both link spellings in the wild: a bare assessment
// id and a token segment from a full share URL. Previously issued links keep
// working either way.
type ShareResolver struct {
	strategies []resolverStrategy
}

func NewShareResolver(store *database.AssessmentStore, baseURL string) *ShareResolver {
	return &ShareResolver{
		strategies: []resolverStrategy{
			&idStrategy{store: store},
			&shareLinkStrategy{store: store, baseURL: baseURL},
		},
	}
}

func (r *ShareResolver) Resolve(segment string) (*models.Assessment, error) {
	for _, strategy := range r.strategies {
		assessment, err := strategy.Resolve(segment)
		if err == nil {
			return assessment, nil
		}
		if !errors.Is(err, utils.ErrNotFound) {
			return nil, err
		}
	}
	return nil, utils.ErrNotFound
}

type idStrategy struct {
	store *database.AssessmentStore
}

func (s *idStrategy) Resolve(segment string) (*models.Assessment, error) {
	id, err := uuid.Parse(segment)
	if err != nil {
		return nil, utils.ErrNotFound
	}
	return s.store.GetByID(id)
}

type shareLinkStrategy struct {
	store   *database.AssessmentStore
	baseURL string
}

func (s *shareLinkStrategy) Resolve(segment string) (*models.Assessment, error) {
	return s.store.GetByShareLink(utils.ShareLink(s.baseURL, segment))
}
