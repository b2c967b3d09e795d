package services

import (
	"github.com/google/uuid"
	"github.com/kamaubrian/study_pal/models"
	"github.com/kamaubrian/study_pal/utils"
)

type Action string

const (
	ActionRead       Action = "read"
	ActionAnswer     Action = "answer"
	ActionSubmit     Action = "submit"
	ActionDelete     Action = "delete"
	ActionRegenerate Action = "regenerate"
)

// CallerIdentity describes who is asking. Owners carry their account id from
// the JWT; anonymous link holders carry the share token they arrived with.
type CallerIdentity struct {
	UserID     uuid.UUID
	ShareToken string
}

func OwnerIdentity(userID uuid.UUID) CallerIdentity {
	return CallerIdentity{UserID: userID}
}

func LinkHolderIdentity(token string) CallerIdentity {
	return CallerIdentity{ShareToken: token}
}

func (c CallerIdentity) IsAnonymous() bool {
	return c.UserID == uuid.Nil
}

// AccessGate decides what a caller may do with an assessment. The owner is
// allowed everything on its own assessments; a link holder may read always,
// and answer or submit only while the assessment is still open.
type AccessGate struct{}

func NewAccessGate() *AccessGate {
	return &AccessGate{}
}

func (g *AccessGate) Authorize(caller CallerIdentity, assessment *models.Assessment, action Action) error {
	if !caller.IsAnonymous() {
		if caller.UserID == assessment.OwnerID {
			return nil
		}
		return utils.ErrForbidden
	}

	if caller.ShareToken == "" || caller.ShareToken != assessment.ShareToken {
		return utils.ErrForbidden
	}

	switch action {
	case ActionRead:
		return nil
	case ActionAnswer, ActionSubmit:
		if assessment.Completed {
			return utils.ErrForbidden
		}
		return nil
	default:
		return utils.ErrForbidden
	}
}
