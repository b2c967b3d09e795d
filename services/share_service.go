package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kamaubrian/study_pal/database"
	"github.com/kamaubrian/study_pal/models"
	"github.com/kamaubrian/study_pal/notifications"
	"github.com/kamaubrian/study_pal/utils"
)

const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
	ChannelPrint    = "print"
)

// ShareService records distribution of an assessment as append-only share
// events. Events are analytics, never access control: the share link alone
// admits a link holder.
type ShareService struct {
	store   *database.AssessmentStore
	gate    *AccessGate
	printer *PrintService
}

func NewShareService(store *database.AssessmentStore, gate *AccessGate, printer *PrintService) *ShareService {
	return &ShareService{store: store, gate: gate, printer: printer}
}

// ShareOutcome carries what the caller needs to finish distribution on its
// side: the share link always, and a hosted sheet URL for the print channel.
type ShareOutcome struct {
	Event     *models.ShareEvent `json:"event"`
	ShareLink string             `json:"share_link"`
	SheetURL  string             `json:"sheet_url,omitempty"`
}

// Share records a share event for the owner. Email sends the link to the
// recipient; print renders and hosts a PDF sheet; whatsapp only logs the
// event, since delivery happens client-side through a wa.me link.
func (s *ShareService) Share(assessmentID uuid.UUID, channel string, recipient *string, caller CallerIdentity) (*ShareOutcome, error) {
	assessment, err := s.store.GetByID(assessmentID)
	if err != nil {
		return nil, err
	}
	if caller.IsAnonymous() || caller.UserID != assessment.OwnerID {
		return nil, utils.ErrForbidden
	}

	outcome := &ShareOutcome{ShareLink: assessment.ShareLink}

	switch channel {
	case ChannelEmail:
		if recipient == nil || *recipient == "" {
			return nil, fmt.Errorf("%w: email channel requires a recipient", utils.ErrInvalidParameters)
		}
		subject := fmt.Sprintf("A %s practice assessment was shared with you", assessment.SubjectName)
		body := fmt.Sprintf(
			"<h1>%s</h1><p>A practice assessment has been shared with you.</p><p><a href='%s'>Open the assessment</a></p>",
			assessment.Title, assessment.ShareLink,
		)
		go notifications.SendEmail("", *recipient, subject, body)
	case ChannelWhatsApp:
		// Delivery is a client-side wa.me link; only the event is ours.
	case ChannelPrint:
		sheetURL, err := s.printer.GeneratePrintable(assessment)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrStorage, err)
		}
		outcome.SheetURL = sheetURL
	default:
		return nil, fmt.Errorf("%w: unknown share channel %q", utils.ErrInvalidParameters, channel)
	}

	event := &models.ShareEvent{
		AssessmentID: assessment.ID,
		Channel:      channel,
		Recipient:    recipient,
	}
	if err := s.store.RecordShareEvent(event); err != nil {
		return nil, err
	}
	outcome.Event = event
	return outcome, nil
}

// History lists the share events of an assessment, owner-only.
func (s *ShareService) History(assessmentID uuid.UUID, caller CallerIdentity) ([]models.ShareEvent, error) {
	assessment, err := s.store.GetByID(assessmentID)
	if err != nil {
		return nil, err
	}
	if caller.IsAnonymous() || caller.UserID != assessment.OwnerID {
		return nil, utils.ErrForbidden
	}
	return s.store.ListShareEvents(assessmentID)
}
