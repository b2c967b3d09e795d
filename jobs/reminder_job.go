package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/kamaubrian/study_pal/database"
	"github.com/kamaubrian/study_pal/models"
	"github.com/kamaubrian/study_pal/notifications"
)

const reminderAge = 72 * time.Hour

// SendIncompleteAssessmentReminders emails parents whose saved assessments
// have sat unfinished for three days.
func SendIncompleteAssessmentReminders() {
	log.Println("Running job: SendIncompleteAssessmentReminders...")

	upperBound := time.Now().Add(-reminderAge)
	lowerBound := upperBound.Add(-24 * time.Hour)

	var staleAssessments []models.Assessment
	err := database.DB.
		Where("completed = ? AND created_at BETWEEN ? AND ?", false, lowerBound, upperBound).
		Find(&staleAssessments).Error
	if err != nil {
		log.Printf("Error checking for incomplete assessments: %v", err)
		return
	}

	if len(staleAssessments) == 0 {
		return
	}

	for _, assessment := range staleAssessments {
		var owner models.User
		if err := database.DB.First(&owner, "id = ?", assessment.OwnerID).Error; err != nil {
			log.Printf("Error loading owner for assessment %s: %v", assessment.ID, err)
			continue
		}

		emailSubject := "Reminder: An assessment is still waiting"
		emailBody := fmt.Sprintf(
			"<h1>Assessment Reminder</h1><p>Hi %s,</p><p>The assessment <b>%s</b> (%s) was created on %s and has not been completed yet.</p><p><a href='%s'>Continue the assessment</a></p>",
			owner.FullName,
			assessment.Title,
			assessment.SubjectName,
			assessment.CreatedAt.Format("January 2, 2006"),
			assessment.ShareLink,
		)

		go notifications.SendEmail(owner.FullName, owner.Email, emailSubject, emailBody)
	}

	log.Printf("Sent %d incomplete assessment reminders", len(staleAssessments))
}
