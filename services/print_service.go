package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/kamaubrian/study_pal/configs"
	"github.com/kamaubrian/study_pal/models"
)

// PrintService renders a printable answer sheet for an assessment and hosts
// it, so the "print" share channel hands back a URL instead of pushing a
// document through the API.
type PrintService struct{}

func NewPrintService() *PrintService {
	return &PrintService{}
}

// GeneratePrintable renders the assessment sheet to PDF and uploads it.
// Correct options and explanations never appear on the sheet.
func (p *PrintService) GeneratePrintable(assessment *models.Assessment) (string, error) {
	htmlData, err := renderAssessmentSheetHTML(assessment)
	if err != nil {
		return "", fmt.Errorf("failed to render assessment sheet: %v", err)
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		return "", fmt.Errorf("failed to generate PDF: %v", err)
	}

	return uploadToCloudinary(pdfBytes, assessment.ID.String())
}

func renderAssessmentSheetHTML(assessment *models.Assessment) (string, error) {
	tmpl, err := template.ParseFiles("templates/assessment_sheet.html")
	if err != nil {
		return "", err
	}

	type sheetQuestion struct {
		Number  int
		Prompt  string
		OptionA string
		OptionB string
		OptionC string
		OptionD string
	}

	questions := make([]sheetQuestion, len(assessment.Questions))
	for i, q := range assessment.Questions {
		questions[i] = sheetQuestion{
			Number:  i + 1,
			Prompt:  q.Prompt,
			OptionA: q.OptionA,
			OptionB: q.OptionB,
			OptionC: q.OptionC,
			OptionD: q.OptionD,
		}
	}

	data := struct {
		Title       string
		SubjectName string
		GradeLevel  string
		Date        string
		Questions   []sheetQuestion
	}{
		Title:       assessment.Title,
		SubjectName: assessment.SubjectName,
		GradeLevel:  assessment.GradeLevel,
		Date:        time.Now().Format("January 2, 2006"),
		Questions:   questions,
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadToCloudinary(fileBytes []byte, assessmentID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("sheets/%s_%s", assessmentID, uuid.New().String()),
		Folder:       "study_pal_sheets",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
