package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/signintech/gopdf"

	"clinical-intake/internal/advisory"
)

// TelegramClient is the delivery channel for clinician reports.
type TelegramClient interface {
	SendMessage(chatID int64, text string) error
	SendDocument(chatID int64, fileData []byte, fileName string) error
}

// Service renders advisory suggestions into a PDF report and delivers it to
// the configured clinician chat.
type Service struct {
	tgClient     TelegramClient
	doctorChatID int64
}

func NewService(tg TelegramClient, doctorChatID int64) *Service {
	return &Service{
		tgClient:     tg,
		doctorChatID: doctorChatID,
	}
}

var fontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

func (s *Service) SendAdvisoryReport(ctx context.Context, patientID string, suggestions []advisory.Suggestion) error {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return fmt.Errorf("failed to load report font, install ttf-dejavu: %w", fontErr)
	}

	if err := pdf.SetFont("DejaVu", "", 20); err != nil {
		return err
	}
	pdf.Cell(nil, "Clinical Intake Advisory Report")
	pdf.Br(30)

	if err := pdf.SetFont("DejaVu", "", 12); err != nil {
		return err
	}
	pdf.Cell(nil, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02 15:04")))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Patient ID: %s", patientID))
	pdf.Br(25)

	if err := pdf.SetFont("DejaVu", "", 14); err != nil {
		return err
	}
	pdf.Cell(nil, "Suggestions:")
	pdf.Br(15)

	if err := pdf.SetFont("DejaVu", "", 11); err != nil {
		return err
	}
	if len(suggestions) == 0 {
		pdf.Cell(nil, "- No evidence-backed suggestions were produced for this transcript.")
		pdf.Br(15)
	}
	for i, sg := range suggestions {
		line := fmt.Sprintf("%d. %s (confidence: %.2f)", i+1, sg.Text, sg.Confidence)
		writeWrapped(&pdf, line)
		for _, c := range sg.Citations {
			writeWrapped(&pdf, fmt.Sprintf("   source: %s", c.Source))
		}
		pdf.Br(8)
	}

	pdf.SetY(800)
	if err := pdf.SetFont("DejaVu", "", 9); err != nil {
		return err
	}
	pdf.Cell(nil, "Advisory only. Not a diagnosis. Review against the full transcript.")

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	fileName := fmt.Sprintf("advisory_%s.pdf", patientID)
	if err := s.tgClient.SendDocument(s.doctorChatID, buf.Bytes(), fileName); err != nil {
		return fmt.Errorf("deliver advisory report: %w", err)
	}
	return nil
}

func writeWrapped(pdf *gopdf.GoPdf, text string) {
	lines, _ := pdf.SplitText(text, 500)
	for _, l := range lines {
		pdf.Cell(nil, l)
		pdf.Br(12)
	}
}
