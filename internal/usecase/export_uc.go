package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/adapter"
	"cledumemoire/internal/domain/ports/repository"
	"cledumemoire/internal/infra/logging"
	"cledumemoire/internal/infra/richtext"
)

type ExportUseCase interface {
	// MemoirePDF writes the PDF summary of a memoire visible to actor and
	// returns a file name for it.
	MemoirePDF(ctx context.Context, actor Actor, memoireID string, w io.Writer) (string, error)
	// ContentPDF typesets the thesis text written by userID and returns a
	// file name for it.
	ContentPDF(ctx context.Context, userID string, in ExportContentInput, w io.Writer) (string, error)
}

// ExportContentInput is the editor payload. Content may be HTML.
type ExportContentInput struct {
	Title   string
	Content string
}

var _ ExportUseCase = (*exportUC)(nil)

type exportUC struct {
	memoires  MemoireUseCase
	users     repository.UserRepository
	documents repository.DocumentRepository
	renderer  adapter.PDFRenderer
	log       *zerolog.Logger
}

func NewExportUseCase(memoires MemoireUseCase, users repository.UserRepository, documents repository.DocumentRepository, renderer adapter.PDFRenderer, logger *zerolog.Logger) ExportUseCase {
	return &exportUC{memoires: memoires, users: users, documents: documents, renderer: renderer, log: logging.Component(loggerOrNop(logger), "ExportUseCase")}
}

func (e *exportUC) ContentPDF(ctx context.Context, userID string, in ExportContentInput, w io.Writer) (string, error) {
	title := strings.TrimSpace(in.Title)
	body := richtext.PlainText(in.Content)
	if title == "" || body == "" {
		return "", fmt.Errorf("title and content are required: %w", domain.ErrInvalidArgument)
	}
	u, err := e.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return "", logFailure(ctx, e.log, "export_author", err)
	}

	doc := &adapter.ContentDocument{
		Title:       title,
		Author:      u.FirstName + " " + u.LastName,
		Institution: u.University,
		Body:        body,
		GeneratedAt: time.Now(),
	}
	if err := e.renderer.RenderContent(w, doc); err != nil {
		return "", logFailure(ctx, e.log, "render_content_pdf", err)
	}
	logging.With(ctx, e.log).Info().Str("user_id", u.ID).Int("chars", len(body)).Msg("content exported")
	return "Memoire_" + strings.Join(strings.Fields(u.LastName), "_") + ".pdf", nil
}

func (e *exportUC) MemoirePDF(ctx context.Context, actor Actor, memoireID string, w io.Writer) (string, error) {
	view, err := e.memoires.Visible(ctx, actor, memoireID)
	if err != nil {
		return "", err
	}
	docs, err := e.documents.ListByMemoires(ctx, repository.NoTX, []string{view.ID})
	if err != nil {
		return "", logFailure(ctx, e.log, "export_documents", err)
	}

	rep := &adapter.MemoireReport{
		Title:       view.Title,
		Description: view.Description,
		StudentName: fullName(view.Student),
		CoachName:   fullName(view.Coach),
		Status:      string(view.Status),
		Progress:    view.Progress,
		CurrentStep: view.CurrentStep,
		DueDate:     view.DueDate,
		GeneratedAt: time.Now(),
		Documents:   make([]adapter.ReportDocument, 0, len(docs)),
	}
	for _, d := range docs {
		rep.Documents = append(rep.Documents, adapter.ReportDocument{
			Name:      d.Name,
			Category:  d.Category,
			Version:   d.Version,
			Status:    string(d.Status),
			CreatedAt: d.CreatedAt,
		})
	}
	if err := e.renderer.RenderMemoire(w, rep); err != nil {
		return "", logFailure(ctx, e.log, "render_pdf", err)
	}
	return "memoire-" + view.ID + ".pdf", nil
}

func fullName(u *model.UserSummary) string {
	if u == nil {
		return ""
	}
	return u.FirstName + " " + u.LastName
}
