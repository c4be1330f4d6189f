package pdf

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"cledumemoire/internal/domain/ports/adapter"
)

var _ adapter.PDFRenderer = (*Renderer)(nil)

// Renderer lays out thesis exports on A4 pages.
type Renderer struct {
	brand    string
	compress bool
}

func NewRenderer(brand string) *Renderer {
	if brand == "" {
		brand = "Clé du Mémoire"
	}
	return &Renderer{brand: brand, compress: true}
}

// RenderContent typesets a cover page (brand, title, author, institution
// and date) and then the body, justified, with "Page i / n" footers.
func (r *Renderer) RenderContent(w io.Writer, d *adapter.ContentDocument) error {
	if d == nil {
		return fmt.Errorf("pdf: nil document")
	}
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(r.compress)
	doc.SetMargins(18, 18, 18)
	doc.SetAutoPageBreak(true, 22)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetTitle(tr(d.Title), false)
	doc.SetAuthor(tr(d.Author), false)
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-18)
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d / {nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})

	institution := d.Institution
	if strings.TrimSpace(institution) == "" {
		institution = "Université"
	}
	doc.AddPage()
	doc.SetY(50)
	doc.SetFont("Helvetica", "B", 24)
	doc.MultiCell(0, 12, tr(r.brand), "", "C", false)
	doc.Ln(14)
	doc.SetFont("Helvetica", "B", 20)
	doc.MultiCell(0, 10, tr(d.Title), "", "C", false)
	doc.SetY(150)
	doc.SetFont("Helvetica", "", 14)
	doc.MultiCell(0, 8, tr("Auteur : "+d.Author), "", "C", false)
	doc.Ln(4)
	doc.MultiCell(0, 8, tr("Institution : "+institution), "", "C", false)
	doc.SetY(235)
	doc.SetFont("Helvetica", "", 12)
	doc.MultiCell(0, 8, tr("Généré le : "+d.GeneratedAt.Format("02/01/2006")), "", "C", false)

	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	for _, para := range strings.Split(d.Body, "\n\n") {
		doc.MultiCell(0, 6.5, tr(para), "", "J", false)
		doc.Ln(3)
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("pdf output: %w", err)
	}
	return nil
}

func (r *Renderer) RenderMemoire(w io.Writer, rep *adapter.MemoireReport) error {
	if rep == nil {
		return fmt.Errorf("pdf: nil report")
	}
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(r.compress)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetTitle(tr(rep.Title), false)
	doc.SetAuthor(tr(r.brand), false)
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont("Helvetica", "I", 8)
		doc.CellFormat(0, 10, fmt.Sprintf("%s - page %d/{nb}", tr(r.brand), doc.PageNo()), "", 0, "C", false, 0, "")
	})

	doc.AddPage()
	doc.SetFont("Helvetica", "B", 18)
	doc.MultiCell(0, 9, tr(orDash(rep.Title)), "", "L", false)
	doc.Ln(2)
	doc.SetFont("Helvetica", "", 11)
	if rep.Description != "" {
		doc.MultiCell(0, 6, tr(rep.Description), "", "L", false)
		doc.Ln(4)
	}

	field := func(label, value string) {
		doc.SetFont("Helvetica", "B", 11)
		doc.CellFormat(45, 7, tr(label), "", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 11)
		doc.CellFormat(0, 7, tr(orDash(value)), "", 1, "L", false, 0, "")
	}
	field("Étudiant", rep.StudentName)
	field("Coach", rep.CoachName)
	field("Statut", rep.Status)
	field("Progression", fmt.Sprintf("%d %%", rep.Progress))
	field("Étape", rep.CurrentStep)
	if rep.DueDate != nil {
		field("Échéance", rep.DueDate.Format("02/01/2006"))
	}
	field("Généré le", rep.GeneratedAt.Format("02/01/2006 15:04"))

	doc.Ln(6)
	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, 8, "Documents", "", 1, "L", false, 0, "")
	if len(rep.Documents) == 0 {
		doc.SetFont("Helvetica", "I", 10)
		doc.CellFormat(0, 7, tr("Aucun document déposé."), "", 1, "L", false, 0, "")
	} else {
		widths := []float64{80, 35, 15, 30, 30}
		doc.SetFont("Helvetica", "B", 10)
		doc.SetFillColor(230, 230, 230)
		for i, h := range []string{"Nom", "Catégorie", "V.", "Statut", "Date"} {
			doc.CellFormat(widths[i], 7, tr(h), "1", 0, "L", true, 0, "")
		}
		doc.Ln(-1)
		doc.SetFont("Helvetica", "", 9)
		for _, d := range rep.Documents {
			cells := []string{
				truncate(d.Name, 45),
				d.Category,
				fmt.Sprintf("%d", d.Version),
				d.Status,
				d.CreatedAt.Format("02/01/2006"),
			}
			for i, c := range cells {
				doc.CellFormat(widths[i], 6, tr(c), "1", 0, "L", false, 0, "")
			}
			doc.Ln(-1)
		}
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("pdf output: %w", err)
	}
	return nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
