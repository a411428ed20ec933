// internal/service/report_service.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	appErrors "github.com/Gabrieexl/proyecto-calidad/internal/errors"
	"github.com/Gabrieexl/proyecto-calidad/internal/logging"
	"github.com/Gabrieexl/proyecto-calidad/internal/model"
	"github.com/Gabrieexl/proyecto-calidad/internal/repository"
)

// ReportService renders client reports to PDF and keeps them in the report store.
type ReportService struct {
	Customers repository.CustomerRepositoryInterface
	Store     repository.ReportRepositoryInterface
	Location  *time.Location
	Now       func() time.Time
	Logger    *zap.Logger

	mu sync.Mutex
}

// freeStem returns base, or base_N for the first N whose PDF is not stored yet.
func (s *ReportService) freeStem(base string) (string, error) {
	stem := base
	for n := 1; ; n++ {
		taken, err := s.Store.Exists(stem + ".pdf")
		if err != nil {
			return "", err
		}
		if !taken {
			return stem, nil
		}
		stem = fmt.Sprintf("%s_%d", base, n)
	}
}

var meses = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// LongDateES formats t as "16 de octubre de 2026".
func LongDateES(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), meses[t.Month()-1], t.Year())
}

func (s *ReportService) now() time.Time {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	if s.Location != nil {
		now = now.In(s.Location)
	}
	return now
}

// Generate renders a report for the given client ids and stores the PDF with
// a JSON sidecar holding the selected records.
func (s *ReportService) Generate(ctx context.Context, ids []string) (model.Report, []byte, error) {
	if len(ids) == 0 {
		return model.Report{}, nil, appErrors.Validation("select at least one cliente")
	}

	selected, err := s.Customers.GetByIDs(ctx, ids)
	if err != nil {
		return model.Report{}, nil, err
	}
	if len(selected) == 0 {
		return model.Report{}, nil, appErrors.Validation("none of the selected clientes exist")
	}

	now := s.now()
	pdf, err := RenderPDF(selected, now)
	if err != nil {
		return model.Report{}, nil, fmt.Errorf("render report: %w", err)
	}
	sidecar, err := json.Marshal(selected)
	if err != nil {
		return model.Report{}, nil, err
	}

	s.mu.Lock()
	stem, err := s.freeStem(fmt.Sprintf("reporte_%d", now.UnixMilli()))
	if err == nil {
		err = s.Store.Save(stem+".pdf", pdf)
	}
	s.mu.Unlock()
	if err != nil {
		return model.Report{}, nil, fmt.Errorf("store report: %w", err)
	}
	if err := s.Store.Save(stem+".json", sidecar); err != nil {
		logging.OrNop(s.Logger).Warn("store report sidecar failed", zap.String("report", stem), zap.Error(err))
	}

	logging.OrNop(s.Logger).Info("report generated", zap.String("report", stem+".pdf"), zap.Int("clientes", len(selected)))
	return model.Report{Name: stem + ".pdf", Size: int64(len(pdf)), CreatedAt: now, Clientes: selected}, pdf, nil
}

// List returns stored reports, newest first, with the clients from their
// sidecars. A non-empty query keeps reports whose name or any client nombre
// contains it.
func (s *ReportService) List(query string) ([]model.Report, error) {
	reports, err := s.Store.List()
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	out := make([]model.Report, 0, len(reports))
	for _, r := range reports {
		r.Clientes = s.sidecar(r.Name)
		if q == "" || reportMatches(r, q) {
			out = append(out, r)
		}
	}
	return out, nil
}

func reportMatches(r model.Report, q string) bool {
	if strings.Contains(strings.ToLower(r.Name), q) {
		return true
	}
	for _, c := range r.Clientes {
		if strings.Contains(strings.ToLower(c.Nombre), q) {
			return true
		}
	}
	return false
}

func (s *ReportService) sidecar(pdfName string) []model.Customer {
	data, err := s.Store.Read(sidecarName(pdfName))
	if err != nil {
		return nil
	}
	var clientes []model.Customer
	if err := json.Unmarshal(data, &clientes); err != nil {
		return nil
	}
	return clientes
}

func sidecarName(pdfName string) string {
	return strings.TrimSuffix(pdfName, ".pdf") + ".json"
}

func (s *ReportService) Read(name string) ([]byte, error) {
	if !strings.HasSuffix(name, ".pdf") {
		return nil, appErrors.Validation("invalid report name %q", name)
	}
	return s.Store.Read(name)
}

// Delete removes the PDF and, when present, its sidecar.
func (s *ReportService) Delete(name string) error {
	if !strings.HasSuffix(name, ".pdf") {
		return appErrors.Validation("invalid report name %q", name)
	}
	if err := s.Store.Delete(name); err != nil {
		return err
	}
	if err := s.Store.Delete(sidecarName(name)); err != nil {
		logging.OrNop(s.Logger).Debug("report sidecar not removed", zap.String("report", name), zap.Error(err))
	}
	return nil
}

// RenderPDF lays out one block per client on A4 pages.
func RenderPDF(clientes []model.Customer, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(generatedAt)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	centered := func(y float64, s string) {
		s = tr(s)
		pdf.Text(105-pdf.GetStringWidth(s)/2, y, s)
	}

	pdf.SetFont("Helvetica", "B", 22)
	centered(25, "REPORTE DE CLIENTES")

	pdf.SetFont("Helvetica", "", 10)
	centered(35, "Generado el: "+LongDateES(generatedAt))

	pdf.SetDrawColor(255, 193, 7)
	pdf.SetLineWidth(1)
	pdf.Line(14, 45, 196, 45)

	y := 60.0
	for i, c := range clientes {
		if y > 250 {
			pdf.AddPage()
			y = 30
		}

		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(255, 193, 7)
		pdf.Text(14, y, fmt.Sprintf("Cliente #%d", i+1))
		y += 10

		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(0, 0, 0)
		for _, f := range model.Schema {
			v := f.Get(&c.CustomerFields)
			if v == "" {
				continue
			}
			if y > 280 {
				pdf.AddPage()
				y = 30
			}
			pdf.Text(20, y, tr(f.Label+":"))
			pdf.Text(60, y, tr(v))
			y += 7
		}

		if i < len(clientes)-1 {
			y += 5
			pdf.SetDrawColor(200, 200, 200)
			pdf.SetLineWidth(0.5)
			pdf.Line(20, y, 190, y)
			y += 10
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
