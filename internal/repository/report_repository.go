package repository

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/natefinch/atomic"

	appErrors "github.com/Gabrieexl/proyecto-calidad/internal/errors"
	"github.com/Gabrieexl/proyecto-calidad/internal/model"
)

type ReportRepositoryInterface interface {
	Save(name string, data []byte) error
	Exists(name string) (bool, error)
	List() ([]model.Report, error)
	Read(name string) ([]byte, error)
	Delete(name string) error
}

// ReportRepository keeps report objects as flat files under Dir.
type ReportRepository struct {
	Dir string
}

// ValidReportName accepts plain .pdf/.json file names with no path components.
func ValidReportName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return false
	}
	ext := filepath.Ext(name)
	return ext == ".pdf" || ext == ".json"
}

func (r *ReportRepository) path(name string) (string, error) {
	if !ValidReportName(name) {
		return "", appErrors.Validation("invalid report name %q", name)
	}
	return filepath.Join(r.Dir, name), nil
}

func (r *ReportRepository) Save(name string, data []byte) error {
	p, err := r.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return err
	}
	return atomic.WriteFile(p, bytes.NewReader(data))
}

func (r *ReportRepository) Exists(name string) (bool, error) {
	p, err := r.path(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// List returns the stored PDFs, newest first.
func (r *ReportRepository) List() ([]model.Report, error) {
	entries, err := os.ReadDir(r.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Report{}, nil
	}
	if err != nil {
		return nil, err
	}

	reports := []model.Report{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".pdf" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		reports = append(reports, model.Report{Name: e.Name(), Size: info.Size(), CreatedAt: info.ModTime()})
	}
	slices.SortFunc(reports, func(a, b model.Report) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Name, a.Name)
	})
	return reports, nil
}

func (r *ReportRepository) Read(name string) ([]byte, error) {
	p, err := r.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, appErrors.NewReportNotFound(name)
	}
	return data, err
}

func (r *ReportRepository) Delete(name string) error {
	p, err := r.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return appErrors.NewReportNotFound(name)
	}
	return err
}

var _ ReportRepositoryInterface = (*ReportRepository)(nil)
