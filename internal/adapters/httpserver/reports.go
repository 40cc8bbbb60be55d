package httpserver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/phenrril/headstock/internal/adapters/report"
	"github.com/phenrril/headstock/internal/domain"
)

const maxUpload = 10 << 20

func (s *Server) figures(w http.ResponseWriter, r *http.Request) {
	var in domain.FinanceInput
	if err := s.decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Rate <= 0 {
		in.Rate, _ = s.products.Rate(r.Context())
	}
	f, err := domain.DeriveChecked(in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) rate(w http.ResponseWriter, r *http.Request) {
	rate, live := s.products.Rate(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"currency":      s.products.Currency(),
		"rate":          rate,
		"effectiveRate": domain.EffectiveRate(rate),
		"live":          live,
	})
}

func (s *Server) summary(r *http.Request) (domain.Dashboard, error) {
	f, err := archivedFilter(r)
	if err != nil {
		return domain.Dashboard{}, err
	}
	return s.dashboard.Summary(r.Context(), f)
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.summary(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) exportXLSX(w http.ResponseWriter, r *http.Request) {
	d, err := s.summary(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, d); err != nil {
		writeError(w, r, err)
		return
	}
	attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "products.xlsx", buf.Bytes())
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	d, err := s.summary(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, d.Products); err != nil {
		writeError(w, r, err)
		return
	}
	attachment(w, "text/csv; charset=utf-8", "products.csv", buf.Bytes())
}

func attachment(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+1<<20)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, domain.BadRequestf("file exceeds 10 MiB"))
			return
		}
		writeError(w, r, domain.BadRequestf("invalid multipart form"))
		return
	}
	f, fh, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, domain.BadRequestf("file is required"))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUpload+1))
	if err != nil {
		writeError(w, r, domain.BadRequestf("could not read file"))
		return
	}
	if len(data) == 0 {
		writeError(w, r, domain.BadRequestf("file is empty"))
		return
	}
	if len(data) > maxUpload {
		writeError(w, r, domain.BadRequestf("file exceeds 10 MiB"))
		return
	}
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		writeError(w, r, domain.BadRequestf("unsupported file type %s", ct))
		return
	}
	if s.storage == nil {
		writeError(w, r, pkgerrors.Wrap(domain.ErrUpstream, "no image storage configured"))
		return
	}
	url, err := s.storage.SaveImage(r.Context(), fh.Filename, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

type dbHealth struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	db := dbHealth{OK: true}
	if err := s.products.Ping(ctx); err != nil {
		db = dbHealth{Error: err.Error()}
	}
	writeJSON(w, http.StatusOK, map[string]any{"env": s.env, "db": db})
}
