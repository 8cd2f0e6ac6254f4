package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"pricelist-service/internal/httpx"
	"pricelist-service/internal/pricelist/service"
)

// в памяти держим не больше, остальное multipart сбрасывает во временные файлы
const multipartMemory = 8 << 20

// Parse — POST /pricelists/parse, multipart-поле "file". Ничего не сохраняет:
// отдаёт позиции и предупреждения для превью.
func Parse(p *service.Parser, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := zerolog.Ctx(r.Context())

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				httpx.Fail(w, r, err)
				return
			}
			httpx.Fail(w, r, &httpx.ValidationError{Fields: map[string]string{"body": "bad multipart form: " + err.Error()}})
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile("file")
		if err != nil {
			httpx.Fail(w, r, &httpx.ValidationError{Fields: map[string]string{"file": "is required"}})
			return
		}
		defer file.Close()

		// +1 байт, чтобы превышение лимита увидел fileio и ответил FileTooLarge
		data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
		if err != nil {
			httpx.Fail(w, r, err)
			return
		}

		res, err := p.Parse(r.Context(), data, header.Filename, header.Header.Get("Content-Type"))
		if err != nil {
			httpx.Fail(w, r, err)
			return
		}

		log.Info().
			Str("file", header.Filename).
			Int64("size", header.Size).
			Int("items", len(res.Items)).
			Dur("elapsed", time.Since(start)).
			Msg("parse done")
		httpx.WriteJSON(w, http.StatusOK, res)
	}
}
