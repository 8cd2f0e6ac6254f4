// Package httpx — общие для обработчиков ответы, разбор JSON с валидацией и
// отображение доменных ошибок в HTTP-статусы.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"pricelist-service/internal/fileio"
	"pricelist-service/internal/pricelist/model"
	"pricelist-service/internal/structuring"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// в сообщениях — имена полей JSON, а не Go
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type ErrorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, ErrorBody{Error: msg, Code: code})
}

// ValidationError — тело запроса не прошло проверку. Fields: путь поля -> причина.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+": "+v)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// DecodeJSON читает тело в dst (неизвестные поля — ошибка) и валидирует теги validate.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		return &ValidationError{Fields: map[string]string{"body": err.Error()}}
	}
	return Validate(dst)
}

func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &ValidationError{Fields: map[string]string{"body": err.Error()}}
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		fields[ns] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "min":
		return fmt.Sprintf("must contain at least %s element(s)", fe.Param())
	case "unique":
		return fmt.Sprintf("%s values must be unique", fe.Param())
	default:
		return "failed " + fe.Tag()
	}
}

// Classify сопоставляет ошибку со статусом и машинным кодом.
// Ошибки сервиса разметки проверяются раньше "позиций нет": они исправимы повтором.
func Classify(err error) (int, string) {
	var (
		ve  *ValidationError
		mbe *http.MaxBytesError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, fileio.ErrFileTooLarge), errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge, "file_too_large"
	case errors.Is(err, fileio.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "unsupported_format"
	case errors.Is(err, structuring.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, "structuring_unavailable"
	case errors.Is(err, structuring.ErrServiceError):
		return http.StatusBadGateway, "structuring_error"
	case errors.Is(err, structuring.ErrEmptyReply):
		return http.StatusBadGateway, "structuring_empty_reply"
	case errors.Is(err, structuring.ErrMalformedReply):
		return http.StatusBadGateway, "structuring_malformed_reply"
	case errors.Is(err, fileio.ErrEmptyFile):
		return http.StatusUnprocessableEntity, "empty_file"
	case errors.Is(err, model.ErrNoRowsExtracted):
		return http.StatusUnprocessableEntity, "no_rows_extracted"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// Fail пишет ошибку в ответ и в лог запроса. 5xx логируются как error.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := Classify(err)
	log := zerolog.Ctx(r.Context())
	if status >= 500 {
		log.Error().Err(err).Str("code", code).Msg("request failed")
	} else {
		log.Warn().Err(err).Str("code", code).Msg("request rejected")
	}
	body := ErrorBody{Error: err.Error(), Code: code}
	var ve *ValidationError
	if errors.As(err, &ve) {
		body.Error = "validation failed"
		body.Fields = ve.Fields
	}
	if status == http.StatusInternalServerError {
		body.Error = "internal server error"
	}
	WriteJSON(w, status, body)
}
