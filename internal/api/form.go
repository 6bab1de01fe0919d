package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/your-org/crosspost/internal/media"
	"github.com/your-org/crosspost/internal/provider"
	"github.com/your-org/crosspost/internal/publish"
)

// publishForm is the text part of a publish submission.
type publishForm struct {
	Targets       []string `form:"targets" validate:"required,min=1,dive,required"`
	ScheduleMode  string   `form:"scheduleMode" validate:"omitempty,oneof=immediate scheduled"`
	ScheduledAt   string   `form:"scheduledAt" validate:"omitempty,rfc3339"`
	MediaType     string   `form:"mediaType" validate:"omitempty,oneof=image video"`
	Text          string   `form:"text"`
	SecondaryText string   `form:"secondaryText"`
}

// formError is a malformed submission, reported as 400.
type formError struct {
	msg string
}

func (e *formError) Error() string { return e.msg }

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})
	if err := v.RegisterValidation("rfc3339", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.RFC3339, fl.Field().String())
		return err == nil
	}); err != nil {
		panic(fmt.Sprintf("register rfc3339 validation: %v", err))
	}
	return v
}

func (h *HTTPHandler) decodePublish(r *http.Request) (publish.Request, error) {
	if err := r.ParseMultipartForm(h.formMemBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return publish.Request{}, err
		}
		return publish.Request{}, &formError{msg: "invalid multipart form"}
	}

	values := r.MultipartForm.Value
	form := publishForm{
		Targets:       splitList(values["targets"]),
		ScheduleMode:  strings.TrimSpace(last(values["scheduleMode"])),
		ScheduledAt:   strings.TrimSpace(last(values["scheduledAt"])),
		MediaType:     strings.TrimSpace(last(values["mediaType"])),
		Text:          last(values["text"]),
		SecondaryText: last(values["secondaryText"]),
	}
	if err := h.validate.Struct(form); err != nil {
		return publish.Request{}, describeValidation(err)
	}

	assets, err := readAssets(r.MultipartForm.File["files"])
	if err != nil {
		return publish.Request{}, err
	}

	targets, err := h.targets.Resolve(r.Context(), form.Targets)
	if err != nil {
		return publish.Request{}, err
	}

	req := publish.Request{
		Targets:       targets,
		Category:      media.Category(form.MediaType),
		ScheduleMode:  provider.ScheduleMode(form.ScheduleMode),
		BodyText:      form.Text,
		SecondaryText: form.SecondaryText,
		Assets:        assets,
	}
	if form.ScheduledAt != "" {
		at, _ := time.Parse(time.RFC3339, form.ScheduledAt)
		at = at.UTC()
		req.ScheduledAt = &at
	}
	return req, nil
}

func readAssets(headers []*multipart.FileHeader) ([]media.Asset, error) {
	assets := make([]media.Asset, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, &formError{msg: fmt.Sprintf("read file %s", fh.Filename)}
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, &formError{msg: fmt.Sprintf("read file %s", fh.Filename)}
		}
		assets = append(assets, media.NewAsset(fh.Filename, fh.Header.Get("Content-Type"), data))
	}
	return assets, nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &formError{msg: err.Error()}
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", field, fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", field, fe.Tag()))
	}
	return &formError{msg: "invalid form: " + strings.Join(parts, "; ")}
}

// splitList accepts repeated fields as well as comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func last(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}
