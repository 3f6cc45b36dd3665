package mediahost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"tablekeep/internal/image/model"
	"tablekeep/pkg/apperror"
	"tablekeep/pkg/logger"
)

const DefaultBaseURL = "https://api.cloudinary.com/v1_1"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Cloudinary performs unsigned uploads authorised by an upload preset.
type Cloudinary struct {
	BaseURL      string
	CloudName    string
	UploadPreset string
	Folder       string
	HTTPClient   *http.Client
}

func NewCloudinary(baseURL, cloudName, uploadPreset, folder string) *Cloudinary {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Cloudinary{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		CloudName:    cloudName,
		UploadPreset: uploadPreset,
		Folder:       folder,
		HTTPClient:   http.DefaultClient,
	}
}

// Missing lists the credentials that are not set.
func (c *Cloudinary) Missing() []string {
	var missing []string
	if c.CloudName == "" {
		missing = append(missing, "CLOUDINARY_CLOUD_NAME")
	}
	if c.UploadPreset == "" {
		missing = append(missing, "CLOUDINARY_UPLOAD_PRESET")
	}
	return missing
}

func (c *Cloudinary) endpoint() string {
	return fmt.Sprintf("%s/%s/auto/upload", c.BaseURL, c.CloudName)
}

// Upload posts the file once. Any non-2xx response becomes an UploadError
// carrying the response body.
func (c *Cloudinary) Upload(ctx context.Context, file *model.File) (*model.UploadResult, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := writeForm(form, file, c.UploadPreset, c.Folder); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	logger.Sugar.Infof("Uploading %s (%s, %d bytes) to media host", file.Name, file.ContentType, file.Size)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Sugar.Errorf("Media host rejected upload: %d %s", resp.StatusCode, body)
		return nil, &apperror.UploadError{Status: resp.StatusCode, Body: string(body)}
	}

	var result model.UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &apperror.UploadError{Status: resp.StatusCode, Body: string(body)}
	}
	return &result, nil
}

func writeForm(form *multipart.Writer, file *model.File, preset, folder string) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", file.ContentType)
	part, err := form.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return err
	}
	if err := form.WriteField("upload_preset", preset); err != nil {
		return err
	}
	if folder != "" {
		if err := form.WriteField("folder", folder); err != nil {
			return err
		}
	}
	return form.Close()
}
