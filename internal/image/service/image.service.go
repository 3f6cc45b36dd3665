package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tablekeep/internal/image/model"
	"tablekeep/pkg/apperror"
	"tablekeep/pkg/logger"
	"tablekeep/store"
)

const (
	Collection    = "images"
	DefaultListID = "image-list"

	MaxUploadBytes = 10 * 1024 * 1024

	// Transformation is applied to every uploaded asset: 800x600 fill crop
	// around the detected focal point.
	Transformation = "c_fill,w_800,h_600,g_auto"
	uploadMarker   = "/upload/"
)

var (
	ErrNoFile         = &apperror.ValidationError{Msg: "no file provided"}
	ErrNotImage       = &apperror.ValidationError{Msg: "only image files are allowed"}
	ErrTooLarge       = &apperror.ValidationError{Msg: "image is too large (max 10MB)"}
	ErrEmptyImageList = &apperror.ValidationError{Msg: "image list is empty"}
	ErrInvalidImage   = &apperror.ValidationError{Msg: "one or more images are invalid"}

	ErrNoAssetURL = errors.New("media host response has no asset url")
)

// Uploader is the media host.
type Uploader interface {
	// Missing names unset credentials; empty means the host is usable.
	Missing() []string
	Upload(ctx context.Context, file *model.File) (*model.UploadResult, error)
}

type ImageService struct {
	Store  store.Client
	Host   Uploader
	ListID string
}

func NewImageService(client store.Client, host Uploader, listID string) *ImageService {
	if listID == "" {
		listID = DefaultListID
	}
	return &ImageService{Store: client, Host: host, ListID: listID}
}

// ValidateImageReference reports whether candidate has non-empty string src
// and alt fields. It accepts ImageReference values and decoded JSON objects.
func ValidateImageReference(candidate any) bool {
	switch v := candidate.(type) {
	case model.ImageReference:
		return v.Src != "" && v.Alt != ""
	case *model.ImageReference:
		return v != nil && v.Src != "" && v.Alt != ""
	case map[string]any:
		src, ok := v["src"].(string)
		if !ok || src == "" {
			return false
		}
		alt, ok := v["alt"].(string)
		return ok && alt != ""
	case map[string]string:
		return v["src"] != "" && v["alt"] != ""
	default:
		return false
	}
}

// TransformURL inserts the fixed rendition segment right after the first
// "/upload/" of an asset URL.
func TransformURL(assetURL string) string {
	return strings.Replace(assetURL, uploadMarker, uploadMarker+Transformation+"/", 1)
}

// UploadImage checks the file and configuration, uploads once, and returns
// the transformed asset URL.
func (s *ImageService) UploadImage(ctx context.Context, file *model.File) (string, error) {
	if file == nil || file.Body == nil {
		return "", ErrNoFile
	}
	if s.Host == nil {
		return "", &apperror.ConfigurationError{Missing: []string{"media host"}}
	}
	if missing := s.Host.Missing(); len(missing) > 0 {
		return "", &apperror.ConfigurationError{Missing: missing}
	}
	if !strings.HasPrefix(file.ContentType, "image/") {
		return "", ErrNotImage
	}
	if file.Size > MaxUploadBytes {
		return "", ErrTooLarge
	}

	result, err := s.Host.Upload(ctx, file)
	if err != nil {
		var ue *apperror.UploadError
		if errors.As(err, &ue) {
			return "", err
		}
		return "", fmt.Errorf("upload image: %w", err)
	}

	assetURL := result.SecureURL
	if assetURL == "" {
		assetURL = result.URL
	}
	if assetURL == "" {
		return "", ErrNoAssetURL
	}
	transformed := TransformURL(assetURL)
	logger.Sugar.Infof("Uploaded %s as %s", file.Name, transformed)
	return transformed, nil
}

// SaveImageList replaces the stored image list. Every reference is checked
// before anything is written.
func (s *ImageService) SaveImageList(ctx context.Context, images []model.ImageReference) error {
	if len(images) == 0 {
		return ErrEmptyImageList
	}
	for _, img := range images {
		if !ValidateImageReference(img) {
			return ErrInvalidImage
		}
	}

	doc, err := store.ToDocument(model.ImageList{Images: images})
	if err != nil {
		return apperror.Persistence("encode images", err)
	}
	if err := s.Store.Set(ctx, Collection, s.ListID, doc); err != nil {
		return apperror.Persistence("save images", err)
	}
	logger.Sugar.Infof("Saved %d images", len(images))
	return nil
}

// LoadImageList never fails: a missing, malformed, or unreadable list yields
// an empty list.
//
// TODO: confirm with the frontend whether read failures should surface like
// LoadTable does instead of being swallowed here.
func (s *ImageService) LoadImageList(ctx context.Context) []model.ImageReference {
	doc, err := s.Store.Get(ctx, Collection, s.ListID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Sugar.Warnf("Error loading images, using defaults: %v", err)
		}
		return defaultImages()
	}

	raw, ok := doc["images"].([]any)
	if !ok || len(raw) == 0 {
		logger.Sugar.Infof("No valid images found, using defaults")
		return defaultImages()
	}
	for _, item := range raw {
		if !ValidateImageReference(item) {
			logger.Sugar.Warnf("Stored image list has an invalid entry, using defaults")
			return defaultImages()
		}
	}

	var list model.ImageList
	if err := doc.Decode(&list); err != nil {
		logger.Sugar.Warnf("Error decoding images, using defaults: %v", err)
		return defaultImages()
	}
	return list.Images
}

func defaultImages() []model.ImageReference {
	return []model.ImageReference{}
}
