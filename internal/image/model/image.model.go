package model

import "io"

type ImageReference struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// ImageList is the stored shape of the singleton image list document.
type ImageList struct {
	Images []ImageReference `json:"images"`
}

// File is an image handed to the upload pipeline.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult holds the asset URLs returned by the media host.
type UploadResult struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	PublicID  string `json:"public_id"`
}

type SaveImagesRequest struct {
	Images []ImageReference `json:"images"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
