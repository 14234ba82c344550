package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// DefaultMediaEndpoint is the base URL of the media upload API.
const DefaultMediaEndpoint = "https://api.cloudinary.com/v1_1"

// MediaUploader stores recorded clips on the media API and returns a
// playable URL.
type MediaUploader struct {
	endpoint   string
	cloudName  string
	preset     string
	httpClient *http.Client
}

// NewMediaUploader creates an uploader for an unsigned upload preset.
// An empty endpoint selects DefaultMediaEndpoint.
func NewMediaUploader(endpoint, cloudName, preset string) *MediaUploader {
	if endpoint == "" {
		endpoint = DefaultMediaEndpoint
	}
	return &MediaUploader{
		endpoint:   strings.TrimRight(endpoint, "/"),
		cloudName:  cloudName,
		preset:     preset,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (u *MediaUploader) WithHTTPClient(hc *http.Client) *MediaUploader {
	u.httpClient = hc
	return u
}

// UploadURL is where clips are posted. Audio goes through the video
// resource type so the API transcodes it.
func (u *MediaUploader) UploadURL() string {
	return u.endpoint + "/" + u.cloudName + "/video/upload"
}

// Upload sends the clip as multipart form data and returns its secure URL
// with the extension rewritten to .mp3.
func (u *MediaUploader) Upload(ctx context.Context, filename string, clip io.Reader) (string, error) {
	if u.cloudName == "" {
		return "", ErrNotConfigured
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := func() error {
			if err := writer.WriteField("upload_preset", u.preset); err != nil {
				return err
			}
			part, err := writer.CreateFormFile("file", filename)
			if err != nil {
				return fmt.Errorf("failed to create form file: %w", err)
			}
			if _, err := io.Copy(part, clip); err != nil {
				return fmt.Errorf("failed to copy clip: %w", err)
			}
			return writer.Close()
		}()
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.UploadURL(), pr)
	if err != nil {
		pr.Close()
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("upload: %w %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var result struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("upload response has no secure_url")
	}
	return AsMP3(result.SecureURL), nil
}

// AsMP3 replaces the file extension at the end of url with .mp3. URLs
// without one are returned unchanged. The media API transcodes on request.
func AsMP3(url string) string {
	i := strings.LastIndexAny(url, "/.")
	if i < 0 || url[i] != '.' || i == len(url)-1 {
		return url
	}
	return url[:i] + ".mp3"
}
