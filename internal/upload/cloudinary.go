package upload

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"
)

// CloudinaryConfig holds credentials for the Cloudinary upload API.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// CloudinaryUploader implements Uploader against the Cloudinary REST
// upload API with signed requests.
type CloudinaryUploader struct {
	cfg    CloudinaryConfig
	client *http.Client
}

// NewCloudinaryUploader creates an uploader for the configured cloud.
func NewCloudinaryUploader(cfg CloudinaryConfig) *CloudinaryUploader {
	return &CloudinaryUploader{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Bytes     int64  `json:"bytes"`
}

// Upload stores data under the given folder and returns the asset
// descriptor.
func (u *CloudinaryUploader) Upload(ctx context.Context, data []byte, name, folder string) (*Asset, error) {
	params := map[string]string{
		"folder":    folder,
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}
	params["signature"] = u.sign(params)
	params["api_key"] = u.cfg.APIKey

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range params {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/auto/upload", u.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}

	var result cloudinaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	return &Asset{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Name:     name,
		Size:     result.Bytes,
	}, nil
}

// Delete removes a previously uploaded asset by public id.
func (u *CloudinaryUploader) Delete(ctx context.Context, publicID string) error {
	params := map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}
	params["signature"] = u.sign(params)
	params["api_key"] = u.cfg.APIKey

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/destroy", u.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		bytes.NewBufferString(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("destroy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("destroy failed with status %d", resp.StatusCode)
	}
	return nil
}

// sign computes the Cloudinary request signature: the sorted
// ampersand-joined params followed by the API secret, SHA-1 hashed.
func (u *CloudinaryUploader) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(params[k])
	}
	buf.WriteString(u.cfg.APISecret)

	sum := sha1.Sum(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
