// Package cloudinary stores product images through Cloudinary's signed
// upload API.
package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	pkgerrors "github.com/pkg/errors"

	"github.com/phenrril/headstock/internal/domain"
)

const DefaultAPI = "https://api.cloudinary.com/v1_1"

type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	// BaseURL overrides DefaultAPI.
	BaseURL string
	Timeout time.Duration
}

// Configured reports whether every credential is present.
func (c Config) Configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type Uploader struct {
	cfg    Config
	client *resty.Client
	now    func() time.Time
}

func New(cfg Config) *Uploader {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAPI
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Uploader{
		cfg:    cfg,
		client: resty.New().SetTimeout(cfg.Timeout),
		now:    time.Now,
	}
}

type uploadResp struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (u *Uploader) SaveImage(ctx context.Context, filename string, data []byte) (string, error) {
	if !u.cfg.Configured() {
		return "", pkgerrors.Wrap(domain.ErrUpstream, "cloudinary credentials missing")
	}
	params := map[string]string{"timestamp": strconv.FormatInt(u.now().Unix(), 10)}
	if u.cfg.Folder != "" {
		params["folder"] = u.cfg.Folder
	}
	form := map[string]string{"api_key": u.cfg.APIKey, "signature": Sign(params, u.cfg.APISecret)}
	for k, v := range params {
		form[k] = v
	}

	var out uploadResp
	resp, err := u.client.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(data)).
		SetFormData(form).
		SetResult(&out).
		SetError(&out).
		Post(fmt.Sprintf("%s/%s/image/upload", strings.TrimRight(u.cfg.BaseURL, "/"), u.cfg.CloudName))
	if err != nil {
		return "", pkgerrors.Wrapf(domain.ErrUpstream, "cloudinary upload: %v", err)
	}
	if resp.IsError() {
		msg := resp.Status()
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", pkgerrors.Wrapf(domain.ErrUpstream, "cloudinary upload: %s", msg)
	}
	if out.SecureURL != "" {
		return out.SecureURL, nil
	}
	if out.URL != "" {
		return out.URL, nil
	}
	return "", pkgerrors.Wrap(domain.ErrUpstream, "cloudinary upload: no url in response")
}

// Sign computes the request signature: the sorted k=v pairs joined by '&'
// with the secret appended, hashed with SHA-1.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "&") + secret))
	return hex.EncodeToString(sum[:])
}
