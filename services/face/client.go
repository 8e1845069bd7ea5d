// Package facesvc talks to the face recognition microservice over HTTP.
package facesvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/am-3/campus/core"
	"github.com/am-3/campus/core/attendance"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	// skip disables remote calls; every verification succeeds. Used in
	// development when the microservice is not running.
	skip bool
}

var _ attendance.FaceVerifier = (*Client)(nil)

type compareResult struct {
	Match      bool    `json:"match"`
	Similarity float64 `json:"similarity"`
}

type embedResult struct {
	FacesFound int `json:"faces_found"`
}

func NewClient(conf *core.Config) *Client {
	return &Client{
		baseURL:    conf.FaceService.URL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		skip:       conf.FaceService.Skip,
	}
}

// Verify runs a 1:1 comparison of the probe image against the enrolled
// reference.
func (c *Client) Verify(ctx context.Context, referenceURL, imageURL string) (bool, float64, error) {
	if c.skip {
		return true, 1, nil
	}

	var result compareResult
	err := c.post(ctx, "/compare", map[string]string{
		"reference_url": referenceURL,
		"image_url":     imageURL,
	}, &result)
	if err != nil {
		return false, 0, err
	}
	return result.Match, result.Similarity, nil
}

// Detect fails when the image contains no usable face.
func (c *Client) Detect(ctx context.Context, imageURL string) error {
	if c.skip {
		return nil
	}

	var result embedResult
	if err := c.post(ctx, "/embed", map[string]string{"image_url": imageURL}, &result); err != nil {
		return err
	}
	if result.FacesFound == 0 {
		return errors.New("no face detected")
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "encoding face service request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building face service request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling face service")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return errors.Errorf("face service error %d: %s", resp.StatusCode, data)
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "decoding face service response")
}
