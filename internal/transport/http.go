package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const userAgent = "bender-worker"

// HTTPClient is the worker's coordinator-facing HTTP client: scene
// download, job-status polling, and frame upload (§6.3).
type HTTPClient struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPClient returns an HTTPClient against baseURL using the given
// *http.Client (its Timeout governs every call the worker makes).
func NewHTTPClient(baseURL string, client *http.Client) *HTTPClient {
	return &HTTPClient{BaseURL: baseURL, Client: client}
}

// DownloadScene issues GET /job/worker/blend/{jobID} with the
// {"request":"blendfile"} body and streams the response to destPath.
func (c *HTTPClient) DownloadScene(ctx context.Context, jobID, destPath string) error {
	url := fmt.Sprintf("%s/job/worker/blend/%s", c.BaseURL, jobID)
	body, _ := json.Marshal(map[string]string{"request": "blendfile"})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "transport: building scene download request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.Client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "transport: downloading scene for job %s", jobID)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("transport: scene download for job %s returned %d", jobID, resp.StatusCode)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return errors.Wrapf(err, "transport: creating scene file at %s", destPath)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return errors.Wrapf(err, "transport: writing scene file to %s", destPath)
	}
	return nil
}

// JobStatus issues GET /job/worker/status/{jobID} and returns the raw
// response body for the caller to parse with ParseJobStatus.
func (c *HTTPClient) JobStatus(ctx context.Context, jobID string) (string, error) {
	url := fmt.Sprintf("%s/job/worker/status/%s", c.BaseURL, jobID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "transport: building job status request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "transport: fetching status for job %s", jobID)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Errorf("transport: job status for %s returned %d", jobID, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(err, "transport: reading status body for job %s", jobID)
	}
	return string(raw), nil
}

// ParseJobStatus parses the coordinator's stringified-dictionary status
// token by splitting on "'" and selecting field index 3, per §6.3. This is a
// fragile wire format inherited unchanged from the coordinator; any
// deviation (too few fields) is reported as ok=false so the caller leaves
// its status cache untouched rather than guessing (§9 design note).
func ParseJobStatus(body string) (status string, ok bool) {
	fields := strings.Split(body, "'")
	if len(fields) <= 3 {
		return "", false
	}
	return fields[3], true
}

// UploadFile is one frame output ready to be multipart-uploaded.
type UploadFile struct {
	FieldName string
	FilePath  string
}

// UploadFrames POSTs the given files as a multipart/form-data body to
// /job/{jobID}/{taskID}. Any 2xx response is success.
func (c *HTTPClient) UploadFrames(ctx context.Context, jobID, taskID string, files []UploadFile) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, uf := range files {
		f, err := os.Open(uf.FilePath)
		if err != nil {
			return errors.Wrapf(err, "transport: opening frame file %s for upload", uf.FilePath)
		}
		part, err := writer.CreateFormFile(uf.FieldName, uf.FilePath)
		if err != nil {
			f.Close()
			return errors.Wrap(err, "transport: creating multipart form file")
		}
		if _, err := io.Copy(part, f); err != nil {
			f.Close()
			return errors.Wrapf(err, "transport: copying frame file %s into upload body", uf.FilePath)
		}
		f.Close()
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "transport: closing multipart writer")
	}

	url := fmt.Sprintf("%s/job/%s/%s", c.BaseURL, jobID, taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return errors.Wrap(err, "transport: building upload request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.Client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "transport: uploading frames for task %s", taskID)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("transport: frame upload for task %s returned %d", taskID, resp.StatusCode)
	}
	return nil
}
