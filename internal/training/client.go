package training

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mikel-p-h/PFG/internal/domain/entity"
	"github.com/mikel-p-h/PFG/internal/domain/fault"
)

// Prediction is one predicted image from the FSOD response: the bundle
// image name and its bounding boxes as [class, x_center, y_center, width,
// height] tuples in normalized coordinates.
type Prediction struct {
	Image  string      `json:"image"`
	Labels [][]float64 `json:"labels"`
}

type trainResponse struct {
	Status      string       `json:"status"`
	Message     string       `json:"message"`
	Predictions []Prediction `json:"predictions"`
}

// Client talks to the remote FSOD training service: one synchronous call
// uploads the dataset archive with the hyperparameters and returns the
// per-image predictions.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// TrainPredict posts the archived bundle and blocks until the service
// responds or ctx expires. Any transport, status, or body failure is a
// single upstream error; the caller never sees a partially parsed result.
func (c *Client) TrainPredict(ctx context.Context, archivePath string, hp entity.Hyperparams) ([]Prediction, error) {
	body, contentType, err := c.multipartBody(archivePath, hp)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/fsod-train", body)
	if err != nil {
		body.Close()
		return nil, fmt.Errorf("build fsod request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fault.Wrap(fault.Upstream, err, "fsod service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fault.Errorf(fault.Upstream,
			"fsod service returned %d: %s", resp.StatusCode, string(detail))
	}

	var parsed trainResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fault.Wrap(fault.Upstream, err, "decode fsod response")
	}

	c.logger.Info("fsod round trip completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("predictions", len(parsed.Predictions)),
	)
	return parsed.Predictions, nil
}

// multipartBody streams the archive through a pipe so the zip never
// resides in memory.
func (c *Client) multipartBody(archivePath string, hp entity.Hyperparams) (io.ReadCloser, string, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return nil, "", fmt.Errorf("open bundle archive: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	fields := map[string]string{
		"model":  hp.Model,
		"epochs": strconv.Itoa(hp.Epochs),
		"imgsz":  strconv.Itoa(hp.ImageSize),
		"batch":  strconv.Itoa(hp.Batch),
		"lr":     strconv.FormatFloat(hp.LearningRate, 'g', -1, 64),
	}

	go func() {
		defer file.Close()

		write := func() error {
			for _, name := range []string{"model", "epochs", "imgsz", "batch", "lr"} {
				if err := mw.WriteField(name, fields[name]); err != nil {
					return err
				}
			}
			part, err := mw.CreateFormFile("dataset", "dataset.zip")
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, file); err != nil {
				return err
			}
			return mw.Close()
		}

		pw.CloseWithError(write())
	}()

	return pr, mw.FormDataContentType(), nil
}
