// Package worker drives the asynchronous halves of the report and image
// lifecycles. A single dispatcher tails the audit event log and reacts to
// send requests and generation starts, feeding outcomes back through the
// use-case layer so every transition stays guarded.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"bistroboard/internal/config"
	"bistroboard/internal/repo"
	"bistroboard/internal/usecase"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultHTTPTimeout  = 5 * time.Second
	defaultBatch        = 100
)

type Dispatcher struct {
	Service  usecase.Service
	Repo     repo.Repo
	Config   *config.Config
	Interval time.Duration
	Logger   *log.Logger

	client *http.Client
	mu     sync.Mutex
	cursor int64
}

func Start(svc usecase.Service, r repo.Repo, cfg *config.Config) *Dispatcher {
	d := &Dispatcher{
		Service: svc,
		Repo:    r,
		Config:  cfg,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
	go d.Run(context.Background())
	return d
}

func (d *Dispatcher) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.Default()
}

func (d *Dispatcher) interval() time.Duration {
	if d.Interval > 0 {
		return d.Interval
	}
	return defaultPollInterval
}

func (d *Dispatcher) httpClient() *http.Client {
	if d.client != nil {
		return d.client
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// Run polls until the context is canceled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval())
	defer ticker.Stop()
	for {
		d.Poll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll drains pending events once. Exported so tests and the CLI can step the
// dispatcher without the ticker.
func (d *Dispatcher) Poll(ctx context.Context) {
	restaurantID := ""
	if d.Config != nil {
		restaurantID = d.Config.Restaurant.ID
	}
	d.mu.Lock()
	cursor := d.cursor
	d.mu.Unlock()

	events, err := d.Repo.EventsAfter(ctx, defaultBatch, cursor, restaurantID)
	if err != nil {
		d.logger().Printf("worker: fetch events failed: %v", err)
		return
	}
	for _, evt := range events {
		switch evt.Type {
		case "report.send_requested":
			d.deliverReport(ctx, evt.EntityID)
		case "image.generation_started", "image.retried":
			d.generateImage(ctx, evt.EntityID)
		}
		d.mu.Lock()
		d.cursor = evt.ID
		d.mu.Unlock()
	}
}

// deliverReport posts the artifact to the configured delivery URL and records
// the result.
func (d *Dispatcher) deliverReport(ctx context.Context, reportID string) {
	res := d.Service.GetReport(ctx, reportID)
	if !res.Success() {
		d.logger().Printf("worker: load report %s: %v", reportID, res.Err())
		return
	}
	rep := res.Value()
	if rep.Status != "sending" {
		return
	}
	deliveryURL := ""
	if d.Config != nil {
		deliveryURL = d.Config.Reports.DeliveryURL
	}
	if strings.TrimSpace(deliveryURL) == "" {
		// No transport configured; treat the queue entry itself as delivery.
		if r := d.Service.MarkReportSent(ctx, reportID); !r.Success() {
			d.logger().Printf("worker: mark report %s sent: %v", reportID, r.Err())
		}
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"report_id":    rep.ID,
		"week_start":   rep.WeekStart,
		"artifact_url": rep.ArtifactURL,
		"channel":      rep.Channel,
	})
	if err := d.post(ctx, deliveryURL, payload); err != nil {
		d.logger().Printf("worker: deliver report %s: %v", reportID, err)
		if r := d.Service.FailReportDelivery(ctx, reportID, err.Error()); !r.Success() {
			d.logger().Printf("worker: fail report %s: %v", reportID, r.Err())
		}
		return
	}
	if r := d.Service.MarkReportSent(ctx, reportID); !r.Success() {
		d.logger().Printf("worker: mark report %s sent: %v", reportID, r.Err())
	}
}

// generateImage asks the configured generator for a candidate. The generator
// answers synchronously with a candidate URL; without one configured the job
// is failed so the operator can retry after fixing config.
func (d *Dispatcher) generateImage(ctx context.Context, jobID string) {
	res := d.Service.GetImageJob(ctx, jobID)
	if !res.Success() {
		d.logger().Printf("worker: load image job %s: %v", jobID, res.Err())
		return
	}
	job := res.Value()
	if job.Status != "generating" {
		return
	}
	generatorURL := ""
	if d.Config != nil {
		generatorURL = d.Config.Images.GeneratorURL
	}
	if strings.TrimSpace(generatorURL) == "" {
		if r := d.Service.FailImageGeneration(ctx, jobID, "no image generator configured"); !r.Success() {
			d.logger().Printf("worker: fail image %s: %v", jobID, r.Err())
		}
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"job_id":     job.ID,
		"mode":       job.Mode,
		"prompt":     job.Prompt,
		"source_url": job.SourceURL,
	})
	body, err := d.postForResult(ctx, generatorURL, payload)
	if err != nil {
		d.logger().Printf("worker: generate image %s: %v", jobID, err)
		if r := d.Service.FailImageGeneration(ctx, jobID, err.Error()); !r.Success() {
			d.logger().Printf("worker: fail image %s: %v", jobID, r.Err())
		}
		return
	}
	var out struct {
		CandidateURL string `json:"candidate_url"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.CandidateURL == "" {
		if r := d.Service.FailImageGeneration(ctx, jobID, "generator returned no candidate"); !r.Success() {
			d.logger().Printf("worker: fail image %s: %v", jobID, r.Err())
		}
		return
	}
	if r := d.Service.CompleteImageGeneration(ctx, jobID, out.CandidateURL); !r.Success() {
		d.logger().Printf("worker: complete image %s: %v", jobID, r.Err())
	}
}

func (d *Dispatcher) post(ctx context.Context, url string, payload []byte) error {
	_, err := d.postForResult(ctx, url, payload)
	return err
}

func (d *Dispatcher) postForResult(ctx context.Context, url string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := d.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
