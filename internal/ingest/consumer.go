// Package ingest consumes upload-pipeline events and turns them into
// draft editions. The upload side (conversion, thumbnailing) runs
// elsewhere; it announces finished uploads on a queue and this side
// records them.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	amqp "github.com/rabbitmq/amqp091-go"

	"epaperadmin/internal/app"
)

// UploadEvent is the payload published when an edition PDF finishes
// processing. total_pages may be absent; the consumer probes the PDF
// itself in that case.
type UploadEvent struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	PublicationDate string `json:"publication_date"`
	PDFPath         string `json:"pdf_path"`
	ThumbnailPath   string `json:"thumbnail_path"`
	TotalPages      int    `json:"total_pages"`
	Category        string `json:"category"`
}

// DecodeUploadEvent parses and validates an event body.
func DecodeUploadEvent(body []byte) (UploadEvent, error) {
	var ev UploadEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return UploadEvent{}, fmt.Errorf("decode upload event: %w", err)
	}
	ev.Title = strings.TrimSpace(ev.Title)
	ev.PDFPath = strings.TrimSpace(ev.PDFPath)
	if ev.Title == "" {
		return UploadEvent{}, errors.New("upload event missing title")
	}
	if ev.PDFPath == "" {
		return UploadEvent{}, errors.New("upload event missing pdf_path")
	}
	return ev, nil
}

// Command builds the edition create command for an event. When the
// event carries no page count the prober fills it in; a probe failure
// is not fatal, the count just stays zero.
func (ev UploadEvent) Command(probe func(string) (int, error), logger *slog.Logger) app.CreateEdition {
	pages := ev.TotalPages
	if pages == 0 && probe != nil {
		n, err := probe(ev.PDFPath)
		if err != nil {
			logger.Warn("pdf page probe failed", "path", ev.PDFPath, "err", err)
		} else {
			pages = n
		}
	}
	var pub time.Time
	if ev.PublicationDate != "" {
		t, err := time.Parse("2006-01-02", ev.PublicationDate)
		if err != nil {
			logger.Warn("upload event has bad publication_date", "value", ev.PublicationDate)
		} else {
			pub = t
		}
	}
	return app.CreateEdition{
		Title:           ev.Title,
		Description:     ev.Description,
		PublicationDate: pub,
		PDFPath:         ev.PDFPath,
		ThumbnailPath:   ev.ThumbnailPath,
		TotalPages:      pages,
		Category:        ev.Category,
	}
}

// CountPDFPages opens the PDF under baseDir and returns its page count.
func CountPDFPages(baseDir, relPath string) (int, error) {
	f, reader, err := pdf.Open(filepath.Join(baseDir, relPath))
	if err != nil {
		return 0, fmt.Errorf("open pdf %s: %w", relPath, err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}

// Consumer drains upload events from an AMQP queue.
type Consumer struct {
	url    string
	queue  string
	app    *app.App
	probe  func(string) (int, error)
	logger *slog.Logger
	redial time.Duration
}

// NewConsumer builds a consumer. baseDir is the local storage root the
// upload pipeline writes PDFs under; pass "" to disable page probing.
func NewConsumer(url, queue string, application *app.App, baseDir string, logger *slog.Logger) (*Consumer, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("amqp url required")
	}
	if strings.TrimSpace(queue) == "" {
		return nil, errors.New("amqp queue name required")
	}
	var probe func(string) (int, error)
	if baseDir != "" {
		probe = func(relPath string) (int, error) {
			return CountPDFPages(baseDir, relPath)
		}
	}
	return &Consumer{
		url:    url,
		queue:  queue,
		app:    application,
		probe:  probe,
		logger: logger,
		redial: 5 * time.Second,
	}, nil
}

// Run consumes until the context is cancelled, redialing on broker
// loss. Events that fail decoding or validation are rejected without
// requeue; store failures requeue once via the broker.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if err := c.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("amqp consume failed, redialing", "queue", c.queue, "err", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.redial):
		}
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.queue, err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	c.logger.Info("upload event consumer started", "queue", c.queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(d)
		}
	}
}

func (c *Consumer) handle(d amqp.Delivery) {
	ev, err := DecodeUploadEvent(d.Body)
	if err != nil {
		c.logger.Warn("dropping malformed upload event", "err", err)
		_ = d.Reject(false)
		return
	}
	ed, err := c.app.CreateEdition(ev.Command(c.probe, c.logger))
	if err != nil {
		c.logger.Error("create edition from upload event failed", "title", ev.Title, "err", err)
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	c.logger.Info("edition created from upload event", "edition_id", ed.ID, "title", ed.Title, "pages", ed.TotalPages)
	_ = d.Ack(false)
}
