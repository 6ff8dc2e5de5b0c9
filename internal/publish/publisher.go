// Package publish creates a record in the publications table and attaches
// the generated artifact to it, compensating for the API's read-after-write
// inconsistency with a fixed delay before each verification read.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vinarium/carta/internal/airtable"
	"github.com/vinarium/carta/pkg/logger"
)

// defaultPropagationDelay is how long a freshly written record is given to
// become readable before the next step touches it.
const defaultPropagationDelay = 3 * time.Second

// Publisher uploads generated artifacts back into the base.
type Publisher struct {
	Client *airtable.Client

	// HTTP downloads URL sources; separate from the API client's transport.
	HTTP *http.Client

	// PropagationDelay is the fixed wait before each post-write re-read.
	PropagationDelay time.Duration
}

func NewPublisher(client *airtable.Client) *Publisher {
	return &Publisher{
		Client:           client,
		HTTP:             &http.Client{Timeout: 60 * time.Second},
		PropagationDelay: defaultPropagationDelay,
	}
}

// Request names everything a publication needs. Source may be a local file
// path or an http(s) URL.
type Request struct {
	Table           string
	VenueID         string
	Date            string
	AttachmentField string
	Source          string

	// Filename overrides the basename derived from Source.
	Filename string
}

func (r Request) validate() error {
	switch {
	case r.Table == "":
		return errors.New("publish: target table not set")
	case r.VenueID == "":
		return errors.New("publish: venue record id not set")
	case r.Date == "":
		return errors.New("publish: date not set")
	case r.AttachmentField == "":
		return errors.New("publish: attachment field not set")
	case r.Source == "":
		return errors.New("publish: source file path or URL not set")
	}
	return nil
}

// PublishedRecord reports a confirmed publication.
type PublishedRecord struct {
	RecordID    string
	Filename    string
	Size        int
	Attachments int
}

// Publish runs the full workflow: resolve the source binary, create the
// record without its attachment field, confirm the record is readable,
// upload the binary, then confirm the attachment landed. It never reports
// success without that final confirmation.
func (p *Publisher) Publish(ctx context.Context, req Request) (*PublishedRecord, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	data, filename, contentType, err := p.resolveSource(ctx, req.Source)
	if err != nil {
		return nil, fmt.Errorf("resolve attachment source: %w", err)
	}
	if req.Filename != "" {
		filename = req.Filename
	}
	if len(data) > airtable.MaxAttachmentSize {
		return nil, fmt.Errorf("publish %q: %d bytes exceeds the %d byte attachment limit", filename, len(data), airtable.MaxAttachmentSize)
	}

	// The attachment field cannot be populated at creation time; it is
	// filled by the dedicated upload endpoint below.
	fields := map[string]interface{}{
		"Data":    req.Date,
		"Enoteca": []string{req.VenueID},
	}
	created, err := p.Client.CreateRecords(ctx, req.Table, []map[string]interface{}{fields}, airtable.CreateOptions{Typecast: true})
	if err != nil {
		var apiErr *airtable.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("create publication record: %w (likely causes: wrong table name, field names missing from the table, or an expired/underscoped API token)", err)
		}
		return nil, fmt.Errorf("create publication record: %w", err)
	}
	recordID := created[0].ID
	logger.Infof("created publication record %s in %q", recordID, req.Table)

	if err := awaitPropagation(ctx, p.PropagationDelay); err != nil {
		return nil, err
	}
	if _, err := p.Client.GetRecord(ctx, req.Table, recordID); err != nil {
		return nil, fmt.Errorf("confirm record %s before upload: %w", recordID, err)
	}

	if err := p.Client.UploadAttachment(ctx, recordID, req.AttachmentField, contentType, filename, data); err != nil {
		var apiErr *airtable.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w (if the field was addressed by display name, retry with its durable field id)", err)
		}
		return nil, err
	}

	if err := awaitPropagation(ctx, p.PropagationDelay); err != nil {
		return nil, err
	}
	rec, err := p.Client.GetRecord(ctx, req.Table, recordID)
	if err != nil {
		return nil, fmt.Errorf("verify attachment on record %s: %w", recordID, err)
	}

	// An empty attachment field is omitted from the response entirely, so
	// a missing key means the upload did not stick.
	attachments, ok := rec.Fields[req.AttachmentField].([]interface{})
	if !ok || len(attachments) == 0 {
		return nil, fmt.Errorf("verify attachment: field %q on record %s does not hold %q (observed value: %v, available fields: %s)",
			req.AttachmentField, recordID, filename, rec.Fields[req.AttachmentField], strings.Join(fieldNames(rec.Fields), ", "))
	}

	logger.Infof("attached %q (%d bytes) to record %s", filename, len(data), recordID)
	return &PublishedRecord{
		RecordID:    recordID,
		Filename:    filename,
		Size:        len(data),
		Attachments: len(attachments),
	}, nil
}

// awaitPropagation is the single compensation for eventual consistency: one
// fixed delay, no polling. The strategy can change here without touching
// call sites.
func awaitPropagation(ctx context.Context, budget time.Duration) error {
	if budget <= 0 {
		return nil
	}
	select {
	case <-time.After(budget):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Publisher) resolveSource(ctx context.Context, source string) (data []byte, filename, contentType string, err error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.downloadSource(ctx, source)
	}

	data, err = os.ReadFile(source)
	if err != nil {
		return nil, "", "", err
	}
	filename = filepath.Base(source)
	return data, filename, contentTypeFor(filename, ""), nil
}

func (p *Publisher) downloadSource(ctx context.Context, rawURL string) (data []byte, filename, contentType string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", "", fmt.Errorf("parse source URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, "", "", err
	}
	resp, err := p.HTTP.Do(req)
	if err != nil {
		return nil, "", "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", "", fmt.Errorf("download %s: %s", rawURL, resp.Status)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, airtable.MaxAttachmentSize+1))
	if err != nil {
		return nil, "", "", fmt.Errorf("download %s: %w", rawURL, err)
	}

	filename = path.Base(u.Path)
	if filename == "/" || filename == "." {
		filename = "attachment"
	}
	contentType = resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if contentType == "" {
		contentType = contentTypeFor(filename, "")
	}
	return data, filename, contentType, nil
}

func contentTypeFor(filename, fallback string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	if fallback != "" {
		return fallback
	}
	return "application/octet-stream"
}

func fieldNames(fields map[string]interface{}) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
