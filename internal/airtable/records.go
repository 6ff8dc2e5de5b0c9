package airtable

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
)

// Record is a raw Airtable record. Field values are loosely typed: scalars,
// arrays (multi-select and linked records) or wrapped {"value": ...} objects
// for computed and AI fields.
type Record struct {
	ID          string                 `json:"id"`
	CreatedTime string                 `json:"createdTime,omitempty"`
	Fields      map[string]interface{} `json:"fields"`
}

// ListOptions scope a list request.
type ListOptions struct {
	FilterByFormula string
	View            string
	Fields          []string
	PageSize        int
	Offset          string
}

// ListResponse is one page of records; a non-empty Offset means more pages
// follow.
type ListResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

func (o ListOptions) encode() string {
	q := url.Values{}
	if o.FilterByFormula != "" {
		q.Set("filterByFormula", o.FilterByFormula)
	}
	if o.View != "" {
		q.Set("view", o.View)
	}
	for _, f := range o.Fields {
		q.Add("fields[]", f)
	}
	pageSize := o.PageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	q.Set("pageSize", strconv.Itoa(pageSize))
	if o.Offset != "" {
		q.Set("offset", o.Offset)
	}
	return q.Encode()
}

// ListRecords fetches a single page from the given table.
func (c *Client) ListRecords(ctx context.Context, table string, opts ListOptions) (*ListResponse, error) {
	u := fmt.Sprintf("%s/%s/%s?%s", c.BaseURL, c.baseID, url.PathEscape(table), opts.encode())

	var resp ListResponse
	if err := c.doJSON(ctx, "GET", u, nil, &resp); err != nil {
		return nil, fmt.Errorf("list records from %q: %w", table, err)
	}
	return &resp, nil
}

// ListAllRecords follows the offset cursor until the server stops returning
// one. Pages are fetched sequentially; each cursor gates the next request.
func (c *Client) ListAllRecords(ctx context.Context, table string, opts ListOptions) ([]Record, error) {
	var all []Record
	for {
		page, err := c.ListRecords(ctx, table, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if page.Offset == "" {
			return all, nil
		}
		opts.Offset = page.Offset
	}
}

// GetRecord fetches a single record by id.
func (c *Client) GetRecord(ctx context.Context, table, recordID string) (*Record, error) {
	u := fmt.Sprintf("%s/%s/%s/%s", c.BaseURL, c.baseID, url.PathEscape(table), recordID)

	var rec Record
	if err := c.doJSON(ctx, "GET", u, nil, &rec); err != nil {
		return nil, fmt.Errorf("get record %s from %q: %w", recordID, table, err)
	}
	return &rec, nil
}

// CreateOptions shape a create request.
type CreateOptions struct {
	// Typecast lets the server coerce string values into the field's type.
	Typecast bool
	// ReturnFieldsByFieldID keys the response fields by durable field id
	// instead of display name.
	ReturnFieldsByFieldID bool
}

type createRequest struct {
	Records               []createRecord `json:"records"`
	Typecast              bool           `json:"typecast,omitempty"`
	ReturnFieldsByFieldID bool           `json:"returnFieldsByFieldId,omitempty"`
}

type createRecord struct {
	Fields map[string]interface{} `json:"fields"`
}

type createResponse struct {
	Records []Record `json:"records"`
}

// CreateRecords creates up to MaxRecordsPerCreate records in one call and
// returns them with their server-assigned ids.
func (c *Client) CreateRecords(ctx context.Context, table string, fields []map[string]interface{}, opts CreateOptions) ([]Record, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("create records in %q: no records given", table)
	}
	if len(fields) > MaxRecordsPerCreate {
		return nil, fmt.Errorf("create records in %q: %d records exceeds the batch maximum of %d", table, len(fields), MaxRecordsPerCreate)
	}

	req := createRequest{
		Typecast:              opts.Typecast,
		ReturnFieldsByFieldID: opts.ReturnFieldsByFieldID,
	}
	for _, f := range fields {
		req.Records = append(req.Records, createRecord{Fields: f})
	}

	u := fmt.Sprintf("%s/%s/%s", c.BaseURL, c.baseID, url.PathEscape(table))

	var resp createResponse
	if err := c.doJSON(ctx, "POST", u, req, &resp); err != nil {
		return nil, fmt.Errorf("create records in %q: %w", table, err)
	}
	return resp.Records, nil
}

// MaxAttachmentSize is the content endpoint's hard payload ceiling.
const MaxAttachmentSize = 5 << 20

type uploadRequest struct {
	ContentType string `json:"contentType"`
	File        string `json:"file"`
	Filename    string `json:"filename"`
}

// UploadAttachment uploads a binary into an attachment field of an existing
// record via the dedicated content endpoint. The field may be addressed by
// display name or durable field id; the id is the safer choice.
func (c *Client) UploadAttachment(ctx context.Context, recordID, field, contentType, filename string, data []byte) error {
	if len(data) > MaxAttachmentSize {
		return fmt.Errorf("upload %q to field %q: %d bytes exceeds the %d byte attachment limit", filename, field, len(data), MaxAttachmentSize)
	}

	u := fmt.Sprintf("%s/%s/%s/%s/uploadAttachment", c.ContentURL, c.baseID, recordID, url.PathEscape(field))
	req := uploadRequest{
		ContentType: contentType,
		File:        base64.StdEncoding.EncodeToString(data),
		Filename:    filename,
	}

	if err := c.doJSON(ctx, "POST", u, req, nil); err != nil {
		return fmt.Errorf("upload %q to field %q of record %s: %w", filename, field, recordID, err)
	}
	return nil
}
