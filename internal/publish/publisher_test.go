package publish

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinarium/carta/internal/airtable"
)

func newTestPublisher(t *testing.T) *Publisher {
	t.Helper()
	client := airtable.NewClient("test-key", "appTEST")
	httpmock.ActivateNonDefault(client.HTTPClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	p := NewPublisher(client)
	p.HTTP = client.HTTPClient
	p.PropagationDelay = 0
	return p
}

func writeArtifact(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func validRequest(source string) Request {
	return Request{
		Table:           "Pubblicazioni",
		VenueID:         "recVENUE",
		Date:            "2026-08-23",
		AttachmentField: "Documento",
		Source:          source,
	}
}

func registerCreate(t *testing.T) {
	t.Helper()
	httpmock.RegisterResponder("POST", "https://api.airtable.com/v0/appTEST/Pubblicazioni",
		httpmock.NewStringResponder(http.StatusOK, `{"records": [{"id": "recNEW", "fields": {}}]}`))
}

func registerUpload(t *testing.T) {
	t.Helper()
	httpmock.RegisterResponder("POST", "https://content.airtable.com/v0/appTEST/recNEW/Documento/uploadAttachment",
		httpmock.NewStringResponder(http.StatusOK, `{}`))
}

func TestPublish_Success(t *testing.T) {
	p := newTestPublisher(t)
	source := writeArtifact(t, "carta.pdf", []byte("%PDF-1.7"))

	registerCreate(t)
	registerUpload(t)
	httpmock.RegisterResponder("GET", "https://api.airtable.com/v0/appTEST/Pubblicazioni/recNEW",
		httpmock.NewStringResponder(http.StatusOK, `{
			"id": "recNEW",
			"fields": {"Data": "2026-08-23", "Documento": [{"id": "att1", "filename": "carta.pdf"}]}
		}`))

	published, err := p.Publish(context.Background(), validRequest(source))
	require.NoError(t, err)
	assert.Equal(t, "recNEW", published.RecordID)
	assert.Equal(t, "carta.pdf", published.Filename)
	assert.Equal(t, len("%PDF-1.7"), published.Size)
	assert.Equal(t, 1, published.Attachments)
}

func TestPublish_MissingParameters(t *testing.T) {
	p := newTestPublisher(t)

	tests := []struct {
		name   string
		mutate func(*Request)
		want   string
	}{
		{"table", func(r *Request) { r.Table = "" }, "target table"},
		{"venue", func(r *Request) { r.VenueID = "" }, "venue record id"},
		{"date", func(r *Request) { r.Date = "" }, "date"},
		{"field", func(r *Request) { r.AttachmentField = "" }, "attachment field"},
		{"source", func(r *Request) { r.Source = "" }, "source file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest("somewhere.pdf")
			tt.mutate(&req)
			_, err := p.Publish(context.Background(), req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestPublish_OversizedSource(t *testing.T) {
	p := newTestPublisher(t)
	source := writeArtifact(t, "huge.pdf", make([]byte, airtable.MaxAttachmentSize+1))

	_, err := p.Publish(context.Background(), validRequest(source))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attachment limit")
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestPublish_CreatePermissionHint(t *testing.T) {
	p := newTestPublisher(t)
	source := writeArtifact(t, "carta.pdf", []byte("%PDF-1.7"))

	httpmock.RegisterResponder("POST", "https://api.airtable.com/v0/appTEST/Pubblicazioni",
		httpmock.NewStringResponder(http.StatusForbidden,
			`{"error": {"type": "INVALID_PERMISSIONS", "message": "You are not permitted to perform this operation"}}`))

	_, err := p.Publish(context.Background(), validRequest(source))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "likely causes")
}

func TestPublish_ConfirmFetchFailureIsFatal(t *testing.T) {
	p := newTestPublisher(t)
	source := writeArtifact(t, "carta.pdf", []byte("%PDF-1.7"))

	registerCreate(t)
	httpmock.RegisterResponder("GET", "https://api.airtable.com/v0/appTEST/Pubblicazioni/recNEW",
		httpmock.NewStringResponder(http.StatusNotFound, `{"error": "NOT_FOUND"}`))

	_, err := p.Publish(context.Background(), validRequest(source))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confirm record recNEW")
	// The upload endpoint was never touched.
	info := httpmock.GetCallCountInfo()
	assert.Zero(t, info["POST https://content.airtable.com/v0/appTEST/recNEW/Documento/uploadAttachment"])
}

func TestPublish_UploadNotFoundHint(t *testing.T) {
	p := newTestPublisher(t)
	source := writeArtifact(t, "carta.pdf", []byte("%PDF-1.7"))

	registerCreate(t)
	httpmock.RegisterResponder("GET", "https://api.airtable.com/v0/appTEST/Pubblicazioni/recNEW",
		httpmock.NewStringResponder(http.StatusOK, `{"id": "recNEW", "fields": {}}`))
	httpmock.RegisterResponder("POST", "https://content.airtable.com/v0/appTEST/recNEW/Documento/uploadAttachment",
		httpmock.NewStringResponder(http.StatusNotFound, `{"error": "NOT_FOUND"}`))

	_, err := p.Publish(context.Background(), validRequest(source))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "durable field id")
}

func TestPublish_VerificationFailure(t *testing.T) {
	p := newTestPublisher(t)
	source := writeArtifact(t, "carta.pdf", []byte("%PDF-1.7"))

	registerCreate(t)
	registerUpload(t)
	// The attachment field never shows up on re-read: the empty field is
	// omitted from the response entirely.
	httpmock.RegisterResponder("GET", "https://api.airtable.com/v0/appTEST/Pubblicazioni/recNEW",
		httpmock.NewStringResponder(http.StatusOK, `{"id": "recNEW", "fields": {"Data": "2026-08-23"}}`))

	published, err := p.Publish(context.Background(), validRequest(source))
	require.Error(t, err)
	assert.Nil(t, published)
	assert.Contains(t, err.Error(), `"Documento"`)
	assert.Contains(t, err.Error(), "carta.pdf")
	assert.Contains(t, err.Error(), "Data")
}

func TestPublish_URLSource(t *testing.T) {
	p := newTestPublisher(t)

	httpmock.RegisterResponder("GET", "https://files.example.com/artifacts/carta-vini.pdf",
		httpmock.NewStringResponder(http.StatusOK, "%PDF-1.7"))
	registerCreate(t)
	registerUpload(t)
	httpmock.RegisterResponder("GET", "https://api.airtable.com/v0/appTEST/Pubblicazioni/recNEW",
		httpmock.NewStringResponder(http.StatusOK, `{
			"id": "recNEW",
			"fields": {"Documento": [{"id": "att1"}]}
		}`))

	published, err := p.Publish(context.Background(), validRequest("https://files.example.com/artifacts/carta-vini.pdf"))
	require.NoError(t, err)
	// Filename defaults to the URL path basename.
	assert.Equal(t, "carta-vini.pdf", published.Filename)
}

func TestPublish_FilenameOverride(t *testing.T) {
	p := newTestPublisher(t)
	source := writeArtifact(t, "tmp-artifact.pdf", []byte("%PDF-1.7"))

	registerCreate(t)
	registerUpload(t)
	httpmock.RegisterResponder("GET", "https://api.airtable.com/v0/appTEST/Pubblicazioni/recNEW",
		httpmock.NewStringResponder(http.StatusOK, `{"id": "recNEW", "fields": {"Documento": [{"id": "att1"}]}}`))

	req := validRequest(source)
	req.Filename = "2026-08-23_carta-vini_Enoteca_Centrale.pdf"
	published, err := p.Publish(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-23_carta-vini_Enoteca_Centrale.pdf", published.Filename)
}
