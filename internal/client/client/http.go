package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/snapnote/internal/client/models"
	"github.com/dmitrijs2005/snapnote/internal/common"
	"github.com/dmitrijs2005/snapnote/internal/netx"
)

// HTTPClient talks to the collector's HTTP API.
type HTTPClient struct {
	baseURL string
	http    netx.Doer
}

// NewHTTPClient returns a client for the collector at baseURL
// (e.g. "http://127.0.0.1:3000"). A nil httpClient means http.DefaultClient.
func NewHTTPClient(baseURL string, httpClient *http.Client) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadEndpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadEndpoint, baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+common.PathPing, nil)
	if err != nil {
		return err
	}
	return mapError(netx.Do(c.http, req))
}

// UploadNote posts the note as multipart/form-data with the fields id, text,
// createdAt and an image attachment named note.jpg.
func (c *HTTPClient) UploadNote(ctx context.Context, n *models.Note) error {
	body, contentType, err := encodeNote(n)
	if err != nil {
		return fmt.Errorf("%w: encode note %s: %w", common.ErrTransferFailure, n.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+common.PathNotes, body)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrTransferFailure, err)
	}
	req.Header.Set("Content-Type", contentType)

	if err := netx.Do(c.http, req); err != nil {
		return fmt.Errorf("%w: upload note %s: %w", common.ErrTransferFailure, n.ID, mapError(err))
	}
	return nil
}

type syncedRequest struct {
	Count int `json:"count"`
}

func (c *HTTPClient) ReportSynced(ctx context.Context, count int) error {
	return mapError(netx.PostJSON(ctx, c.http, c.baseURL+common.PathSyncCompleted, syncedRequest{Count: count}))
}

func encodeNote(n *models.Note) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{common.FieldID, n.ID},
		{common.FieldText, n.Text},
		{common.FieldCreatedAt, strconv.FormatInt(n.CreatedAt, 10)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, common.FieldImage, common.ImageFileName))
	h.Set("Content-Type", common.ImageContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(n.Image); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// mapError folds network-level failures into ErrUnavailable and keeps
// status errors as they are.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var se *netx.StatusError
	if errors.As(err, &se) {
		return err
	}

	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
