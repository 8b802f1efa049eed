// Package sheets is a minimal Google Sheets REST client covering the value
// and formatting operations the pipeline needs: batched range reads, batched
// RAW value writes, and repeatCell background colors.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4"

// Client performs Google Sheets API operations against one spreadsheet.
type Client interface {
	BatchGet(ctx context.Context, ranges []string) ([]ValueRange, error)
	BatchUpdateValues(ctx context.Context, data []ValueRange) error
	BatchUpdateFormat(ctx context.Context, requests []Request) error
	SheetID(ctx context.Context, title string) (int64, error)
}

// ValueRange is a block of cell values addressed by an A1 range.
type ValueRange struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// GridRange addresses cells by zero-based, end-exclusive indexes.
type GridRange struct {
	SheetID          int64 `json:"sheetId"`
	StartRowIndex    int   `json:"startRowIndex"`
	EndRowIndex      int   `json:"endRowIndex"`
	StartColumnIndex int   `json:"startColumnIndex"`
	EndColumnIndex   int   `json:"endColumnIndex"`
}

// Color is an RGB color with channels in [0,1].
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

// CellFormat holds the cell formatting fields the client sets.
type CellFormat struct {
	BackgroundColor *Color `json:"backgroundColor,omitempty"`
}

// CellData wraps the format applied to a cell.
type CellData struct {
	UserEnteredFormat CellFormat `json:"userEnteredFormat"`
}

// RepeatCellRequest applies a cell format across a grid range.
type RepeatCellRequest struct {
	Range  GridRange `json:"range"`
	Cell   CellData  `json:"cell"`
	Fields string    `json:"fields"`
}

// Request is one spreadsheet batchUpdate request.
type Request struct {
	RepeatCell *RepeatCellRequest `json:"repeatCell,omitempty"`
}

// TokenSource supplies a bearer token for API calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	spreadsheetID string
	baseURL       string
	tokens        TokenSource
	http          *http.Client
}

// NewClient creates a Sheets client bound to one spreadsheet.
func NewClient(spreadsheetID string, tokens TokenSource, opts ...Option) Client {
	c := &httpClient{
		spreadsheetID: spreadsheetID,
		baseURL:       defaultBaseURL,
		tokens:        tokens,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type batchGetResponse struct {
	ValueRanges []ValueRange `json:"valueRanges"`
}

func (c *httpClient) BatchGet(ctx context.Context, ranges []string) ([]ValueRange, error) {
	q := url.Values{}
	for _, r := range ranges {
		q.Add("ranges", r)
	}

	endpoint := c.baseURL + "/spreadsheets/" + c.spreadsheetID + "/values:batchGet?" + q.Encode()
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var result batchGetResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "sheets: unmarshal batchGet response")
	}
	return result.ValueRanges, nil
}

type batchUpdateValuesRequest struct {
	ValueInputOption string       `json:"valueInputOption"`
	Data             []ValueRange `json:"data"`
}

func (c *httpClient) BatchUpdateValues(ctx context.Context, data []ValueRange) error {
	if len(data) == 0 {
		return nil
	}

	payload, err := json.Marshal(batchUpdateValuesRequest{ValueInputOption: "RAW", Data: data})
	if err != nil {
		return eris.Wrap(err, "sheets: marshal values batchUpdate")
	}

	endpoint := c.baseURL + "/spreadsheets/" + c.spreadsheetID + "/values:batchUpdate"
	_, err = c.do(ctx, http.MethodPost, endpoint, payload)
	return err
}

type batchUpdateRequest struct {
	Requests []Request `json:"requests"`
}

func (c *httpClient) BatchUpdateFormat(ctx context.Context, requests []Request) error {
	if len(requests) == 0 {
		return nil
	}

	payload, err := json.Marshal(batchUpdateRequest{Requests: requests})
	if err != nil {
		return eris.Wrap(err, "sheets: marshal batchUpdate")
	}

	endpoint := c.baseURL + "/spreadsheets/" + c.spreadsheetID + ":batchUpdate"
	_, err = c.do(ctx, http.MethodPost, endpoint, payload)
	return err
}

type spreadsheetMeta struct {
	Sheets []struct {
		Properties struct {
			SheetID int64  `json:"sheetId"`
			Title   string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

func (c *httpClient) SheetID(ctx context.Context, title string) (int64, error) {
	endpoint := c.baseURL + "/spreadsheets/" + c.spreadsheetID + "?fields=sheets.properties"
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	var meta spreadsheetMeta
	if err := json.Unmarshal(body, &meta); err != nil {
		return 0, eris.Wrap(err, "sheets: unmarshal spreadsheet metadata")
	}
	for _, s := range meta.Sheets {
		if s.Properties.Title == title {
			return s.Properties.SheetID, nil
		}
	}
	return 0, eris.Errorf("sheets: worksheet %q not found", title)
}

func (c *httpClient) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, eris.Wrap(err, "sheets: create request")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "sheets: token")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "sheets: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "sheets: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("sheets: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
