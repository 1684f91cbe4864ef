// Package noaa queries the NOAA Climate Data Online v2 web API for yearly
// station observations and station metadata.
package noaa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/carlesmila/geoblog/internal/geostat"
)

const (
	// DefaultBaseURL is the CDO v2 API root.
	DefaultBaseURL = "https://www.ncei.noaa.gov/cdo-web/api/v2"

	// pageLimit is the maximum page size the API allows.
	pageLimit = 1000

	maxRetries     = 3
	initialBackoff = 500 * time.Millisecond
)

// Client is a NOAA CDO API client. Requests carry the access token in the
// `token` header; 429 and 5xx responses are retried with exponential
// backoff.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	clock      clockwork.Clock
	logger     *slog.Logger

	// stations, when set, answers station-metadata queries instead of the
	// API, normally through an LRU cache.
	stations StationLister
}

// NewClient creates a CDO client with the given access token. An empty
// baseURL selects the public API root.
func NewClient(token, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		token:      token,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		clock:      clockwork.NewRealClock(),
		logger:     logger,
	}
}

// UseStationCache memoizes station-metadata queries through an LRU cache,
// sparing repeated runs the stations round trips.
func (c *Client) UseStationCache(maxEntries int) {
	c.stations = NewCachedStations(c, maxEntries)
}

// Station is CDO station metadata.
type Station struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
	MinDate   string  `json:"mindate"`
	MaxDate   string  `json:"maxdate"`
}

// DataValue is one observation record from the /data endpoint.
type DataValue struct {
	Date     string  `json:"date"`
	DataType string  `json:"datatype"`
	Station  string  `json:"station"`
	Value    float64 `json:"value"`
}

type resultSet struct {
	Offset int `json:"offset"`
	Count  int `json:"count"`
	Limit  int `json:"limit"`
}

type metadata struct {
	ResultSet resultSet `json:"resultset"`
}

type stationsResponse struct {
	Metadata metadata  `json:"metadata"`
	Results  []Station `json:"results"`
}

type dataResponse struct {
	Metadata metadata    `json:"metadata"`
	Results  []DataValue `json:"results"`
}

// Stations lists all stations matching the query parameters, following the
// resultset pagination to the end.
func (c *Client) Stations(ctx context.Context, params url.Values) ([]Station, error) {
	var all []Station
	err := c.paginate(ctx, "/stations", params, func(body []byte) (resultSet, error) {
		var page stationsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return resultSet{}, fmt.Errorf("decode stations page: %w", err)
		}
		all = append(all, page.Results...)
		return page.Metadata.ResultSet, nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// Data lists all observation records matching the query parameters.
func (c *Client) Data(ctx context.Context, params url.Values) ([]DataValue, error) {
	var all []DataValue
	err := c.paginate(ctx, "/data", params, func(body []byte) (resultSet, error) {
		var page dataResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return resultSet{}, fmt.Errorf("decode data page: %w", err)
		}
		all = append(all, page.Results...)
		return page.Metadata.ResultSet, nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// YearlyPrecipitation fetches GSOY total precipitation for a location (e.g.
// "FIPS:GM" for Germany) and year, joined with station coordinates into
// observation points. Station elevation rides along as the first covariate.
func (c *Client) YearlyPrecipitation(ctx context.Context, locationID string, year int) ([]geostat.Point, error) {
	start := fmt.Sprintf("%d-01-01", year)
	end := fmt.Sprintf("%d-12-31", year)

	lister := StationLister(c)
	if c.stations != nil {
		lister = c.stations
	}
	stations, err := lister.Stations(ctx, url.Values{
		"datasetid":  {"GSOY"},
		"locationid": {locationID},
		"startdate":  {start},
		"enddate":    {end},
	})
	if err != nil {
		return nil, fmt.Errorf("noaa: stations for %s: %w", locationID, err)
	}
	byID := make(map[string]Station, len(stations))
	for _, s := range stations {
		byID[s.ID] = s
	}

	values, err := c.Data(ctx, url.Values{
		"datasetid":  {"GSOY"},
		"datatypeid": {"PRCP"},
		"locationid": {locationID},
		"startdate":  {start},
		"enddate":    {end},
		"units":      {"metric"},
	})
	if err != nil {
		return nil, fmt.Errorf("noaa: precipitation for %s: %w", locationID, err)
	}

	points := make([]geostat.Point, 0, len(values))
	skipped := 0
	for _, v := range values {
		s, ok := byID[v.Station]
		if !ok {
			skipped++
			continue
		}
		points = append(points, geostat.Point{
			X:          s.Longitude,
			Y:          s.Latitude,
			Value:      v.Value,
			Covariates: []float64{s.Elevation},
		})
	}
	if skipped > 0 {
		c.logger.Warn("dropped observations without station metadata",
			"location", locationID, "skipped", skipped)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("noaa: no observations for %s in %d", locationID, year)
	}
	return points, nil
}

// paginate fetches pages of a collection endpoint until the resultset is
// exhausted. The collect callback decodes one page and reports the server's
// pagination state.
func (c *Client) paginate(ctx context.Context, path string, params url.Values, collect func([]byte) (resultSet, error)) error {
	offset := 1
	for {
		page := url.Values{}
		for k, vs := range params {
			page[k] = vs
		}
		page.Set("limit", strconv.Itoa(pageLimit))
		page.Set("offset", strconv.Itoa(offset))

		body, err := c.get(ctx, path, page)
		if err != nil {
			return err
		}
		rs, err := collect(body)
		if err != nil {
			return err
		}
		if rs.Count == 0 || offset+rs.Limit > rs.Count {
			return nil
		}
		offset += rs.Limit
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	fullURL := c.baseURL + path + "?" + params.Encode()

	backoff := initialBackoff
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying NOAA request", "path", path, "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-c.clock.After(backoff):
			}
			backoff *= 2
		}

		body, retryable, err := c.doRequest(ctx, fullURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, fmt.Errorf("noaa: giving up after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("noaa request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("noaa API status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("noaa API status %d: %s", resp.StatusCode, b)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}
	return body, false, nil
}
