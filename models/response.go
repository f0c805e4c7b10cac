package models

// ScrapeOutcome is the uniform result of one orchestrator call.
//
// Success implies Error == "". A failed outcome always carries an empty Data.
type ScrapeOutcome struct {
	Success bool     `json:"success"`
	Data    []Record `json:"data"`
	Error   string   `json:"error"`
}

// Succeeded builds a successful outcome. A nil slice is replaced with an
// empty one so it serializes as [].
func Succeeded(data []Record) ScrapeOutcome {
	if data == nil {
		data = []Record{}
	}
	return ScrapeOutcome{Success: true, Data: data}
}

// Failed builds a failed outcome carrying only the error message.
func Failed(msg string) ScrapeOutcome {
	return ScrapeOutcome{Success: false, Data: []Record{}, Error: msg}
}

// ScrapeResponse is the response for POST /api/v1/scrape.
type ScrapeResponse struct {
	ScrapeOutcome

	// Count is len(Data), mirrored for UIs that only show a summary.
	Count int `json:"count"`

	// Detail is populated when the request itself was rejected.
	Detail *ErrorDetail `json:"detail,omitempty"`
}

// HistoryEntry summarises one orchestrator call for the history sidebar.
type HistoryEntry struct {
	URL      string `json:"url"`
	Fetcher  string `json:"fetcher"`
	Selector string `json:"selector"`
	Count    int    `json:"count"`
	Status   string `json:"status"`
	Time     string `json:"time"`
}

// HistoryResponse is the response for GET /api/v1/history.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// ResultsResponse is the response for GET /api/v1/results.
type ResultsResponse struct {
	URL   string   `json:"url"`
	Count int      `json:"count"`
	Data  []Record `json:"data"`
}

// Preset is a quick-selector shortcut offered by the UI.
type Preset struct {
	Label    string `json:"label" yaml:"label"`
	Selector string `json:"selector" yaml:"selector"`
}

// PresetsResponse is the response for GET /api/v1/presets.
type PresetsResponse struct {
	Presets []Preset `json:"presets"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Sessions int    `json:"sessions"`
	Version  string `json:"version"`
}
