package models

// PollutantInfo describes one selectable pollutant.
type PollutantInfo struct {
	Name      string   `json:"name"`
	ShortName string   `json:"shortName"`
	Band      string   `json:"band"`
	Min       float64  `json:"min"`
	Max       float64  `json:"max"`
	Palette   []string `json:"palette"`
	Unit      string   `json:"unit"`
	Insight   string   `json:"insight"`
}

// CityInfo describes one reported city.
type CityInfo struct {
	Name  string `json:"name"`
	Point Point  `json:"point"`
}

// YearRange bounds the year selector.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Metadata carries everything the dashboard controls need.
type Metadata struct {
	Pollutants []PollutantInfo `json:"pollutants"`
	Cities     []CityInfo      `json:"cities"`
	Years      YearRange       `json:"years"`
	Months     []string        `json:"months"`
	Center     Point           `json:"center"`
	Zoom       int             `json:"zoom"`
}

// TileLayer is a renderable XYZ tile layer.
type TileLayer struct {
	Name    string `json:"name"`
	TileURL string `json:"tileUrl"`
}

// Legend maps palette position to physical values for the colorbar.
type Legend struct {
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Palette []string `json:"palette"`
	Unit    string   `json:"unit"`
}

// MapLayers is the response for a map layer export.
type MapLayers struct {
	Pollutant string    `json:"pollutant"`
	Date      string    `json:"date"`
	MonthName string    `json:"monthName"`
	Boundary  TileLayer `json:"boundary"`
	Raster    TileLayer `json:"raster"`
	Legend    Legend    `json:"legend"`
}

// GenerateReportRequest asks for a city statistics report.
type GenerateReportRequest struct {
	Pollutant string `json:"pollutant"`
	Year      int    `json:"year"`
	Month     int    `json:"month"`
}

// ReportRow is one city's observation. Value is null when the remote
// reduction found no data for the city.
type ReportRow struct {
	City      string   `json:"city"`
	Pollutant string   `json:"pollutant"`
	Value     *float64 `json:"value"`
	Unit      string   `json:"unit"`
	Date      string   `json:"date"`
}

// Report is a generated city statistics report.
type Report struct {
	Pollutant   string      `json:"pollutant"`
	Unit        string      `json:"unit"`
	Date        string      `json:"date"`
	Filename    string      `json:"filename"`
	GeneratedAt Timestamp   `json:"generatedAt"`
	Rows        []ReportRow `json:"rows"`
}
