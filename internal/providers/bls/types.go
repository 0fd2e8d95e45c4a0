package bls

type blsRequest struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       string   `json:"startyear"`
	EndYear         string   `json:"endyear"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
}

type blsResponse struct {
	Status       string      `json:"status"`
	ResponseTime int         `json:"responseTime"`
	Message      []string    `json:"message"`
	Results      *blsResults `json:"Results"`
}

// Series is a pointer so a missing key can be told apart from an empty list.
type blsResults struct {
	Series *[]blsSeries `json:"series"`
}

type blsSeries struct {
	SeriesID string         `json:"seriesID"`
	Data     []blsDataPoint `json:"data"`
}

type blsDataPoint struct {
	Year       string `json:"year"`
	Period     string `json:"period"` // "M01".."M12", "M13" = annual average
	PeriodName string `json:"periodName"`
	Value      string `json:"value"`
}
