package sonar

// Measure is a single metric value.
type Measure struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
}

// FileMeasures holds the measures of one file in the component tree.
type FileMeasures struct {
	Key      string            `json:"key"`
	Path     string            `json:"path"`
	Measures map[string]string `json:"measures"`
}

type paging struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
	Total     int `json:"total"`
}

type searchHistoryResponse struct {
	Paging   paging `json:"paging"`
	Measures []struct {
		Metric  string `json:"metric"`
		History []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"history"`
	} `json:"measures"`
}

type componentTreeResponse struct {
	Paging     paging `json:"paging"`
	Components []struct {
		Key       string    `json:"key"`
		Path      string    `json:"path"`
		Qualifier string    `json:"qualifier"`
		Measures  []Measure `json:"measures"`
	} `json:"components"`
}

type errorResponse struct {
	Errors []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
}
