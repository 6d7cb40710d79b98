package public

type companyListResponse struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

type healthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time,omitempty"`
	Error  string `json:"error,omitempty"`
}
