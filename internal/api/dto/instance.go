package dto

type RegionResponse struct {
	RegionID   int   `json:"region_id"`
	Population int64 `json:"population"`
}

type SiteResponse struct {
	SiteID int     `json:"site_id"`
	Cost   float64 `json:"cost"`
	Covers []int   `json:"covers"`
}

type InstanceResponse struct {
	Budget          float64          `json:"budget"`
	TotalPopulation int64            `json:"total_population"`
	Regions         []RegionResponse `json:"regions"`
	Sites           []SiteResponse   `json:"sites"`
}
