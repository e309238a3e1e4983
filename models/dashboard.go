package models

type DashboardStats struct {
	RidersTotal      int `json:"riders_total"`
	EventsTotal      int `json:"events_total"`
	PublishedEvents  int `json:"published_events"`
	ResultsTotal     int `json:"results_total"`
	RidersWithSeason int `json:"riders_with_season_points"`
}
