package models

// DashboardSummary holds the headline defect counts.
type DashboardSummary struct {
	Total int `json:"total"`
	Open  int `json:"open"`
	Scrap int `json:"scrap"`
}

// ParetoEntry is the quantity logged for one defect type in the recent window.
type ParetoEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Dashboard is the analytics view served to every authenticated role.
type Dashboard struct {
	Summary DashboardSummary `json:"summary"`
	Pareto  []ParetoEntry    `json:"pareto"`
}

// UnknownDefectTypeName labels Pareto groups whose defect type no longer resolves.
const UnknownDefectTypeName = "Unknown"
