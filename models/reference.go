package models

// Machine is a production asset defects are logged against. Read-only for the lifecycle.
type Machine struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

// DefectType classifies defects and groups them for Pareto analysis.
type DefectType struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Code        string `json:"code"`
	Description string `json:"description"`
}
