package domain

// DefaultSectorID serves any sector the catalog does not list.
const DefaultSectorID = "_default"

// ArtifactSpec is a catalog entry materialized as a ComplianceItem.
type ArtifactSpec struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	Type        ItemType `json:"type"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	Required    bool     `json:"required"`
}

// RequirementSpec is a catalog entry materialized as an EmployeeRequirement.
type RequirementSpec struct {
	Type          string `json:"type"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	RenewalMonths *int   `json:"renewal_months"`
	Mandatory     bool   `json:"mandatory"`
}

type SectorInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Industry  string `json:"industry"`
	Regulator string `json:"regulator"`
}

type BusinessSize struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
