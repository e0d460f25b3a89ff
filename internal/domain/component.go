package domain

// SystemComponent is one entry of the fixed catalogue of components the
// public status page reports on. Components are reference data seeded by
// migration, not managed through the API.
type SystemComponent struct {
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	DisplayOrder int    `json:"display_order"`
}
