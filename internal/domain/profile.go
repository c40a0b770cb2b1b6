package domain

// Profile identifies an account. It is produced by the upstream directory and never
// mutated by the engine.
type Profile struct {
	DisplayName     string `json:"display_name"`
	FullName        string `json:"full_name"`
	UnitSystem      string `json:"unit_system,omitempty"`
	Location        string `json:"location,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}
