package business

// Caller is the authenticated principal behind a request
type Caller struct {
	CompanyID string `json:"company_id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	IsAdmin   bool   `json:"is_admin"`
}

// CanAccess reports whether the caller may act on resources of companyID
func (c Caller) CanAccess(companyID string) bool {
	return c.IsAdmin || (c.CompanyID != "" && c.CompanyID == companyID)
}
