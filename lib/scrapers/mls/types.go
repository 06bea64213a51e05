package mls

// Member is one entry of the member list report. Only the fields used by
// this tool are decoded, the cached report keeps everything else.
type Member struct {
	Id     int64  `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
}

// Calling is one entry of the members with callings report.
type Calling struct {
	// Id is the id of the member holding the calling.
	Id            int64   `json:"id"`
	Name          string  `json:"name"`
	Position      string  `json:"position"`
	Organization  string  `json:"organization"`
	SubOrgType    *string `json:"subOrgType"`
	SetApart      bool    `json:"setApart"`
	SustainedDate string  `json:"sustainedDate"`
}

// SubOrgKey is the grouping the calling belongs to under its organization.
func (c Calling) SubOrgKey() string {
	if c.SubOrgType == nil || *c.SubOrgType == "" {
		return c.Organization
	}
	return *c.SubOrgType
}
