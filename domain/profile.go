package domain

import "time"

// Profile holds account details of an authenticated identity. ID equals the auth user id.
type Profile struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name,omitempty" validate:"max=200"`
	CompanyName string    `json:"company_name,omitempty" validate:"max=200"`
	AvatarURL   string    `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Role        string    `json:"role,omitempty" validate:"max=100"`
	Website     string    `json:"website,omitempty" validate:"omitempty,url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Columns returns the writable columns of the row.
func (p *Profile) Columns() map[string]interface{} {
	return map[string]interface{}{
		"id":           p.ID,
		"full_name":    nullString(p.FullName),
		"company_name": nullString(p.CompanyName),
		"avatar_url":   nullString(p.AvatarURL),
		"role":         nullString(p.Role),
		"website":      nullString(p.Website),
	}
}

// ProfilePatch is a partial profile update.
type ProfilePatch struct {
	FullName    *string `json:"full_name" validate:"omitnil,max=200"`
	CompanyName *string `json:"company_name" validate:"omitnil,max=200"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	Role        *string `json:"role" validate:"omitnil,max=100"`
	Website     *string `json:"website" validate:"omitempty,url"`
}

// Apply copies the patch onto p.
func (pp ProfilePatch) Apply(p *Profile) {
	if pp.FullName != nil {
		p.FullName = *pp.FullName
	}
	if pp.CompanyName != nil {
		p.CompanyName = *pp.CompanyName
	}
	if pp.AvatarURL != nil {
		p.AvatarURL = *pp.AvatarURL
	}
	if pp.Role != nil {
		p.Role = *pp.Role
	}
	if pp.Website != nil {
		p.Website = *pp.Website
	}
}
