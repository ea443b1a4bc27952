package domain

import "time"

// Client is a customer whose compliance work is tracked by its owner.
type Client struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	Name          string       `json:"name" validate:"notblank,max=200"`
	ContactPerson string       `json:"contact_person,omitempty" validate:"max=200"`
	Email         string       `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string       `json:"phone,omitempty" validate:"max=50"`
	Address       string       `json:"address,omitempty" validate:"max=500"`
	Status        ClientStatus `json:"status" validate:"oneof=active inactive pending"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (c *Client) IsActive() bool {
	return c != nil && c.Status == ClientActive
}

// Columns returns the writable columns of the row.
func (c *Client) Columns() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        c.UserID,
		"name":           c.Name,
		"contact_person": nullString(c.ContactPerson),
		"email":          nullString(c.Email),
		"phone":          nullString(c.Phone),
		"address":        nullString(c.Address),
		"status":         c.Status,
	}
}

// SearchFields lists the values matched by free-text search.
func (c Client) SearchFields() []string {
	return []string{c.Name, c.ContactPerson, c.Email}
}

func (c Client) StatusValue() string {
	return string(c.Status)
}

// ClientPatch is a partial client update; nil fields are left untouched.
type ClientPatch struct {
	Name          *string       `json:"name" validate:"omitnil,notblank,max=200"`
	ContactPerson *string       `json:"contact_person" validate:"omitnil,max=200"`
	Email         *string       `json:"email" validate:"omitempty,email"`
	Phone         *string       `json:"phone" validate:"omitnil,max=50"`
	Address       *string       `json:"address" validate:"omitnil,max=500"`
	Status        *ClientStatus `json:"status" validate:"omitnil,oneof=active inactive pending"`
}

// Columns returns only the columns set on the patch.
func (p ClientPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.ContactPerson != nil {
		cols["contact_person"] = nullString(*p.ContactPerson)
	}
	if p.Email != nil {
		cols["email"] = nullString(*p.Email)
	}
	if p.Phone != nil {
		cols["phone"] = nullString(*p.Phone)
	}
	if p.Address != nil {
		cols["address"] = nullString(*p.Address)
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	return cols
}

// Apply copies the patch onto c.
func (p ClientPatch) Apply(c *Client) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.ContactPerson != nil {
		c.ContactPerson = *p.ContactPerson
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
