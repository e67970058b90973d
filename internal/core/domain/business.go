package domain

import "time"

type SubscriptionStatus string

const (
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionActive   SubscriptionStatus = "active"
)

// Business is the tenant root. One per owner.
type Business struct {
	ID                 string             `json:"id"`
	OwnerUserID        string             `json:"user_id"`
	Name               string             `json:"name"`
	Industry           string             `json:"industry"`
	Sector             string             `json:"sector"`
	Size               string             `json:"size"`
	UKNation           string             `json:"uk_nation"`
	Address            string             `json:"address,omitempty"`
	Phone              string             `json:"phone,omitempty"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	SubscriptionPlan   string             `json:"subscription_plan,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          *time.Time         `json:"updated_at,omitempty"`
}

// BusinessProfile carries the owner-editable business fields.
type BusinessProfile struct {
	Name     string
	Industry string
	Sector   string
	Size     string
	UKNation string
	Address  string
	Phone    string
}

// Apply copies the profile onto b and reports whether the sector changed.
func (b *Business) Apply(p BusinessProfile) (sectorChanged bool) {
	sectorChanged = b.Sector != p.Sector
	b.Name = p.Name
	b.Industry = p.Industry
	b.Sector = p.Sector
	b.Size = p.Size
	b.UKNation = p.UKNation
	b.Address = p.Address
	b.Phone = p.Phone
	return sectorChanged
}
