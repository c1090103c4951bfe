package domain

import "time"

// Circle is a community room grouping members and messages (circles table)
type Circle struct {
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	ID             string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name           string    `gorm:"column:name;size:100;not null" json:"name"`
	Description    string    `gorm:"column:description;type:text" json:"description"`
	Category       string    `gorm:"column:category;size:50;index" json:"category"`
	ImageURL       string    `gorm:"column:image_url;size:500" json:"image_url,omitempty"`
	Color          string    `gorm:"column:color;size:20" json:"color,omitempty"`
	CreatedBy      string    `gorm:"column:created_by;size:64" json:"created_by"`
	LoveLevel      int       `gorm:"column:love_level;default:0" json:"love_level"`
	AscensionLevel int       `gorm:"column:ascension_level;default:0" json:"ascension_level"`
	MemberCount    int       `gorm:"column:member_count;default:0" json:"member_count"`
	OnlineCount    int       `gorm:"column:online_count;default:0" json:"online_count"`
	SortOrder      int       `gorm:"column:sort_order;default:0" json:"-"`
	IsPrivate      bool      `gorm:"column:is_private;default:false" json:"is_private"`
}

func (Circle) TableName() string {
	return "circles"
}

// Clone returns a copy safe to hand out of a store
func (c *Circle) Clone() *Circle {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// CircleListResponse is the circle store snapshot
type CircleListResponse struct {
	Circles []*Circle `json:"circles"`
	Loading bool      `json:"loading"`
}
