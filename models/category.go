package models

import "time"

type Category struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:40;uniqueIndex;not null" json:"name"`
	Description  string    `gorm:"size:200" json:"description"`
	Color        string    `gorm:"size:7;default:'#007bff'" json:"color"`
	Icon         string    `gorm:"size:50" json:"icon"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	DisplayOrder uint      `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Meetings []Meeting `gorm:"foreignKey:CategoryID" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}
