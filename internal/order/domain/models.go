package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// CustomFieldTaxJar is the order custom field set once a TaxJar rate was applied.
const CustomFieldTaxJar = "taxJar"

// PayloadTaxJarRate is the line item payload key written by rate calculation.
const PayloadTaxJarRate = "taxJarRate"

type Order struct {
	ID           snowflake.ID   `gorm:"primaryKey" json:"id"`
	OrderNumber  string         `gorm:"not null" json:"order_number"`
	CustomFields datatypes.JSON `gorm:"type:jsonb" json:"custom_fields"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

type LineItem struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	OrderID   snowflake.ID   `gorm:"not null" json:"order_id"`
	Label     string         `json:"label"`
	Payload   datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

func (LineItem) TableName() string { return "order_line_items" }

type Notification struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Source    string       `json:"source"`
	Message   string       `json:"message"`
	Status    string       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
