package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"not null"                 json:"name"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
}

type Product struct {
	ID      uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string  `gorm:"not null"                 json:"name"`
	Price   float64 `gorm:"not null"                 json:"price"`
	Stock   int     `gorm:"not null;default:0"       json:"stock"`
	Barcode *string `gorm:"uniqueIndex"              json:"barcode,omitempty"`
}

type Sale struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TotalAmount float64   `gorm:"not null"                 json:"total_amount"`
	CreatedAt   time.Time `gorm:"not null"                 json:"created_at"`
}

type SaleItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"  json:"id"`
	SaleID    uint    `gorm:"index;not null"            json:"sale_id"`
	ProductID uint    `gorm:"not null"                  json:"product_id"`
	Quantity  uint    `gorm:"not null;check:quantity>0" json:"quantity"`
	UnitPrice float64 `gorm:"not null"                  json:"unit_price"`
}
