package models

import "time"

type Category struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Book is a catalogue entry; Stock counts copies currently on the shelf.
type Book struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	Title      string    `gorm:"column:title;not null"`
	Author     string    `gorm:"column:author;not null"`
	CategoryID *int64    `gorm:"column:category_id;index"`
	Category   *Category `gorm:"foreignKey:CategoryID"`
	Stock      int       `gorm:"column:stock;not null;default:0;check:chk_books_stock_non_negative,stock >= 0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
