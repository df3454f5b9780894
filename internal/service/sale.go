package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/pdv/internal/models"
)

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrNotFound          = errors.New("not found")          // 404
	ErrConflict          = errors.New("conflict")           // 409
	ErrInsufficientStock = errors.New("insufficient stock") // 409
)

type SaleItemInput struct {
	ProductID uint    `json:"product_id"`
	Quantity  uint    `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type SaleInput struct {
	TotalAmount float64         `json:"total_amount"`
	Items       []SaleItemInput `json:"items"`
}

type SaleService struct {
	DB *gorm.DB
}

// RecordSale persists a sale header, its line items and the matching
// stock decrements as one transaction. Any failure rolls back every
// write; partial sales never become visible.
//
// The stock update is a relative, guarded UPDATE: it cannot lose a
// concurrent decrement and it cannot drive stock below zero.
func (s *SaleService) RecordSale(ctx context.Context, in SaleInput) (uint, error) {
	if len(in.Items) == 0 {
		return 0, fmt.Errorf("%w: items required", ErrValidation)
	}
	for i := range in.Items {
		it := in.Items[i]
		if it.ProductID == 0 {
			return 0, fmt.Errorf("%w: product_id required", ErrValidation)
		}
		if it.Quantity == 0 {
			return 0, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
		}
		if it.UnitPrice < 0 {
			return 0, fmt.Errorf("%w: unit_price must be >= 0", ErrValidation)
		}
	}

	var sale models.Sale
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale = models.Sale{
			TotalAmount: in.TotalAmount,
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		for _, it := range in.Items {
			item := models.SaleItem{
				SaleID:    sale.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}

			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", it.ProductID, it.Quantity).
				Update("stock", gorm.Expr("stock - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var exists int64
				if err := tx.Model(&models.Product{}).
					Where("id = ?", it.ProductID).
					Count(&exists).Error; err != nil {
					return err
				}
				if exists == 0 {
					return fmt.Errorf("%w: product %d", ErrNotFound, it.ProductID)
				}
				return fmt.Errorf("%w: product %d", ErrInsufficientStock, it.ProductID)
			}
		}
		return nil
	})
	if txErr != nil {
		return 0, txErr
	}

	return sale.ID, nil
}
