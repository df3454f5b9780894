package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pdv/internal/models"
)

func strptr(s string) *string { return &s }

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/products", map[string]any{
		"name":    "Caneta Azul",
		"price":   2.5,
		"stock":   100,
		"barcode": "7891000100103",
	})
	require.NoError(t, env.P.CreateProduct(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.EqualValues(t, 1, resp.ID)
	require.Equal(t, "Caneta Azul", resp.Name)
	require.Equal(t, 2.5, resp.Price)
	require.Equal(t, 100, resp.Stock)
	require.NotNil(t, resp.Barcode)
	require.Equal(t, "7891000100103", *resp.Barcode)
}

func TestCreateProductMissingName(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/products", map[string]any{"price": 1.0})
	require.Equal(t, http.StatusBadRequest, httpErrorCode(t, env.P.CreateProduct(c)))
}

func TestCreateProductDuplicateBarcode(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.DB.Create(&models.Product{
		Name: "Caneta Azul", Price: 2.5, Stock: 10, Barcode: strptr("7891000100103"),
	}).Error)

	_, c := env.doJSONRequest(http.MethodPost, "/products", map[string]any{
		"name":    "Caneta Preta",
		"price":   2.5,
		"stock":   10,
		"barcode": "7891000100103",
	})
	require.Equal(t, http.StatusConflict, httpErrorCode(t, env.P.CreateProduct(c)))

	// products without barcode never conflict with each other
	for i := 0; i < 2; i++ {
		rec, c := env.doJSONRequest(http.MethodPost, "/products", map[string]any{
			"name":  fmt.Sprintf("Lapis %d", i),
			"price": 1.0,
		})
		require.NoError(t, env.P.CreateProduct(c))
		require.Equal(t, http.StatusCreated, rec.Code)
	}
}

func TestListProductsPagination(t *testing.T) {
	env := newTestEnv(t)

	for i := 1; i <= 25; i++ {
		require.NoError(t, env.DB.Create(&models.Product{
			Name:  fmt.Sprintf("Caderno %02d", i),
			Price: 10,
			Stock: 5,
		}).Error)
	}
	// noise that must not match the search
	require.NoError(t, env.DB.Create(&models.Product{Name: "Borracha", Price: 1, Stock: 5}).Error)

	rec, c := env.doJSONRequest(http.MethodGet, "/products?page=2&limit=10&search=caderno", nil)
	require.NoError(t, env.P.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Product `json:"data"`
		Meta struct {
			Page       int   `json:"page"`
			Limit      int   `json:"limit"`
			Total      int64 `json:"total"`
			TotalPages int64 `json:"total_pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Data, 10)
	require.EqualValues(t, 11, resp.Data[0].ID)
	require.EqualValues(t, 20, resp.Data[9].ID)
	require.EqualValues(t, 25, resp.Meta.Total)
	require.EqualValues(t, 3, resp.Meta.TotalPages)
	require.Equal(t, 2, resp.Meta.Page)
}

func TestListProductsDefaults(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 12; i++ {
		require.NoError(t, env.DB.Create(&models.Product{Name: fmt.Sprintf("p%d", i), Price: 1}).Error)
	}

	rec, c := env.doJSONRequest(http.MethodGet, "/products", nil)
	require.NoError(t, env.P.GetProducts(c))

	var resp struct {
		Data []models.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 10)
}

func TestUpdateProduct(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.DB.Create(&models.Product{Name: "Caneta", Price: 2, Stock: 10}).Error)

	rec, c := env.doJSONRequest(http.MethodPut, "/products/1", map[string]any{
		"name":    "Caneta Gel",
		"price":   3.5,
		"stock":   8,
		"barcode": "7891000100103",
	})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.P.UpdateProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.Product
	require.NoError(t, env.DB.First(&stored, 1).Error)
	require.Equal(t, "Caneta Gel", stored.Name)
	require.Equal(t, 3.5, stored.Price)
	require.Equal(t, 8, stored.Stock)
	require.NotNil(t, stored.Barcode)
}

func TestUpdateProductNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPut, "/products/99", map[string]any{"name": "x"})
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.Equal(t, http.StatusNotFound, httpErrorCode(t, env.P.UpdateProduct(c)))
}

func TestUpdateProductBarcodeConflict(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.DB.Create(&models.Product{Name: "A", Price: 1, Barcode: strptr("111")}).Error)
	require.NoError(t, env.DB.Create(&models.Product{Name: "B", Price: 1, Barcode: strptr("222")}).Error)

	// stealing A's barcode is a conflict
	_, c := env.doJSONRequest(http.MethodPut, "/products/2", map[string]any{
		"name": "B", "price": 1.0, "barcode": "111",
	})
	c.SetParamNames("id")
	c.SetParamValues("2")
	require.Equal(t, http.StatusConflict, httpErrorCode(t, env.P.UpdateProduct(c)))

	// keeping your own barcode is not
	rec, c2 := env.doJSONRequest(http.MethodPut, "/products/2", map[string]any{
		"name": "B2", "price": 1.0, "barcode": "222",
	})
	c2.SetParamNames("id")
	c2.SetParamValues("2")
	require.NoError(t, env.P.UpdateProduct(c2))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.DB.Create(&models.Product{Name: "Caneta", Price: 2}).Error)

	rec, c := env.doJSONRequest(http.MethodDelete, "/products/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.P.DeleteProduct(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Product{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestDeleteProductNotFound(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.DB.Create(&models.Product{Name: "Caneta", Price: 2}).Error)

	_, c := env.doJSONRequest(http.MethodDelete, "/products/42", nil)
	c.SetParamNames("id")
	c.SetParamValues("42")
	require.Equal(t, http.StatusNotFound, httpErrorCode(t, env.P.DeleteProduct(c)))

	// table unchanged
	var count int64
	require.NoError(t, env.DB.Model(&models.Product{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
