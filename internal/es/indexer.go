package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/pdv/internal/models"
)

// ProductIndexer mirrors the product table into a search index. Indexing
// is best-effort: the SQL row is the source of truth and callers only log
// failures.
type ProductIndexer struct {
	Client    *elasticsearch.Client
	IndexName string
}

func (ix *ProductIndexer) Index(ctx context.Context, p *models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("es: json.Marshal failed: %w", err)
	}

	res, err := ix.Client.Index(
		ix.IndexName,
		bytes.NewReader(data),
		ix.Client.Index.WithContext(ctx),
		ix.Client.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("es: index failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es: index failed: %s", res.Status())
	}
	return nil
}

func (ix *ProductIndexer) Delete(ctx context.Context, id uint) error {
	res, err := ix.Client.Delete(
		ix.IndexName,
		strconv.FormatUint(uint64(id), 10),
		ix.Client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: delete failed: %w", err)
	}
	defer res.Body.Close()
	// 404 means the document was never indexed, nothing to clean up.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es: delete failed: %s", res.Status())
	}
	return nil
}

func Search(ctx context.Context, client *elasticsearch.Client, index, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"name": map[string]interface{}{
					"query":     query,
					"fuzziness": "AUTO",
				},
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("es: encode query failed: %w", err)
	}

	res, err := client.Search(
		client.Search.WithContext(ctx),
		client.Search.WithIndex(index),
		client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("es: search failed: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 }             `json:"total"`
			Hits  []struct{ Source models.Product } `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}
