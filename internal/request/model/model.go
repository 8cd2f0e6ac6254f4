package model

import (
	"fmt"
	"strings"
)

// Line — строка заявки поставщику.
type Line struct {
	RowKey         string  `json:"rowKey"`
	Title          string  `json:"title"`
	SubstituteName string  `json:"substituteName,omitempty"` // цена взята с выбранного аналога
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit,omitempty"`
	UnitPrice      float64 `json:"unitPrice"`
	LineTotal      float64 `json:"lineTotal"`
	Sku            *string `json:"sku,omitempty"`
}

// Draft — черновик заявки одному поставщику. Без побед — без черновика.
type Draft struct {
	SupplierID   string  `json:"supplierId"`
	SupplierName string  `json:"supplierName,omitempty"`
	PriceListID  string  `json:"priceListId,omitempty"`
	Lines        []Line  `json:"lines"`
	Total        float64 `json:"total"`
}

type SendResult struct {
	SupplierID string `json:"supplierId"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// BatchResult — итог "отправить всем": порядок результатов совпадает с порядком черновиков.
type BatchResult struct {
	Sent    int          `json:"sent"`
	Results []SendResult `json:"results"`
	Errors  []string     `json:"errors"`
}

// PartialSendError — часть отправок не прошла. Успешные не откатываются.
type PartialSendError struct {
	Batch BatchResult
}

func (e *PartialSendError) Error() string {
	failed := len(e.Batch.Results) - e.Batch.Sent
	return fmt.Sprintf("partial send failure: %d of %d failed: %s",
		failed, len(e.Batch.Results), strings.Join(e.Batch.Errors, "; "))
}
