package model

import (
	"time"

	plmodel "pricelist-service/internal/pricelist/model"
)

// RequestedItem — строка заявки покупателя.
type RequestedItem struct {
	Title    string  `json:"title" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
	Unit     string  `json:"unit,omitempty"`
}

// SupplierPriceList — уже нормализованный прайс одного поставщика.
type SupplierPriceList struct {
	SupplierID    string                   `json:"supplierId" validate:"required"`
	SupplierName  string                   `json:"supplierName,omitempty"`
	PriceListID   string                   `json:"priceListId,omitempty"`
	LastUpdatedAt *time.Time               `json:"lastUpdatedAt,omitempty"`
	Items         []plmodel.NormalizedItem `json:"items" validate:"dive"`
}

// SupplierOffer — колонка сравнения.
type SupplierOffer struct {
	SupplierID    string     `json:"supplierId"`
	SupplierName  string     `json:"supplierName,omitempty"`
	PriceListID   string     `json:"priceListId,omitempty"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt,omitempty"`
	ItemCount     int        `json:"itemCount"`
}

type OfferSource string

const (
	SourceExact    OfferSource = "exact"
	SourceAnalogue OfferSource = "analogue" // цена из подстановки аналога пользователем
)

// Offer — ячейка матрицы. Отсутствие предложения — nil в ComparisonRow.Offers.
type Offer struct {
	Price   float64     `json:"price"`
	Unit    *string     `json:"unit"`
	Title   string      `json:"title"` // наименование у поставщика (или имя аналога)
	Sku     *string     `json:"sku,omitempty"`
	Source  OfferSource `json:"source"`
	Winning bool        `json:"winning"`
}

// AnalogueSubstitution — пользователь выбрал аналог для пары (строка, поставщик). Живёт в сессии.
type AnalogueSubstitution struct {
	RowKey          string  `json:"rowKey" validate:"required"`
	SupplierID      string  `json:"supplierId" validate:"required"`
	SubstituteName  string  `json:"substituteName" validate:"required"`
	SubstitutePrice float64 `json:"substitutePrice" validate:"gte=0"`
}

// AnalogueCandidate — похожая, но не совпавшая позиция поставщика. Только подсказка.
type AnalogueCandidate struct {
	Title string   `json:"title"`
	Price *float64 `json:"price"`
	Unit  *string  `json:"unit"`
	Score float64  `json:"score"`
}

type ComparisonRow struct {
	RowKey     string                         `json:"rowKey"`
	Requested  RequestedItem                  `json:"requestedItem"`
	Offers     map[string]*Offer              `json:"offers"`
	Min        *float64                       `json:"min"`
	MinTotal   *float64                       `json:"minTotal"`
	Winners    []string                       `json:"winners"`
	OfferCount int                            `json:"offerCount"`
	Candidates map[string][]AnalogueCandidate `json:"candidates,omitempty"`
}

// IsWinner — поставщик даёт минимальную цену в строке (при равенстве выигрывают все).
func (r ComparisonRow) IsWinner(supplierID string) bool {
	o := r.Offers[supplierID]
	return o != nil && o.Winning
}

type Filters struct {
	OnlyMultiOffer     bool `json:"onlyMultiOffer"`
	HideEmptySuppliers bool `json:"hideEmptySuppliers"`
}

// Comparison — результат агрегации. Чистая функция входа: пересчитывается каждый раз.
type Comparison struct {
	Suppliers            []SupplierOffer        `json:"suppliers"`
	Rows                 []ComparisonRow        `json:"rows"`
	SupplierTotals       map[string]float64     `json:"supplierTotals"`
	GrandTotal           float64                `json:"grandTotal"`
	IgnoredSubstitutions []AnalogueSubstitution `json:"ignoredSubstitutions,omitempty"`
}

// View — то, что видит пользователь после фильтров. Победители не пересчитываются.
type View struct {
	Filters        Filters            `json:"filters"`
	Suppliers      []SupplierOffer    `json:"suppliers"`
	Rows           []ComparisonRow    `json:"rows"`
	SupplierTotals map[string]float64 `json:"supplierTotals"`
	GrandTotal     float64            `json:"grandTotal"`
	HiddenRows     int                `json:"hiddenRows"`
}

// ComparisonRequest — тело запросов /comparisons*, /requests*.
type ComparisonRequest struct {
	Items         []RequestedItem        `json:"items" validate:"required,min=1,dive"`
	Suppliers     []SupplierPriceList    `json:"suppliers" validate:"required,min=1,unique=SupplierID,dive"`
	Substitutions []AnalogueSubstitution `json:"substitutions" validate:"omitempty,dive"`
	Filters       Filters                `json:"filters"`
	SupplierIDs   []string               `json:"supplierIds,omitempty" validate:"omitempty,dive,required"`
}
