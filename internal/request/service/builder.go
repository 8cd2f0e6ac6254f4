package service

import (
	cmpmodel "pricelist-service/internal/compare/model"
	"pricelist-service/internal/request/model"
)

// Build — черновики заявок по выбранным поставщикам. Поставщику уходят только строки,
// где он выигрывает; при равной цене строка попадает каждому из победителей.
// Пустой supplierIDs — ни одного черновика: заявка уходит только тем, кого выбрал покупатель.
// Неизвестные id пропускаются.
func Build(c cmpmodel.Comparison, supplierIDs []string) []model.Draft {
	byID := make(map[string]cmpmodel.SupplierOffer, len(c.Suppliers))
	for _, s := range c.Suppliers {
		byID[s.SupplierID] = s
	}
	drafts := make([]model.Draft, 0, len(supplierIDs))
	seen := make(map[string]bool, len(supplierIDs))
	for _, id := range supplierIDs {
		s, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true

		d := model.Draft{SupplierID: id, SupplierName: s.SupplierName, PriceListID: s.PriceListID}
		for _, r := range c.Rows {
			o := r.Offers[id]
			if o == nil || !o.Winning {
				continue
			}
			l := model.Line{
				RowKey:    r.RowKey,
				Title:     r.Requested.Title,
				Quantity:  r.Requested.Quantity,
				Unit:      r.Requested.Unit,
				UnitPrice: o.Price,
				LineTotal: o.Price * r.Requested.Quantity,
				Sku:       o.Sku,
			}
			if l.Unit == "" && o.Unit != nil {
				l.Unit = *o.Unit
			}
			if o.Source == cmpmodel.SourceAnalogue {
				l.SubstituteName = o.Title
			}
			d.Lines = append(d.Lines, l)
			d.Total += l.LineTotal
		}
		if len(d.Lines) == 0 {
			continue
		}
		drafts = append(drafts, d)
	}
	return drafts
}

