package service

import "pricelist-service/internal/compare/model"

// ApplyFilters строит представление поверх уже посчитанной матрицы.
// Победители не меняются; итоги считаются по видимым строкам.
// Скрытие поставщиков смотрит на строки, оставшиеся после фильтра по числу предложений.
func ApplyFilters(c model.Comparison, f model.Filters) model.View {
	v := model.View{
		Filters:        f,
		Rows:           make([]model.ComparisonRow, 0, len(c.Rows)),
		SupplierTotals: make(map[string]float64, len(c.Suppliers)),
	}

	for _, r := range c.Rows {
		if f.OnlyMultiOffer && r.OfferCount < 2 {
			v.HiddenRows++
			continue
		}
		v.Rows = append(v.Rows, r)
	}

	hasWin := make(map[string]bool, len(c.Suppliers))
	for _, r := range v.Rows {
		for _, id := range r.Winners {
			hasWin[id] = true
		}
	}
	visible := make(map[string]bool, len(c.Suppliers))
	for _, s := range c.Suppliers {
		if f.HideEmptySuppliers && !hasWin[s.SupplierID] {
			continue
		}
		visible[s.SupplierID] = true
		v.Suppliers = append(v.Suppliers, s)
		v.SupplierTotals[s.SupplierID] = 0
	}
	if v.Suppliers == nil {
		v.Suppliers = []model.SupplierOffer{}
	}

	for i, r := range v.Rows {
		if len(visible) != len(c.Suppliers) {
			r = withoutHidden(r, visible)
			v.Rows[i] = r
		}
		for id, o := range r.Offers {
			if o != nil && o.Winning {
				v.SupplierTotals[id] += o.Price * r.Requested.Quantity
			}
		}
		if r.MinTotal != nil {
			v.GrandTotal += *r.MinTotal
		}
	}
	return v
}

// withoutHidden — копия строки без колонок скрытых поставщиков. У скрытого поставщика
// по определению нет побед в видимых строках, поэтому Winners не меняется.
func withoutHidden(r model.ComparisonRow, visible map[string]bool) model.ComparisonRow {
	offers := make(map[string]*model.Offer, len(visible))
	for id, o := range r.Offers {
		if visible[id] {
			offers[id] = o
		}
	}
	r.Offers = offers
	if r.Candidates != nil {
		cands := make(map[string][]model.AnalogueCandidate, len(r.Candidates))
		for id, c := range r.Candidates {
			if visible[id] {
				cands[id] = c
			}
		}
		if len(cands) == 0 {
			cands = nil
		}
		r.Candidates = cands
	}
	return r
}
