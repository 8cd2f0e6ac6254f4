package service

import (
	"math"

	"pricelist-service/internal/compare/model"
)

const (
	DefaultAnalogueThreshold = 0.5
	DefaultMaxCandidates     = 3

	// погрешность float после разбора "1 234,50" и т.п.
	priceTolerance = 1e-6
)

type Options struct {
	AnalogueThreshold float64 // 0 -> DefaultAnalogueThreshold
	MaxCandidates     int     // 0 -> DefaultMaxCandidates, < 0 -> без подсказок
}

func (o Options) withDefaults() Options {
	if o.AnalogueThreshold <= 0 {
		o.AnalogueThreshold = DefaultAnalogueThreshold
	}
	if o.MaxCandidates == 0 {
		o.MaxCandidates = DefaultMaxCandidates
	}
	return o
}

type subKey struct{ row, supplier string }

// Build — матрица сравнения. Чистая функция: те же позиции, прайсы и подстановки
// дают побайтно тот же результат.
func Build(items []model.RequestedItem, lists []model.SupplierPriceList, subs []model.AnalogueSubstitution, opt Options) model.Comparison {
	opt = opt.withDefaults()

	requested := aggregate(items)

	suppliers := make([]model.SupplierOffer, 0, len(lists))
	indexes := make([]*supplierIndex, 0, len(lists))
	known := make(map[string]bool, len(lists))
	for _, l := range lists {
		if known[l.SupplierID] {
			continue
		}
		known[l.SupplierID] = true
		suppliers = append(suppliers, model.SupplierOffer{
			SupplierID:    l.SupplierID,
			SupplierName:  l.SupplierName,
			PriceListID:   l.PriceListID,
			LastUpdatedAt: l.LastUpdatedAt,
			ItemCount:     len(l.Items),
		})
		indexes = append(indexes, buildSupplierIndex(l.Items))
	}

	keys := rowKeysOf(requested)
	rowKeys := make(map[string]bool, len(keys))
	for _, k := range keys {
		rowKeys[k] = true
	}

	// последняя подстановка для пары побеждает
	var ignored []model.AnalogueSubstitution
	subByKey := make(map[subKey]model.AnalogueSubstitution, len(subs))
	for _, s := range subs {
		k := subKey{TitleKey(s.RowKey), s.SupplierID}
		if !rowKeys[k.row] || !known[k.supplier] {
			ignored = append(ignored, s)
			continue
		}
		if prev, ok := subByKey[k]; ok {
			ignored = append(ignored, prev)
		}
		subByKey[k] = s
	}
	usedSubs := make(map[subKey]bool, len(subByKey))

	cmp := model.Comparison{
		Suppliers:      suppliers,
		Rows:           make([]model.ComparisonRow, 0, len(requested)),
		SupplierTotals: make(map[string]float64, len(suppliers)),
	}
	for _, s := range suppliers {
		cmp.SupplierTotals[s.SupplierID] = 0
	}

	for n, req := range requested {
		title := TitleKey(req.Title)
		key := keys[n]
		row := model.ComparisonRow{
			RowKey:    key,
			Requested: req,
			Offers:    make(map[string]*model.Offer, len(suppliers)),
			Winners:   []string{},
		}

		for i, s := range suppliers {
			idx := indexes[i]
			offer := exactOffer(idx, title)
			if offer == nil {
				if sub, ok := subByKey[subKey{key, s.SupplierID}]; ok {
					usedSubs[subKey{key, s.SupplierID}] = true
					offer = &model.Offer{
						Price:  sub.SubstitutePrice,
						Title:  sub.SubstituteName,
						Source: model.SourceAnalogue,
					}
				}
				if cands := suggest(idx, req.Title, title, opt); len(cands) > 0 {
					if row.Candidates == nil {
						row.Candidates = make(map[string][]model.AnalogueCandidate)
					}
					row.Candidates[s.SupplierID] = cands
				}
			}
			row.Offers[s.SupplierID] = offer
			if offer != nil {
				row.OfferCount++
				if row.Min == nil || offer.Price < *row.Min {
					p := offer.Price
					row.Min = &p
				}
			}
		}

		if row.Min != nil {
			for _, s := range suppliers {
				o := row.Offers[s.SupplierID]
				if o == nil || !samePrice(o.Price, *row.Min) {
					continue
				}
				o.Winning = true
				row.Winners = append(row.Winners, s.SupplierID)
				cmp.SupplierTotals[s.SupplierID] += o.Price * req.Quantity
			}
			t := *row.Min * req.Quantity
			row.MinTotal = &t
			cmp.GrandTotal += t
		}
		cmp.Rows = append(cmp.Rows, row)
	}

	// подстановка на пару, где есть точное совпадение, не применяется
	for _, s := range subs {
		k := subKey{TitleKey(s.RowKey), s.SupplierID}
		if cur, ok := subByKey[k]; ok && cur == s && !usedSubs[k] {
			ignored = append(ignored, s)
			usedSubs[k] = true
		}
	}
	cmp.IgnoredSubstitutions = ignored
	return cmp
}

func exactOffer(idx *supplierIndex, key string) *model.Offer {
	it, ok := idx.exact[key]
	if !ok {
		return nil
	}
	p := it.ResolvedPrice()
	if p == nil {
		return nil
	}
	return &model.Offer{
		Price:  *p,
		Unit:   it.Unit,
		Title:  it.Title,
		Sku:    it.Sku,
		Source: model.SourceExact,
	}
}

// suggest — аналоги для пары без точного совпадения. Позиция с тем же ключом
// (совпала, но без цены) аналогом не считается.
func suggest(idx *supplierIndex, title, key string, opt Options) []model.AnalogueCandidate {
	if opt.MaxCandidates < 0 {
		return nil
	}
	found := idx.candidates(title, opt.AnalogueThreshold, opt.MaxCandidates+1)
	out := make([]model.AnalogueCandidate, 0, len(found))
	for _, c := range found {
		if TitleKey(c.item.Title) == key {
			continue
		}
		out = append(out, model.AnalogueCandidate{
			Title: c.item.Title,
			Price: c.item.ResolvedPrice(),
			Unit:  c.item.Unit,
			Score: math.Round(c.score*1000) / 1000,
		})
		if len(out) == opt.MaxCandidates {
			break
		}
	}
	return out
}

// rowKeysOf: ключ строки — ключ наименования; у повторов того же наименования
// с другой единицей к нему добавляется "|единица".
func rowKeysOf(requested []model.RequestedItem) []string {
	keys := make([]string, len(requested))
	seen := make(map[string]bool, len(requested))
	for i, r := range requested {
		k := TitleKey(r.Title)
		if seen[k] {
			k += "|" + TitleKey(r.Unit)
		}
		seen[k] = true
		keys[i] = k
	}
	return keys
}

func samePrice(a, b float64) bool {
	return math.Abs(a-b) <= priceTolerance
}

// aggregate склеивает повторы в заявке с одним ключом наименования и одной единицей:
// количества складываются, порядок — по первому вхождению. Пустая единица совпадает с любой.
// "Кирпич, шт" и "Кирпич, поддон" остаются разными строками.
func aggregate(items []model.RequestedItem) []model.RequestedItem {
	pos := make(map[string][]int, len(items))
	out := make([]model.RequestedItem, 0, len(items))
	for _, it := range items {
		key := TitleKey(it.Title)
		if key == "" {
			continue
		}
		unit := TitleKey(it.Unit)
		merged := false
		for _, i := range pos[key] {
			have := TitleKey(out[i].Unit)
			if have != "" && unit != "" && have != unit {
				continue
			}
			out[i].Quantity += it.Quantity
			if out[i].Unit == "" {
				out[i].Unit = it.Unit
			}
			merged = true
			break
		}
		if merged {
			continue
		}
		pos[key] = append(pos[key], len(out))
		it.Title = collapseSpaces(it.Title)
		out = append(out, it)
	}
	return out
}
