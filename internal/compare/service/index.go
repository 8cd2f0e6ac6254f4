package service

import (
	"sort"
	"strings"

	plmodel "pricelist-service/internal/pricelist/model"
)

// supplierIndex — позиции одного поставщика: точный ключ -> позиция,
// и триграммный индекс по мягкому ключу для подсказок аналогов.
type supplierIndex struct {
	exact map[string]plmodel.NormalizedItem
	soft  []softEntry
	inv   map[string][]int // trigram -> индексы в soft
}

type softEntry struct {
	key   string
	units []string
	item  plmodel.NormalizedItem
}

func buildSupplierIndex(items []plmodel.NormalizedItem) *supplierIndex {
	idx := &supplierIndex{
		exact: make(map[string]plmodel.NormalizedItem, len(items)),
		inv:   make(map[string][]int),
	}
	for _, it := range items {
		k := TitleKey(it.Title)
		if k == "" {
			continue
		}
		// дубли в одном прайсе: побеждает самая низкая цена, позиция без цены — последней
		if ex, ok := idx.exact[k]; !ok || cheaper(it, ex) {
			idx.exact[k] = it
		}

		sk := analogueKey(it.Title)
		if sk == "" {
			continue
		}
		n := len(idx.soft)
		idx.soft = append(idx.soft, softEntry{key: sk, units: numUnits(sk), item: it})
		for g := range trigramSet(sk) {
			idx.inv[g] = append(idx.inv[g], n)
		}
	}
	return idx
}

func cheaper(a, b plmodel.NormalizedItem) bool {
	pa, pb := a.ResolvedPrice(), b.ResolvedPrice()
	switch {
	case pa == nil:
		return false
	case pb == nil:
		return true
	default:
		return *pa < *pb
	}
}

func trigramSet(s string) map[string]struct{} {
	m := make(map[string]struct{})
	if s == "" {
		return m
	}
	r := []rune(" " + s + " ")
	if len(r) < 3 {
		m[string(r)] = struct{}{}
		return m
	}
	for i := 0; i <= len(r)-3; i++ {
		m[string(r[i:i+3])] = struct{}{}
	}
	return m
}

// candidates — до limit позиций, похожих на title, со схожестью >= threshold.
// Порядок: схожесть по убыванию, затем наименование — вывод детерминирован.
func (idx *supplierIndex) candidates(title string, threshold float64, limit int) []scored {
	key := analogueKey(title)
	if key == "" || limit <= 0 {
		return nil
	}
	seen := make(map[int]struct{})
	for g := range trigramSet(key) {
		for _, n := range idx.inv[g] {
			seen[n] = struct{}{}
		}
	}

	units := numUnits(key)
	out := make([]scored, 0, len(seen))
	for n := range seen {
		e := idx.soft[n]
		s := bestSimilarity(key, e.key)
		// "Труба 20мм" и "Труба 32мм" похожи текстом, но это разные товары
		if !equalNumUnits(units, e.units) {
			s *= 0.8
		}
		if s >= threshold {
			out = append(out, scored{item: e.item, score: s})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return strings.Compare(out[i].item.Title, out[j].item.Title) < 0
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

type scored struct {
	item  plmodel.NormalizedItem
	score float64
}

// similarity — нормированная Damerau-Levenshtein схожесть в [0..1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	m := max(len([]rune(a)), len([]rune(b)))
	return 1 - float64(damerauLevenshtein(a, b))/float64(m)
}

// bestSimilarity — посимвольная схожесть и схожесть по множеству токенов, что больше.
// Ключи уже отсортированы по токенам, поэтому второе ловит вставленные/пропущенные слова.
func bestSimilarity(a, b string) float64 {
	return max(similarity(a, b), tokenOverlap(a, b))
}

// tokenOverlap — коэффициент Дайса по токенам.
func tokenOverlap(a, b string) float64 {
	ta, tb := strings.Fields(a), strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	count := make(map[string]int, len(ta))
	for _, t := range ta {
		count[t]++
	}
	common := 0
	for _, t := range tb {
		if count[t] > 0 {
			count[t]--
			common++
		}
	}
	return 2 * float64(common) / float64(len(ta)+len(tb))
}
