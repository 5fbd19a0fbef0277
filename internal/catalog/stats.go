package catalog

import (
	"math"
	"sort"
)

// Star ratings run from one to five; zero marks a rating the scraper could
// not read.
const (
	minRating = 1
	maxRating = 5
)

// Summarize builds an Overview from a full book listing. Books with an
// unreadable rating still count towards the totals but not the distribution.
func Summarize(books []Book) Overview {
	out := Overview{
		TotalBooks:         len(books),
		RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	if len(books) == 0 {
		return out
	}
	categories := make(map[string]struct{})
	var total float64
	for _, b := range books {
		total += b.Price
		if b.InStock() {
			out.InStock++
		}
		if validRating(b.Rating) {
			out.RatingDistribution[b.Rating]++
		}
		categories[b.Category] = struct{}{}
	}
	out.TotalCategories = len(categories)
	out.AveragePrice = round2(total / float64(len(books)))
	return out
}

// SummarizeByCategory groups books by category, sorted by category name.
func SummarizeByCategory(books []Book) []CategoryStats {
	type acc struct {
		count     int
		sumPrice  float64
		sumRating int
		minPrice  float64
		maxPrice  float64
	}
	groups := make(map[string]*acc)
	for _, b := range books {
		g, ok := groups[b.Category]
		if !ok {
			g = &acc{minPrice: b.Price, maxPrice: b.Price}
			groups[b.Category] = g
		}
		g.count++
		g.sumPrice += b.Price
		g.sumRating += b.Rating
		g.minPrice = math.Min(g.minPrice, b.Price)
		g.maxPrice = math.Max(g.maxPrice, b.Price)
	}
	out := make([]CategoryStats, 0, len(groups))
	for name, g := range groups {
		out = append(out, CategoryStats{
			Category:      name,
			Books:         g.count,
			AveragePrice:  round2(g.sumPrice / float64(g.count)),
			MinPrice:      g.minPrice,
			MaxPrice:      g.maxPrice,
			AverageRating: round2(float64(g.sumRating) / float64(g.count)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
