package content

import (
	"sort"
	"strings"

	"quartz-site/internal/repo"
)

type scoredProduct struct {
	Product repo.Product
	Score   int
}

// searchProducts keeps products in categoryID (when set) that match every
// word of query somewhere, ordered by match strength and then display order.
func searchProducts(items []repo.Product, query, categoryID string) []repo.Product {
	categoryID = strings.TrimSpace(categoryID)
	tokens := tokenizeQuery(query)

	var scored []scoredProduct
	for _, item := range items {
		if categoryID != "" && (item.CategoryID == nil || *item.CategoryID != categoryID) {
			continue
		}
		score := matchScore(item, tokens)
		if len(tokens) > 0 && score == 0 {
			continue
		}
		scored = append(scored, scoredProduct{Product: item, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score == scored[j].Score {
			return scored[i].Product.DisplayOrder < scored[j].Product.DisplayOrder
		}
		return scored[i].Score > scored[j].Score
	})

	out := make([]repo.Product, 0, len(scored))
	for _, sc := range scored {
		out = append(out, sc.Product)
	}
	return out
}

// matchScore weighs name hits over category, feature and description hits.
// A token that matches nowhere rejects the product.
func matchScore(item repo.Product, tokens []string) int {
	name := strings.ToLower(item.Name)
	category := strings.ToLower(item.CategoryName)
	description := strings.ToLower(item.Description)
	features := strings.ToLower(strings.Join(item.Features, " "))

	score := 0
	for _, token := range tokens {
		hit := 0
		if strings.Contains(name, token) {
			hit += 4
		}
		if strings.Contains(category, token) {
			hit += 3
		}
		if strings.Contains(features, token) {
			hit += 2
		}
		if strings.Contains(description, token) {
			hit++
		}
		if hit == 0 {
			return 0
		}
		score += hit
	}
	return score
}

func tokenizeQuery(query string) []string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
