package recommend

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// fitTFIDF builds term-frequency × smooth inverse-document-frequency rows
// over whitespace-tokenized documents, L2-normalized per row. An empty
// corpus yields zero-width rows rather than an error; similarity then rests
// on the numeric and categorical blocks alone.
func fitTFIDF(docs []string) [][]float64 {
	tokenized := make([][]string, len(docs))
	seen := make(map[string]struct{})
	for i, doc := range docs {
		tokenized[i] = strings.Fields(doc)
		for _, token := range tokenized[i] {
			seen[token] = struct{}{}
		}
	}

	// Sorted vocabulary keeps the column order deterministic across runs.
	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	vocab := make(map[string]int, len(terms))
	for i, term := range terms {
		vocab[term] = i
	}

	n := len(docs)
	width := len(terms)
	rows := make([][]float64, n)
	if width == 0 {
		for i := range rows {
			rows[i] = []float64{}
		}
		return rows
	}

	df := make([]float64, width)
	for i, tokens := range tokenized {
		row := make([]float64, width)
		for _, token := range tokens {
			row[vocab[token]]++
		}
		for j, count := range row {
			if count > 0 {
				df[j]++
			}
		}
		rows[i] = row
	}

	idf := make([]float64, width)
	for j := range idf {
		idf[j] = math.Log((1+float64(n))/(1+df[j])) + 1
	}

	for i := range rows {
		floats.Mul(rows[i], idf)
		norm := floats.Norm(rows[i], 2)
		if norm > 0 {
			floats.Scale(1/norm, rows[i])
		}
	}
	return rows
}
