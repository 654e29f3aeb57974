package fileio

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"catalog-matcher/internal/match/model"
	"catalog-matcher/internal/utils"
)

// Column aliases accepted in tabular sources. Persian headers come with
// ZWNJ and non-breaking spaces, hence the normalized comparison below.
const (
	titleKeys      = "title|عنوان|نام کالا"
	brandKeys      = "brand|برند"
	categoriesKeys = "categories|دسته بندی|دسته بندی ها"
	levelKeys      = "level|سطح"
)

// ReadRecords decodes input records from r based on the file extension:
// JSON (the native feed format) or a CSV/XLSX/XLS sheet with
// title/brand/categories columns. A decode failure here is fatal to the
// run; nothing has been processed yet.
func ReadRecords(r io.Reader, filename string, headerRow int) ([]model.Record, error) {
	if strings.ToLower(filepath.Ext(filename)) == ".json" {
		var recs []model.Record
		if err := json.NewDecoder(r).Decode(&recs); err != nil {
			return nil, fmt.Errorf("decoding json records: %w", err)
		}
		return recs, nil
	}

	maps, err := ReadAnyMaps(r, filename, headerRow)
	if err != nil {
		return nil, err
	}
	return mapsToRecords(maps), nil
}

// mapsToRecords converts sheet rows to records. The categories cell holds a
// ">"-separated path; levels grow with depth so the deepest node carries
// the highest level. An optional level cell (Persian digits allowed)
// overrides the level of the deepest node.
func mapsToRecords(maps []map[string]string) []model.Record {
	recs := make([]model.Record, 0, len(maps))
	for _, rec := range maps {
		title := strings.TrimSpace(rec[resolveKey(rec, titleKeys)])
		catCell := strings.TrimSpace(rec[resolveKey(rec, categoriesKeys)])

		var categories []model.CategoryRef
		if catCell != "" {
			path := splitPath(catCell)
			base := len(path)
			if lv, ok := utils.ParseFloatFa(rec[resolveKey(rec, levelKeys)]); ok && int(lv) > 0 {
				base = int(lv)
			}
			for i, name := range path {
				level := base - (len(path) - 1 - i)
				if level < 1 {
					level = 1
				}
				categories = append(categories, model.CategoryRef{Name: name, Level: level})
			}
		}

		recs = append(recs, model.Record{
			Title:      title,
			Categories: categories,
			Brand:      strings.TrimSpace(rec[resolveKey(rec, brandKeys)]),
		})
	}
	return recs
}

func splitPath(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, ">") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var headerJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// normHeaderKey folds a column name for comparison: lower case, ZWNJ and
// NBSP variants to plain spaces, punctuation stripped, spaces collapsed.
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", " ", " ", " ", "‌", " ").Replace(s)
	s = headerJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// resolveKey finds the actual map key matching one of the "|"-separated
// wanted names, first verbatim, then by normalized comparison, then by
// containment for composite headers.
func resolveKey(rec map[string]string, want string) string {
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	for _, a := range alts {
		if _, ok := rec[a]; ok {
			return a
		}
	}

	normAlts := make([]string, len(alts))
	for i, a := range alts {
		normAlts[i] = normHeaderKey(a)
	}

	bestKey := ""
	bestScore := 0
	for k := range rec {
		nk := normHeaderKey(k)
		for _, n := range normAlts {
			if nk == n {
				return k
			}
		}
		score := 0
		for _, n := range normAlts {
			if n != "" && (strings.Contains(nk, n) || strings.Contains(n, nk)) {
				if len(n) > score {
					score = len(n)
				}
			}
		}
		if score > bestScore {
			bestScore, bestKey = score, k
		}
	}
	return bestKey
}
