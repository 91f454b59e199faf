package domain

import (
	"strconv"
	"strings"
)

// Category is an Open Trivia DB category id. Zero means no category.
type Category int

const CategoryAny Category = 0

// Categories maps provider category ids to display names.
var Categories = map[Category]string{
	9:  "General Knowledge",
	10: "Entertainment: Books",
	11: "Entertainment: Film",
	12: "Entertainment: Music",
	13: "Entertainment: Musicals & Theatres",
	14: "Entertainment: Television",
	15: "Entertainment: Video Games",
	16: "Entertainment: Board Games",
	17: "Science & Nature",
	18: "Science: Computers",
	19: "Science: Mathematics",
	20: "Mythology",
	21: "Sports",
	22: "Geography",
	23: "History",
	24: "Politics",
	25: "Art",
	26: "Celebrities",
	27: "Animals",
	28: "Vehicles",
	29: "Entertainment: Comics",
	30: "Science: Gadgets",
	31: "Entertainment: Japanese Anime & Manga",
	32: "Entertainment: Cartoon & Animations",
}

// String returns the display name, or "Any" for CategoryAny.
func (c Category) String() string {
	if name, ok := Categories[c]; ok {
		return name
	}
	if c == CategoryAny {
		return "Any"
	}
	return "Category " + strconv.Itoa(int(c))
}

// Valid reports whether c is CategoryAny or a known provider id.
func (c Category) Valid() bool {
	if c == CategoryAny {
		return true
	}
	_, ok := Categories[c]
	return ok
}

// ParseCategory accepts a numeric id or a display name (case-insensitive).
func ParseCategory(raw string) (Category, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "any") {
		return CategoryAny, nil
	}
	if id, err := strconv.Atoi(raw); err == nil {
		c := Category(id)
		if !c.Valid() {
			return CategoryAny, Invalid("category", "unknown category id "+raw)
		}
		return c, nil
	}
	for id, name := range Categories {
		if strings.EqualFold(name, raw) {
			return id, nil
		}
	}
	return CategoryAny, Invalid("category", "unknown category "+strconv.Quote(raw))
}
