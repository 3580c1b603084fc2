package utils

import "strconv"

type Page struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePage reads page/limit query values, falling back to page 1 and
// defLimit, and caps limit at 100.
func ParsePage(pageStr, limitStr string, defLimit int) Page {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = defLimit
	}
	if limit > 100 {
		limit = 100
	}
	return Page{Page: page, Limit: limit, Offset: (page - 1) * limit}
}
