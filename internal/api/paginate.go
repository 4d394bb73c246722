package api

import (
	"fmt"
	"strconv"
)

const defaultItemsPerPage = 100

func parsePageParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}

	tmp, err := strconv.ParseUint(v, 10, 31)
	if err != nil {
		return 0, err
	}

	return int(tmp), nil
}

// paginate cuts items to the requested page and returns the page count.
func paginate[T any](items *[]T, itemsPerPageStr string, pageStr string) (int, error) {
	itemsPerPage, err := parsePageParam(itemsPerPageStr, defaultItemsPerPage)
	if err != nil {
		return 0, err
	}
	if itemsPerPage == 0 {
		return 0, fmt.Errorf("invalid items per page")
	}

	page, err := parsePageParam(pageStr, 0)
	if err != nil {
		return 0, err
	}

	n := len(*items)
	if n == 0 {
		return 0, nil
	}

	pageCount := (n + itemsPerPage - 1) / itemsPerPage

	start := min(page*itemsPerPage, n)
	end := min(start+itemsPerPage, n)
	*items = (*items)[start:end]

	return pageCount, nil
}
