package repositories

import (
	"math"

	"github.com/bloomkart/bloomkart/pkg/response"
)

const defaultPerPage = 20

// normalizePage clamps paging parameters to sane values.
func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = defaultPerPage
	}
	return page, perPage
}

func buildPagination(page, perPage int, total int64) response.Pagination {
	return response.Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}
}
