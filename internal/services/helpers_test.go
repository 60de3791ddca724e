package services

import "tally/internal/pagination"

func pageRequest(page, pageSize int) pagination.PageRequest {
	return pagination.PageRequest{Page: page, PageSize: pageSize}
}
