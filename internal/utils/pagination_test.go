package utils

import "testing"

func TestCreatePaginationMeta(t *testing.T) {
	params := &PaginationParams{Page: 2, PageSize: 10}
	meta := CreatePaginationMeta(params, 25)

	if meta.TotalPages != 3 {
		t.Errorf("total pages = %d, want 3", meta.TotalPages)
	}
	if !meta.HasNext || meta.NextPage == nil || *meta.NextPage != 3 {
		t.Error("next page not set for middle page")
	}
	if !meta.HasPrevious || meta.PreviousPage == nil || *meta.PreviousPage != 1 {
		t.Error("previous page not set for middle page")
	}
}

func TestCreatePaginationMetaEdges(t *testing.T) {
	first := CreatePaginationMeta(&PaginationParams{Page: 1, PageSize: 10}, 25)
	if first.HasPrevious || first.PreviousPage != nil {
		t.Error("first page reports a previous page")
	}

	last := CreatePaginationMeta(&PaginationParams{Page: 3, PageSize: 10}, 25)
	if last.HasNext || last.NextPage != nil {
		t.Error("last page reports a next page")
	}

	empty := CreatePaginationMeta(&PaginationParams{Page: 1, PageSize: 10}, 0)
	if empty.HasNext || empty.TotalPages != 0 {
		t.Errorf("empty result: total pages = %d, has next = %v", empty.TotalPages, empty.HasNext)
	}
}

func TestPaginationSkipAndLimit(t *testing.T) {
	params := &PaginationParams{Page: 4, PageSize: 15}
	if got := params.GetSkip(); got != 45 {
		t.Errorf("skip = %d, want 45", got)
	}
	if got := params.GetLimit(); got != 15 {
		t.Errorf("limit = %d, want 15", got)
	}
}
