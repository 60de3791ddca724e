package pagination

import "testing"

func TestPageRequestDefaults(t *testing.T) {
	t.Run("fills zero values", func(t *testing.T) {
		req := PageRequest{}
		req.Defaults()
		if req.Page != 1 {
			t.Errorf("expected page 1, got %d", req.Page)
		}
		if req.PageSize != 20 {
			t.Errorf("expected page size 20, got %d", req.PageSize)
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		req := PageRequest{Page: 3, PageSize: 50}
		req.Defaults()
		if req.Page != 3 || req.PageSize != 50 {
			t.Errorf("expected 3/50, got %d/%d", req.Page, req.PageSize)
		}
	})
}

func TestOffset(t *testing.T) {
	cases := []struct {
		page, pageSize, want int
	}{
		{1, 20, 0},
		{2, 20, 20},
		{3, 25, 50},
	}
	for _, c := range cases {
		req := PageRequest{Page: c.page, PageSize: c.pageSize}
		if got := req.Offset(); got != c.want {
			t.Errorf("page %d size %d: expected offset %d, got %d",
				c.page, c.pageSize, c.want, got)
		}
	}
}

func TestNewPageResponse(t *testing.T) {
	t.Run("middle page", func(t *testing.T) {
		resp := NewPageResponse([]string{"a", "b"}, 2, 20, 45)
		if resp.TotalPages != 3 {
			t.Errorf("expected 3 pages, got %d", resp.TotalPages)
		}
		if !resp.HasNext {
			t.Error("expected has_next on page 2 of 3")
		}
		if !resp.HasPrevious {
			t.Error("expected has_previous on page 2")
		}
	})

	t.Run("last page", func(t *testing.T) {
		resp := NewPageResponse([]string{"a"}, 3, 20, 45)
		if resp.HasNext {
			t.Error("expected no next page after the last")
		}
	})

	t.Run("empty result", func(t *testing.T) {
		resp := NewPageResponse[string](nil, 1, 20, 0)
		if resp.Data == nil {
			t.Error("expected empty slice, not nil, so JSON renders []")
		}
		if resp.TotalPages != 0 || resp.HasNext || resp.HasPrevious {
			t.Errorf("expected empty metadata, got %+v", resp)
		}
	})

	t.Run("exact page boundary", func(t *testing.T) {
		resp := NewPageResponse([]string{"a"}, 2, 20, 40)
		if resp.TotalPages != 2 {
			t.Errorf("expected 2 pages, got %d", resp.TotalPages)
		}
		if resp.HasNext {
			t.Error("expected no next page when totals divide evenly")
		}
	})
}
