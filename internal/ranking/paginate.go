package ranking

// Page es una ventana [skip, skip+limit) sobre un RankedFeed recien calculado.
// No hay cursor estable: si llega contenido nuevo entre requests los rangos pueden moverse.
type Page struct {
	Items   RankedFeed `json:"items"`
	Total   int        `json:"total"`
	HasMore bool       `json:"has_more"`
}

func Paginate(feed RankedFeed, skip, limit int) Page {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 {
		limit = 1
	}
	total := len(feed)
	page := Page{
		Items:   RankedFeed{},
		Total:   total,
		HasMore: skip+limit < total,
	}
	if skip >= total {
		return page
	}
	end := skip + limit
	if end > total {
		end = total
	}
	page.Items = feed[skip:end]
	return page
}
