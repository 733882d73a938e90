package repositories

// normalizePageParams clamps pagination parameters to sane bounds.
func normalizePageParams(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
