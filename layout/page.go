package layout

// ensureSpace 在放置高度为 h 的元素之前检查当前页是否还有空间。
// 空间不足时换到下一页并把光标重置到页顶；光标已在页顶时不再换页，
// 超高元素照常放置，因此分页总能结束。
func ensureSpace(cur Cursor, h float64, g Geometry) (Cursor, bool) {
	if cur.Y-h >= g.Margin || cur.Y >= g.Top() {
		return cur, false
	}
	return Cursor{Page: cur.Page + 1, Y: g.Top()}, true
}

// advance 将光标向下推进 dy 毫米，不做分页检查。
func advance(cur Cursor, dy float64) Cursor {
	cur.Y -= dy
	return cur
}
