package lines

import "sort"

func (ll *lineList) unmark(l *Line) {
	for i, m := range ll.marks {
		if m == l {
			ll.marks = append(ll.marks[:i], ll.marks[i+1:]...)
			break
		}
	}
	l.marked = false
}

// mark bookmarks l, keeping marks in document order.
func (ll *lineList) mark(l *Line) {
	i := 0
	for p := ll.root.next; p != l; p = p.next {
		if p.marked {
			i++
		}
	}
	ll.marks = append(ll.marks, nil)
	copy(ll.marks[i+1:], ll.marks[i:])
	ll.marks[i] = l
	l.marked = true
}

// ToggleBookmark sets or clears the bookmark on l.
func (d *Lines) ToggleBookmark(l *Line) {
	if l.list != &d.list {
		return
	}
	if l.marked {
		d.list.unmark(l)
	} else {
		d.list.mark(l)
	}
}

// Bookmarked reports whether l carries a bookmark.
func (d *Lines) Bookmarked(l *Line) bool { return l.marked }

// ClearBookmarks removes all bookmarks.
func (d *Lines) ClearBookmarks() {
	for _, l := range d.list.marks {
		l.marked = false
	}
	d.list.marks = nil
}

// NextBookmark returns the 1-based number of the first bookmarked line
// after l, wrapping around to the first bookmark. It returns -1 when
// there are no bookmarks.
func (d *Lines) NextBookmark(l *Line) int {
	if len(d.list.marks) == 0 {
		return -1
	}
	first, passed := -1, false
	n := 1
	for p := d.list.front(); p != nil; p = p.Next() {
		if p.marked {
			if passed {
				return n
			}
			if first < 0 {
				first = n
			}
		}
		if p == l {
			passed = true
		}
		n++
	}
	return first
}

// PrevBookmark returns the 1-based number of the last bookmarked line
// before l, wrapping around to the last bookmark. It returns -1 when
// there are no bookmarks.
func (d *Lines) PrevBookmark(l *Line) int {
	if len(d.list.marks) == 0 {
		return -1
	}
	last, passed := -1, false
	n := d.list.len
	for p := d.list.back(); p != nil; p = p.Prev() {
		if p.marked {
			if passed {
				return n
			}
			if last < 0 {
				last = n
			}
		}
		if p == l {
			passed = true
		}
		n--
	}
	return last
}

// BookmarkLines returns the 1-based numbers of the bookmarked lines.
func (d *Lines) BookmarkLines() []int {
	var nums []int
	n := 1
	for p := d.list.front(); p != nil; p = p.Next() {
		if p.marked {
			nums = append(nums, n)
		}
		n++
	}
	return nums
}

// RestoreBookmarks replaces the bookmarks with the lines numbered in
// nums. Numbers outside the document are dropped.
func (d *Lines) RestoreBookmarks(nums []int) {
	d.ClearBookmarks()
	sorted := append([]int(nil), nums...)
	sort.Ints(sorted)
	n := 1
	p := d.list.front()
	for _, num := range sorted {
		if num < n {
			continue
		}
		for p != nil && n < num {
			p = p.Next()
			n++
		}
		if p == nil {
			break
		}
		if p.marked {
			continue
		}
		p.marked = true
		d.list.marks = append(d.list.marks, p)
	}
}
